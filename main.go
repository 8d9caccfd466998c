package main

import "sprintsync/cmd"

func main() {
	cmd.Execute()
}
