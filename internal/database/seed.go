package database

import (
	"fmt"

	"sprintsync/internal/models"
	"sprintsync/internal/util"

	"gorm.io/gorm"
)

type seedUser struct {
	username string
	password string
	isAdmin  bool
}

var seedUsers = []seedUser{
	{username: "admin", password: "admin123", isAdmin: true},
	{username: "developer", password: "dev123"},
	{username: "designer", password: "design123"},
}

type seedTask struct {
	title       string
	description string
	status      string
	minutes     int
	owner       string
}

var seedTasks = []seedTask{
	{
		title:       "Setup Docker Environment",
		description: "Configure Docker and docker-compose for development",
		status:      models.StatusInProgress,
		minutes:     90,
		owner:       "admin",
	},
	{
		title:       "Implement task board UI",
		description: "Build the kanban-style board with drag and drop",
		status:      models.StatusTodo,
		minutes:     0,
		owner:       "designer",
	},
	{
		title:       "Add JWT authentication",
		description: "Issue and verify session tokens for API access",
		status:      models.StatusDone,
		minutes:     180,
		owner:       "developer",
	},
	{
		title:       "Write API integration tests",
		description: "Cover auth, tasks and stats endpoints",
		status:      models.StatusTodo,
		minutes:     0,
		owner:       "developer",
	},
}

// Seed inserts the demo users and tasks. It is idempotent: each table
// is only populated when empty.
func Seed(db *gorm.DB, bcryptCost int) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}

	usersByName := make(map[string]*models.User)
	if userCount == 0 {
		for _, su := range seedUsers {
			hash, err := util.HashPassword(su.password, bcryptCost)
			if err != nil {
				return fmt.Errorf("hash seed password: %w", err)
			}
			u := &models.User{
				Username:     su.username,
				PasswordHash: hash,
				IsAdmin:      su.isAdmin,
			}
			if err := db.Create(u).Error; err != nil {
				return fmt.Errorf("create seed user %q: %w", su.username, err)
			}
			usersByName[su.username] = u
		}
	} else {
		var users []models.User
		if err := db.Find(&users).Error; err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		for i := range users {
			usersByName[users[i].Username] = &users[i]
		}
	}

	var taskCount int64
	if err := db.Model(&models.Task{}).Count(&taskCount).Error; err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}
	if taskCount > 0 {
		return nil
	}

	for _, st := range seedTasks {
		owner, ok := usersByName[st.owner]
		if !ok {
			continue
		}
		t := &models.Task{
			Title:        st.title,
			Description:  st.description,
			Status:       st.status,
			TotalMinutes: st.minutes,
			UserID:       &owner.ID,
		}
		if err := db.Create(t).Error; err != nil {
			return fmt.Errorf("create seed task %q: %w", st.title, err)
		}
	}
	return nil
}
