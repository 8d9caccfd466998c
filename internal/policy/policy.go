// Package policy holds the access-control rules shared by every
// authenticated endpoint. Decisions are pure functions of the caller
// identity and the target resource owner; nothing here touches the store.
//
// Authentication (is the token valid at all) is the middleware's job and
// always happens first. A deny here means the caller is known but not
// allowed, i.e. 403, never 401.
package policy

// Caller is the authenticated identity derived from a session token.
type Caller struct {
	ID       uint
	Username string
	IsAdmin  bool
}

// CanAccessOwned decides the self-or-admin rule: the caller may read or
// write a resource if they are an admin or they own it. A task with no
// owner is only reachable by admins.
func CanAccessOwned(caller Caller, ownerID *uint) bool {
	if caller.IsAdmin {
		return true
	}
	return ownerID != nil && *ownerID == caller.ID
}

// CanAccessUser decides whether the caller may view the given user's
// profile or task list: admins and the subject themselves.
func CanAccessUser(caller Caller, userID uint) bool {
	return caller.IsAdmin || caller.ID == userID
}

// CanAdminister decides admin-only operations: the user list, user
// updates and deletes, and the stats endpoints.
func CanAdminister(caller Caller) bool {
	return caller.IsAdmin
}
