// Package access holds the one authoritative allow/deny decision for
// task operations. Every HTTP endpoint routes through it; none of them
// re-implement the checks inline.
package access

import "github.com/chetan-code/taskshare/internal/models"

// Action is what a caller wants to do with a task.
type Action int

const (
	ActionRead Action = iota
	ActionUpdate
	ActionDelete
)

// Can decides whether userID may perform action on task. The task must
// arrive with its grants loaded; the decision is made purely in memory.
//
// The owner holds every capability implicitly and never appears as a
// grant row. Delete is reserved to the owner - no grant substitutes for
// ownership. An update grant implies read as an outcome even though
// read and update are stored as independent rows, while a read grant
// never satisfies update.
func Can(task *models.Task, userID int, action Action) bool {
	if task.OwnerID == userID {
		return true
	}
	switch action {
	case ActionRead:
		return hasGrant(task, userID, models.PermissionRead) ||
			hasGrant(task, userID, models.PermissionUpdate)
	case ActionUpdate:
		return hasGrant(task, userID, models.PermissionUpdate)
	}
	return false
}

// CanAdminister reports whether userID may grant or revoke permissions
// on task. Only the owner administers grants.
func CanAdminister(task *models.Task, userID int) bool {
	return task.OwnerID == userID
}

func hasGrant(task *models.Task, userID int, kind models.PermissionKind) bool {
	for _, g := range task.Grants {
		if g.UserID == userID && g.Kind == kind {
			return true
		}
	}
	return false
}
