package models

import "fmt"

// PermissionKind is the one permission enum shared by the store and the
// request boundary. Exactly two kinds exist; ownership is implicit and
// never stored as a grant.
type PermissionKind string

const (
	PermissionRead   PermissionKind = "read"
	PermissionUpdate PermissionKind = "update"
)

// ParsePermissionKind validates a wire value from a request body.
func ParsePermissionKind(s string) (PermissionKind, error) {
	switch PermissionKind(s) {
	case PermissionRead, PermissionUpdate:
		return PermissionKind(s), nil
	}
	return "", fmt.Errorf("unknown permission kind %q", s)
}

// Grant shares one capability on one task with one user. At most one
// grant exists per (task, user, kind); the kinds are independent rows,
// holding update does not store read.
type Grant struct {
	TaskID int            `json:"task_id"`
	UserID int            `json:"user_id"`
	Kind   PermissionKind `json:"kind"`
}
