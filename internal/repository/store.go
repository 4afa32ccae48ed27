package repository

import (
	"context"
	"errors"

	"github.com/chetan-code/taskshare/internal/models"
)

// Common errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrUsernameTaken = errors.New("username already registered")
)

// UserStore persists accounts. No deletion path is exposed through this
// service; the SQL schema still cascades grants away on user removal so
// a future deletion path cannot orphan rows.
type UserStore interface {
	// CreateUser registers an account. Returns ErrUsernameTaken if the
	// username exists.
	CreateUser(ctx context.Context, username, passwordHash string) (models.User, error)

	// UserByUsername returns ErrNotFound if no such account exists.
	UserByUsername(ctx context.Context, username string) (models.User, error)

	// UserByID returns ErrNotFound if no such account exists.
	UserByID(ctx context.Context, id int) (models.User, error)
}

// TaskStore persists tasks and their grants. TaskByID returns the task
// with grants eagerly loaded so an access decision needs no further
// queries. Deleting a task removes all of its grants with it.
type TaskStore interface {
	CreateTask(ctx context.Context, ownerID int, title, description string) (models.Task, error)
	TaskByID(ctx context.Context, id int) (models.Task, error)

	// TasksVisibleTo lists tasks the user owns or holds any grant on.
	TasksVisibleTo(ctx context.Context, userID int) ([]models.Task, error)

	// UpdateTask applies the non-nil fields as one transaction and
	// returns the task as committed.
	UpdateTask(ctx context.Context, id int, title, description *string) (models.Task, error)
	DeleteTask(ctx context.Context, id int) error

	// GrantPermission inserts the (task, user, kind) triple. Granting a
	// triple that already exists is a no-op, never an error.
	GrantPermission(ctx context.Context, taskID, userID int, kind models.PermissionKind) error

	// RevokePermission deletes the triple if present; revoking an
	// absent grant succeeds silently.
	RevokePermission(ctx context.Context, taskID, userID int, kind models.PermissionKind) error

	// HasGrant is an exact-match lookup of one triple.
	HasGrant(ctx context.Context, taskID, userID int, kind models.PermissionKind) (bool, error)
}
