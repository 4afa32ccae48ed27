package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/chetan-code/taskshare/internal/models"
)

func TestMemoryCreateUserDuplicate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.CreateUser(ctx, "alice", "hash-a")
	if err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if first.ID == 0 {
		t.Error("expected a non-zero user id")
	}

	_, err = s.CreateUser(ctx, "alice", "hash-b")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken; got %v", err)
	}
}

func TestMemoryGrantIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	owner, _ := s.CreateUser(ctx, "alice", "h")
	bob, _ := s.CreateUser(ctx, "bob", "h")
	task, _ := s.CreateTask(ctx, owner.ID, "T1", "")

	//granting the same triple twice must leave exactly one row
	for i := 0; i < 2; i++ {
		if err := s.GrantPermission(ctx, task.ID, bob.ID, models.PermissionRead); err != nil {
			t.Fatalf("grant %d failed: %v", i, err)
		}
	}

	got, err := s.TaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("TaskByID failed: %v", err)
	}
	if len(got.Grants) != 1 {
		t.Errorf("expected 1 grant row; got %d", len(got.Grants))
	}

	has, err := s.HasGrant(ctx, task.ID, bob.ID, models.PermissionRead)
	if err != nil || !has {
		t.Errorf("expected grant to exist; has=%t err=%v", has, err)
	}
}

func TestMemoryRevokeAbsentGrant(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	owner, _ := s.CreateUser(ctx, "alice", "h")
	bob, _ := s.CreateUser(ctx, "bob", "h")
	task, _ := s.CreateTask(ctx, owner.ID, "T1", "")

	//revoking something never granted succeeds silently
	if err := s.RevokePermission(ctx, task.ID, bob.ID, models.PermissionUpdate); err != nil {
		t.Errorf("expected silent success; got %v", err)
	}
}

func TestMemoryRevokeLeavesOtherKind(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	owner, _ := s.CreateUser(ctx, "alice", "h")
	bob, _ := s.CreateUser(ctx, "bob", "h")
	task, _ := s.CreateTask(ctx, owner.ID, "T1", "")

	s.GrantPermission(ctx, task.ID, bob.ID, models.PermissionRead)
	s.GrantPermission(ctx, task.ID, bob.ID, models.PermissionUpdate)

	if err := s.RevokePermission(ctx, task.ID, bob.ID, models.PermissionRead); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	hasRead, _ := s.HasGrant(ctx, task.ID, bob.ID, models.PermissionRead)
	hasUpdate, _ := s.HasGrant(ctx, task.ID, bob.ID, models.PermissionUpdate)
	if hasRead {
		t.Error("read grant should be gone")
	}
	if !hasUpdate {
		t.Error("update grant should survive")
	}
}

func TestMemoryDeleteTaskCascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	owner, _ := s.CreateUser(ctx, "alice", "h")
	bob, _ := s.CreateUser(ctx, "bob", "h")
	task, _ := s.CreateTask(ctx, owner.ID, "T1", "")
	s.GrantPermission(ctx, task.ID, bob.ID, models.PermissionRead)

	if err := s.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := s.TaskByID(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete; got %v", err)
	}
	//no orphan grants remain queryable
	has, err := s.HasGrant(ctx, task.ID, bob.ID, models.PermissionRead)
	if err != nil {
		t.Fatalf("HasGrant failed: %v", err)
	}
	if has {
		t.Error("expected grants to be gone with the task")
	}
}

func TestMemoryTasksVisibleTo(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	alice, _ := s.CreateUser(ctx, "alice", "h")
	bob, _ := s.CreateUser(ctx, "bob", "h")
	carol, _ := s.CreateUser(ctx, "carol", "h")

	owned, _ := s.CreateTask(ctx, alice.ID, "mine", "")
	shared, _ := s.CreateTask(ctx, bob.ID, "shared", "")
	s.CreateTask(ctx, carol.ID, "hidden", "")
	s.GrantPermission(ctx, shared.ID, alice.ID, models.PermissionUpdate)

	visible, err := s.TasksVisibleTo(ctx, alice.ID)
	if err != nil {
		t.Fatalf("TasksVisibleTo failed: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible tasks; got %d", len(visible))
	}
	if visible[0].ID != owned.ID || visible[1].ID != shared.ID {
		t.Errorf("unexpected visible set: %+v", visible)
	}
}

func TestMemoryUpdateTaskPartial(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	alice, _ := s.CreateUser(ctx, "alice", "h")
	task, _ := s.CreateTask(ctx, alice.ID, "old title", "old description")

	title := "new title"
	updated, err := s.UpdateTask(ctx, task.ID, &title, nil)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != "new title" {
		t.Errorf("expected title to change; got %q", updated.Title)
	}
	if updated.Description != "old description" {
		t.Errorf("expected description untouched; got %q", updated.Description)
	}

	if _, err := s.UpdateTask(ctx, 999, &title, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing task; got %v", err)
	}
}
