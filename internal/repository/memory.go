package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/chetan-code/taskshare/internal/models"
)

// MemoryStore implements UserStore and TaskStore with in-process maps.
// It serves as a no-database mode and backs the handler tests. All
// methods are safe for concurrent use; grants live inside their task so
// deleting the task drops them with it.
type MemoryStore struct {
	mu         sync.Mutex
	users      map[int]models.User
	userByName map[string]int
	tasks      map[int]models.Task
	nextUserID int
	nextTaskID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int]models.User),
		userByName: make(map[string]int),
		tasks:      make(map[int]models.Task),
		nextUserID: 1,
		nextTaskID: 1,
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, username, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.userByName[username]; taken {
		return models.User{}, ErrUsernameTaken
	}

	u := models.User{ID: s.nextUserID, Username: username, PasswordHash: passwordHash}
	s.nextUserID++
	s.users[u.ID] = u
	s.userByName[username] = u.ID
	return u, nil
}

func (s *MemoryStore) UserByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.userByName[username]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return s.users[id], nil
}

func (s *MemoryStore) UserByID(_ context.Context, id int) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) CreateTask(_ context.Context, ownerID int, title, description string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := models.Task{ID: s.nextTaskID, Title: title, Description: description, OwnerID: ownerID}
	s.nextTaskID++
	s.tasks[t.ID] = t
	return t, nil
}

func (s *MemoryStore) TaskByID(_ context.Context, id int) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, ErrNotFound
	}
	//copy the grants so callers never alias store state
	t.Grants = slices.Clone(t.Grants)
	return t, nil
}

func (s *MemoryStore) TasksVisibleTo(_ context.Context, userID int) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var visible []models.Task
	for _, t := range s.tasks {
		if t.OwnerID == userID || hasAnyGrant(t, userID) {
			t.Grants = slices.Clone(t.Grants)
			visible = append(visible, t)
		}
	}
	slices.SortFunc(visible, func(a, b models.Task) int { return a.ID - b.ID })
	return visible, nil
}

func hasAnyGrant(t models.Task, userID int) bool {
	for _, g := range t.Grants {
		if g.UserID == userID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) UpdateTask(_ context.Context, id int, title, description *string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, ErrNotFound
	}
	if title != nil {
		t.Title = *title
	}
	if description != nil {
		t.Description = *description
	}
	s.tasks[id] = t

	t.Grants = slices.Clone(t.Grants)
	return t, nil
}

func (s *MemoryStore) DeleteTask(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) GrantPermission(_ context.Context, taskID, userID int, kind models.PermissionKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return ErrNotFound
	}
	for _, g := range t.Grants {
		if g.UserID == userID && g.Kind == kind {
			//granting the exact same triple twice is a no-op
			return nil
		}
	}
	t.Grants = append(slices.Clone(t.Grants), models.Grant{TaskID: taskID, UserID: userID, Kind: kind})
	s.tasks[taskID] = t
	return nil
}

func (s *MemoryStore) RevokePermission(_ context.Context, taskID, userID int, kind models.PermissionKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return ErrNotFound
	}
	t.Grants = slices.DeleteFunc(slices.Clone(t.Grants), func(g models.Grant) bool {
		return g.UserID == userID && g.Kind == kind
	})
	s.tasks[taskID] = t
	return nil
}

func (s *MemoryStore) HasGrant(_ context.Context, taskID, userID int, kind models.PermissionKind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return false, nil
	}
	for _, g := range t.Grants {
		if g.UserID == userID && g.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}
