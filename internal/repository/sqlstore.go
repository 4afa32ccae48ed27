package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chetan-code/taskshare/internal/models"
)

// SQLStore backs UserStore and TaskStore with postgres through the pgx
// stdlib driver. All cross-request consistency comes from the store's
// own transaction isolation plus the UNIQUE(task_id, user_id, kind)
// constraint; no application-level locking.
type SQLStore struct {
	db    *sql.DB
	cache *TaskCache
}

// NewSQLStore wires a store over db. cache may be nil when no Redis
// deployment exists.
func NewSQLStore(db *sql.DB, cache *TaskCache) (*SQLStore, error) {
	s := &SQLStore{db: db, cache: cache}

	err := s.createTables()
	if err != nil {
		return nil, fmt.Errorf("could not initialize tables: %w", err)
	}

	return s, nil
}

func (s *SQLStore) createTables() error {
	createTableQuery := `CREATE TABLE IF NOT EXISTS users(
		id SERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks(
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS task_grants(
		id SERIAL PRIMARY KEY,
		task_id INTEGER NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		UNIQUE (task_id, user_id, kind)
	);`
	_, err := s.db.Exec(createTableQuery)
	return err
}

func (s *SQLStore) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	/*ON CONFLICT DO NOTHING makes the duplicate check and the insert one
	atomic statement - a concurrent registration of the same username
	cannot slip between a select and an insert.*/
	query := `INSERT INTO users (username, password_hash) VALUES ($1, $2)
		ON CONFLICT (username) DO NOTHING RETURNING id`
	u := models.User{Username: username, PasswordHash: passwordHash}
	err := s.db.QueryRowContext(ctx, query, username, passwordHash).Scan(&u.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUsernameTaken
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *SQLStore) UserByUsername(ctx context.Context, username string) (models.User, error) {
	query := "SELECT id, username, password_hash FROM users WHERE username = $1"
	var u models.User
	err := s.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *SQLStore) UserByID(ctx context.Context, id int) (models.User, error) {
	query := "SELECT id, username, password_hash FROM users WHERE id = $1"
	var u models.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *SQLStore) CreateTask(ctx context.Context, ownerID int, title, description string) (models.Task, error) {
	query := "INSERT INTO tasks (title, description, owner_id) VALUES ($1, $2, $3) RETURNING id"
	t := models.Task{Title: title, Description: description, OwnerID: ownerID}
	err := s.db.QueryRowContext(ctx, query, title, description, ownerID).Scan(&t.ID)
	if err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func (s *SQLStore) TaskByID(ctx context.Context, id int) (models.Task, error) {
	if t, ok := s.cache.Task(ctx, id); ok {
		return t, nil
	}

	query := "SELECT id, title, description, owner_id FROM tasks WHERE id = $1"
	var t models.Task
	err := s.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Title, &t.Description, &t.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}

	t.Grants, err = s.grantsForTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	s.cache.SetTask(ctx, t)
	return t, nil
}

func (s *SQLStore) grantsForTask(ctx context.Context, taskID int) ([]models.Grant, error) {
	query := "SELECT task_id, user_id, kind FROM task_grants WHERE task_id = $1"
	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //close the connect in the end
	var grants []models.Grant
	for rows.Next() {
		var g models.Grant
		if err := rows.Scan(&g.TaskID, &g.UserID, &g.Kind); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (s *SQLStore) TasksVisibleTo(ctx context.Context, userID int) ([]models.Task, error) {
	// owned tasks plus tasks with any grant for the user - either kind
	// makes the task readable
	query := `SELECT id, title, description, owner_id FROM tasks
		WHERE owner_id = $1
		   OR id IN (SELECT task_id FROM task_grants WHERE user_id = $1)
		ORDER BY id ASC`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.OwnerID); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLStore) UpdateTask(ctx context.Context, id int, title, description *string) (models.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Task{}, err
	}
	//rollback is a no-op once the commit went through
	defer tx.Rollback()

	query := "SELECT id, title, description, owner_id FROM tasks WHERE id = $1"
	var t models.Task
	err = tx.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Title, &t.Description, &t.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}

	if title != nil {
		t.Title = *title
	}
	if description != nil {
		t.Description = *description
	}

	_, err = tx.ExecContext(ctx, "UPDATE tasks SET title = $1, description = $2 WHERE id = $3",
		t.Title, t.Description, id)
	if err != nil {
		return models.Task{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Task{}, err
	}

	s.cache.Invalidate(ctx, id)
	return t, nil
}

func (s *SQLStore) DeleteTask(ctx context.Context, id int) error {
	// grants go with the task via ON DELETE CASCADE
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

func (s *SQLStore) GrantPermission(ctx context.Context, taskID, userID int, kind models.PermissionKind) error {
	query := `INSERT INTO task_grants (task_id, user_id, kind) VALUES ($1, $2, $3)
		ON CONFLICT (task_id, user_id, kind) DO NOTHING`
	_, err := s.db.ExecContext(ctx, query, taskID, userID, string(kind))
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, taskID)
	return nil
}

func (s *SQLStore) RevokePermission(ctx context.Context, taskID, userID int, kind models.PermissionKind) error {
	query := "DELETE FROM task_grants WHERE task_id = $1 AND user_id = $2 AND kind = $3"
	_, err := s.db.ExecContext(ctx, query, taskID, userID, string(kind))
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, taskID)
	return nil
}

func (s *SQLStore) HasGrant(ctx context.Context, taskID, userID int, kind models.PermissionKind) (bool, error) {
	query := "SELECT EXISTS (SELECT 1 FROM task_grants WHERE task_id = $1 AND user_id = $2 AND kind = $3)"
	var exists bool
	err := s.db.QueryRowContext(ctx, query, taskID, userID, string(kind)).Scan(&exists)
	return exists, err
}
