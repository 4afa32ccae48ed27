package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chetan-code/taskshare/internal/access"
	"github.com/chetan-code/taskshare/internal/models"
	"github.com/chetan-code/taskshare/internal/repository"
)

// TaskHandler serves the task routes. Every allow/deny decision goes
// through the access package against a task loaded with its grants.
type TaskHandler struct {
	tasks repository.TaskStore
	users repository.UserStore
}

func NewTaskHandler(tasks repository.TaskStore, users repository.UserStore) *TaskHandler {
	return &TaskHandler{tasks: tasks, users: users}
}

func userIDFromContext(r *http.Request) (int, error) {
	//get user id from context (context is prepared by auth middleware)
	val := r.Context().Value(userIDKey)

	id, ok := val.(int)
	if !ok {
		slog.Error("error_missing_user_id_in_context")
		return 0, fmt.Errorf("no authenticated user in context")
	}

	return id, nil
}

// loadTask pulls the task (grants included) and writes the 400/404
// responses itself. The bool reports whether the caller may proceed.
func (h *TaskHandler) loadTask(w http.ResponseWriter, r *http.Request) (models.Task, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "todoID"))
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid todo id")
		return models.Task{}, false
	}

	task, err := h.tasks.TaskByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		respondDetail(w, http.StatusNotFound, "Todo not found")
		return models.Task{}, false
	}
	if err != nil {
		slog.Error("task_fetch_failed", "task_id", id, "error", err)
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return models.Task{}, false
	}

	return task, true
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *TaskHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		respondDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		respondDetail(w, http.StatusBadRequest, "The 'title' field is required")
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		slog.Error("task_creation_failed", "error", err, "owner_id", userID)
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		respondDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	tasks, err := h.tasks.TasksVisibleTo(r.Context(), userID)
	if err != nil {
		slog.Error("task_listing_failed", "error", err, "user_id", userID)
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	respondJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		respondDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	if !access.Can(&task, userID, access.ActionRead) {
		respondDetail(w, http.StatusForbidden, "Not enough rights")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (h *TaskHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		respondDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	//a read-only grant does not allow mutation
	if !access.Can(&task, userID, access.ActionUpdate) {
		respondDetail(w, http.StatusForbidden, "Not enough rights")
		return
	}

	updated, err := h.tasks.UpdateTask(r.Context(), task.ID, req.Title, req.Description)
	if errors.Is(err, repository.ErrNotFound) {
		respondDetail(w, http.StatusNotFound, "Todo not found")
		return
	}
	if err != nil {
		slog.Error("task_update_failed", "task_id", task.ID, "error", err)
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		respondDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	if !access.Can(&task, userID, access.ActionDelete) {
		respondDetail(w, http.StatusForbidden, "Only owner can delete")
		return
	}

	err = h.tasks.DeleteTask(r.Context(), task.ID)
	if errors.Is(err, repository.ErrNotFound) {
		respondDetail(w, http.StatusNotFound, "Todo not found")
		return
	}
	if err != nil {
		slog.Error("task_deletion_failed", "task_id", task.ID, "error", err)
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}

	respondDetail(w, http.StatusOK, "Todo deleted")
}

type grantRequest struct {
	Username   string `json:"username"`
	Permission string `json:"permission"`
}

func (h *TaskHandler) GrantHandler(w http.ResponseWriter, r *http.Request) {
	h.changeGrant(w, r, true)
}

func (h *TaskHandler) RevokeHandler(w http.ResponseWriter, r *http.Request) {
	h.changeGrant(w, r, false)
}

// changeGrant is the shared body of the grant and revoke endpoints:
// owner-only, target must exist and must not be the owner themselves.
func (h *TaskHandler) changeGrant(w http.ResponseWriter, r *http.Request, granting bool) {
	userID, err := userIDFromContext(r)
	if err != nil {
		respondDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	kind, err := models.ParsePermissionKind(req.Permission)
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "Permission must be 'read' or 'update'")
		return
	}

	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	if !access.CanAdminister(&task, userID) {
		if granting {
			respondDetail(w, http.StatusForbidden, "Only owner can grant permissions")
		} else {
			respondDetail(w, http.StatusForbidden, "Only owner can revoke permissions")
		}
		return
	}

	target, err := h.users.UserByUsername(r.Context(), req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		respondDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("user_lookup_failed", "username", req.Username, "error", err)
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}

	if target.ID == userID {
		if granting {
			respondDetail(w, http.StatusBadRequest, "Cannot grant permission to yourself")
		} else {
			respondDetail(w, http.StatusBadRequest, "Cannot revoke permission from yourself")
		}
		return
	}

	if granting {
		err = h.tasks.GrantPermission(r.Context(), task.ID, target.ID, kind)
	} else {
		err = h.tasks.RevokePermission(r.Context(), task.ID, target.ID, kind)
	}
	if err != nil {
		slog.Error("grant_change_failed", "task_id", task.ID, "target_id", target.ID, "error", err)
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}

	if granting {
		respondDetail(w, http.StatusOK, fmt.Sprintf("Granted %s to %s", kind, req.Username))
	} else {
		respondDetail(w, http.StatusOK, fmt.Sprintf("Revoked %s from %s", kind, req.Username))
	}
}
