package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chetan-code/taskshare/internal/models"
)

const taskCacheTTL = 5 * time.Minute

// cachedTask carries the grants explicitly; the Task JSON shape hides
// them and a cache entry without grants would skew access decisions.
type cachedTask struct {
	Task   models.Task    `json:"task"`
	Grants []models.Grant `json:"grants"`
}

// TaskCache keeps recently fetched tasks, grants included, in Redis.
// A nil *TaskCache is valid and caches nothing, so the SQL store runs
// fine without a Redis deployment. Cache failures only cost a database
// round trip; they never fail the request.
type TaskCache struct {
	rdb *redis.Client
}

func NewTaskCache(rdb *redis.Client) *TaskCache {
	return &TaskCache{rdb: rdb}
}

func taskCacheKey(id int) string {
	return fmt.Sprintf("task:%d", id)
}

func (c *TaskCache) Task(ctx context.Context, id int) (models.Task, bool) {
	if c == nil || c.rdb == nil {
		return models.Task{}, false
	}

	val, err := c.rdb.Get(ctx, taskCacheKey(id)).Result()
	if err != nil {
		return models.Task{}, false
	}

	var entry cachedTask
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		slog.Warn("task_cache_decode_failed", "key", taskCacheKey(id), "error", err)
		return models.Task{}, false
	}

	t := entry.Task
	t.Grants = entry.Grants
	return t, true
}

func (c *TaskCache) SetTask(ctx context.Context, t models.Task) {
	if c == nil || c.rdb == nil {
		return
	}

	data, err := json.Marshal(cachedTask{Task: t, Grants: t.Grants})
	if err != nil {
		slog.Warn("task_cache_encode_failed", "task_id", t.ID, "error", err)
		return
	}

	if err := c.rdb.Set(ctx, taskCacheKey(t.ID), data, taskCacheTTL).Err(); err != nil {
		slog.Warn("task_cache_set_failed", "key", taskCacheKey(t.ID), "error", err)
	}
}

// Invalidate drops the cached task. Every task or grant mutation calls
// this so a stale entry can outlive the truth by at most one in-flight
// read.
func (c *TaskCache) Invalidate(ctx context.Context, id int) {
	if c == nil || c.rdb == nil {
		return
	}

	if err := c.rdb.Del(ctx, taskCacheKey(id)).Err(); err != nil {
		slog.Warn("task_cache_del_failed", "key", taskCacheKey(id), "error", err)
	}
}
