package repository

import (
	"context"
	"encoding/json"
	"narraprep_backend/internal/model"
	"narraprep_backend/pkg/logger"
	"narraprep_backend/pkg/monitoring"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const questionCacheKeyPrefix = "question:"

// QuestionCache is a read-through cache of question documents in Redis. A nil client
// disables it; cache failures are logged and treated as misses.
type QuestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewQuestionCache(client *redis.Client, ttl time.Duration) *QuestionCache {
	return &QuestionCache{client: client, ttl: ttl}
}

func (c *QuestionCache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *QuestionCache) Get(ctx context.Context, id string) (*model.Question, bool) {
	if !c.Enabled() {
		return nil, false
	}

	data, err := c.client.Get(ctx, questionCacheKeyPrefix+id).Bytes()
	if err == redis.Nil {
		monitoring.QuestionCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		logger.Log.Warn("Question cache get failed", zap.String("question_id", id), zap.Error(err))
		return nil, false
	}

	var q model.Question
	if err := json.Unmarshal(data, &q); err != nil {
		c.Delete(ctx, id)
		return nil, false
	}
	monitoring.QuestionCacheLookups.WithLabelValues("hit").Inc()
	return &q, true
}

func (c *QuestionCache) Set(ctx context.Context, q *model.Question) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(q)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, questionCacheKeyPrefix+q.ID, data, c.ttl).Err(); err != nil {
		logger.Log.Warn("Question cache set failed", zap.String("question_id", q.ID), zap.Error(err))
	}
}

func (c *QuestionCache) Delete(ctx context.Context, id string) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, questionCacheKeyPrefix+id).Err(); err != nil {
		logger.Log.Warn("Question cache delete failed", zap.String("question_id", id), zap.Error(err))
	}
}

// Ping reports the cache health; a disabled cache is healthy.
func (c *QuestionCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
