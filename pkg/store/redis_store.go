package store

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"lekha-gateway/internal/pkg/logger"
	"lekha-gateway/pkg/assistant"
)

// RedisStore persists the envelope in Redis, for deployments where the
// assistant state should survive across hosts. Same best-effort contract as
// the other backends.
type RedisStore struct {
	rdb *redis.Client
	log logger.ILogger
}

func NewRedisStore(redisURL string, log logger.ILogger) *RedisStore {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn("store", "failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: redisURL}
	}
	return &RedisStore{rdb: redis.NewClient(opt), log: log}
}

func (s *RedisStore) Save(env *assistant.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		s.log.Warn("store", "failed to encode state", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.rdb.Set(context.Background(), StorageKey, data, 0).Err(); err != nil {
		s.log.Warn("store", "failed to write state to redis", map[string]interface{}{"error": err.Error()})
	}
}

func (s *RedisStore) Load() (*assistant.Envelope, bool) {
	data, err := s.rdb.Get(context.Background(), StorageKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("store", "failed to read state from redis", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}

	var env assistant.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.log.Warn("store", "stored state is corrupt, ignoring", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	return &env, true
}
