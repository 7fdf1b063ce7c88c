package store

import (
	"context"
	"fmt"

	"skincare-routine/internal/infrastructure/config"
	"skincare-routine/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore 以 Redis 儲存流程，值為 JSON
type RedisStore struct {
	client *redis.Client
	config config.RedisConfig
}

// NewRedisStore 創建 Redis 儲存，連線檢查交給 Ping
func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisStore{
		client: client,
		config: cfg,
	}
}

// Ping 測試連接
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}

// Save 寫入流程
func (s *RedisStore) Save(ctx context.Context, userID string, routine common.Routine) error {
	data, err := common.ToJSON(routine)
	if err != nil {
		return fmt.Errorf("failed to marshal routine: %w", err)
	}

	if err := s.client.Set(ctx, s.key(userID), data, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to save routine: %w", err)
	}

	common.LogDebug("Routine saved to redis",
		zap.String("user_id", userID),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Load 讀取流程
func (s *RedisStore) Load(ctx context.Context, userID string) (common.Routine, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return common.Routine{}, ErrNotFound
		}
		return common.Routine{}, fmt.Errorf("failed to load routine: %w", err)
	}

	var routine common.Routine
	if err := common.ParseJSONBytes(data, &routine); err != nil {
		return common.Routine{}, fmt.Errorf("failed to unmarshal routine: %w", err)
	}
	if routine.Overrides == nil {
		routine.Overrides = map[common.StepType]string{}
	}
	if routine.CompletedSteps == nil {
		routine.CompletedSteps = []string{}
	}
	return routine, nil
}

// Delete 刪除流程
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete routine: %w", err)
	}
	return nil
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// key 生成鍵
func (s *RedisStore) key(userID string) string {
	return s.config.KeyPrefix + userID
}
