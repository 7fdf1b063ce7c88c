package store

import (
	"context"
	"errors"
	"sync"

	"skincare-routine/internal/pkg/common"
)

// ErrNotFound 使用者尚無已儲存的流程
var ErrNotFound = errors.New("routine not found")

// Store 保養流程持久化
type Store interface {
	Save(ctx context.Context, userID string, routine common.Routine) error
	Load(ctx context.Context, userID string) (common.Routine, error)
	Delete(ctx context.Context, userID string) error
}

// MemoryStore 行程內的流程儲存
type MemoryStore struct {
	mu       sync.RWMutex
	routines map[string]common.Routine
}

// NewMemoryStore 創建記憶體儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		routines: make(map[string]common.Routine),
	}
}

// Save 整份替換使用者的流程
func (s *MemoryStore) Save(ctx context.Context, userID string, routine common.Routine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routines[userID] = routine
	return nil
}

// Load 讀取使用者的流程
func (s *MemoryStore) Load(ctx context.Context, userID string) (common.Routine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	routine, ok := s.routines[userID]
	if !ok {
		return common.Routine{}, ErrNotFound
	}
	return routine, nil
}

// Delete 刪除使用者的流程
func (s *MemoryStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.routines, userID)
	return nil
}
