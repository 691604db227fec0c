package repository

import (
	"context"
	"sync"
	"time"

	"sevagan-backend/internal/models"
)

// NeedRepository holds blood need requests in memory
type NeedRepository struct {
	mu    sync.RWMutex
	needs []models.BloodNeedRequest
	index map[string]int
}

// NewNeedRepository creates a new need repository
func NewNeedRepository() *NeedRepository {
	return &NeedRepository{index: make(map[string]int)}
}

// Create stores a need, assigning its id and creation time
func (r *NeedRepository) Create(_ context.Context, need *models.BloodNeedRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if need.ID == "" {
		need.ID = newID()
	}
	if need.CreatedAt.IsZero() {
		need.CreatedAt = models.At(time.Now())
	}
	r.index[need.ID] = len(r.needs)
	r.needs = append(r.needs, *need)
	return nil
}

// List returns every need, most recent first
func (r *NeedRepository) List(_ context.Context) []*models.BloodNeedRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.BloodNeedRequest, 0, len(r.needs))
	for i := len(r.needs) - 1; i >= 0; i-- {
		n := r.needs[i]
		out = append(out, &n)
	}
	return out
}

// GetByID retrieves a need by id
func (r *NeedRepository) GetByID(_ context.Context, id string) (*models.BloodNeedRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	n := r.needs[i]
	return &n, nil
}

// Count returns the number of needs
func (r *NeedRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.needs)
}

// CountSince returns the number of needs created at or after t
func (r *NeedRepository) CountSince(t time.Time) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for i := range r.needs {
		if !r.needs[i].CreatedAt.Before(t) {
			n++
		}
	}
	return n
}

// Clear removes every need
func (r *NeedRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.needs = nil
	r.index = make(map[string]int)
}
