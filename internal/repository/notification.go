package repository

import (
	"context"
	"sync"
	"time"

	"sevagan-backend/internal/models"
)

// NotificationRepository is the append-only log of notifications and need responses
type NotificationRepository struct {
	mu            sync.RWMutex
	notifications []models.Notification
	responses     []models.NeedResponse
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

// CreateNotification appends a notification entry
func (r *NotificationRepository) CreateNotification(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = newID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = models.At(time.Now())
	}
	r.notifications = append(r.notifications, *n)
	return nil
}

// CreateResponse appends a need response entry
func (r *NotificationRepository) CreateResponse(_ context.Context, resp *models.NeedResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if resp.ID == "" {
		resp.ID = newID()
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = models.At(time.Now())
	}
	r.responses = append(r.responses, *resp)
	return nil
}

// Notifications returns every notification in creation order
func (r *NotificationRepository) Notifications(_ context.Context) []models.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

// Responses returns every need response in creation order
func (r *NotificationRepository) Responses(_ context.Context) []models.NeedResponse {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.NeedResponse, len(r.responses))
	copy(out, r.responses)
	return out
}

// Clear removes every entry
func (r *NotificationRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = nil
	r.responses = nil
}
