package repository

import (
	"context"
	"sync"
	"time"

	"sevagan-backend/internal/models"
)

// AccountRepository holds verified accounts in memory
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
	order    []string
}

// NewAccountRepository creates a new account repository
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]*models.Account)}
}

// Create stores a new account, assigning its id and creation time
func (r *AccountRepository) Create(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account.ID == "" {
		account.ID = newID()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = models.At(time.Now())
	}
	stored := *account
	r.accounts[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	return nil
}

// GetByID retrieves an account by id
func (r *AccountRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *a
	return &out, nil
}

// GetByContact returns the first account registered with the given mobile or email
func (r *AccountRepository) GetByContact(_ context.Context, contact Contact) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		a := r.accounts[id]
		if (contact.Mobile != "" && a.Mobile == contact.Mobile) ||
			(contact.Email != "" && a.Email == contact.Email) {
			out := *a
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// Update applies fn to the stored account and returns the account as it was
// before and after the change
func (r *AccountRepository) Update(_ context.Context, id string, fn func(*models.Account)) (before, after *models.Account, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	prev := *a
	fn(a)
	next := *a
	return &prev, &next, nil
}

// List returns every account in creation order
func (r *AccountRepository) List(_ context.Context) []*models.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Account, 0, len(r.order))
	for _, id := range r.order {
		a := *r.accounts[id]
		out = append(out, &a)
	}
	return out
}

// Count returns the number of accounts
func (r *AccountRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Clear removes every account
func (r *AccountRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = make(map[string]*models.Account)
	r.order = nil
}
