package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"sevagan-backend/internal/models"
)

// DonorFilter narrows a donor search. Empty fields match everything.
type DonorFilter struct {
	BloodGroup models.BloodGroup
	City       string
	Pincode    string
}

// Matches reports whether d satisfies every supplied field
func (f DonorFilter) Matches(d *models.Donor) bool {
	if f.BloodGroup != "" && d.BloodGroup != f.BloodGroup {
		return false
	}
	if f.City != "" && !strings.EqualFold(d.City, f.City) {
		return false
	}
	if f.Pincode != "" && d.Pincode != f.Pincode {
		return false
	}
	return true
}

// Contact is the pair of identifiers an account can be reached on
type Contact struct {
	Mobile string
	Email  string
}

// DonorRepository holds donor records in memory
type DonorRepository struct {
	mu     sync.RWMutex
	donors []models.Donor
}

// NewDonorRepository creates a new donor repository
func NewDonorRepository() *DonorRepository {
	return &DonorRepository{}
}

// Create stores a donor, assigning its id and creation time
func (r *DonorRepository) Create(_ context.Context, donor *models.Donor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if donor.ID == "" {
		donor.ID = newID()
	}
	if donor.CreatedAt.IsZero() {
		donor.CreatedAt = models.At(time.Now())
	}
	r.donors = append(r.donors, *donor)
	return nil
}

// Search returns matching donors, most recently created first
func (r *DonorRepository) Search(_ context.Context, filter DonorFilter) []*models.Donor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*models.Donor, 0)
	for i := len(r.donors) - 1; i >= 0; i-- {
		if filter.Matches(&r.donors[i]) {
			d := r.donors[i]
			results = append(results, &d)
		}
	}
	return results
}

// FindForAccount returns the donor linked to accountID, falling back to the
// first donor registered under one of the account's contact identifiers
func (r *DonorRepository) FindForAccount(_ context.Context, accountID string, contact Contact) (*models.Donor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if accountID != "" {
		for i := range r.donors {
			if r.donors[i].AccountID == accountID {
				d := r.donors[i]
				return &d, nil
			}
		}
	}
	for i := range r.donors {
		d := &r.donors[i]
		if (contact.Mobile != "" && d.Mobile == contact.Mobile) ||
			(contact.Email != "" && d.Email == contact.Email) {
			found := *d
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// SyncContact rewrites the contact fields of donors owned by accountID and of
// donors still registered under the previous contact values. Empty new values
// never overwrite. Returns the number of donors changed.
func (r *DonorRepository) SyncContact(_ context.Context, accountID string, previous, current Contact) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for i := range r.donors {
		d := &r.donors[i]
		before := Contact{Mobile: d.Mobile, Email: d.Email}

		owned := accountID != "" && d.AccountID == accountID
		if current.Mobile != "" && (owned || (previous.Mobile != "" && d.Mobile == previous.Mobile)) {
			d.Mobile = current.Mobile
		}
		if current.Email != "" && (owned || (previous.Email != "" && d.Email == previous.Email)) {
			d.Email = current.Email
		}

		if before.Mobile != d.Mobile || before.Email != d.Email {
			changed++
		}
	}
	return changed
}

// Count returns the number of donors
func (r *DonorRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.donors)
}

// Clear removes every donor
func (r *DonorRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.donors = nil
}
