package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"sevagan-backend/internal/models"
)

func TestNeedRepository(t *testing.T) {
	ctx := context.Background()
	r := NewNeedRepository()

	old := &models.BloodNeedRequest{City: "Erode", CreatedAt: models.At(time.Now().Add(-48 * time.Hour))}
	fresh := &models.BloodNeedRequest{City: "Chennai"}
	for _, n := range []*models.BloodNeedRequest{old, fresh} {
		if err := r.Create(ctx, n); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	list := r.List(ctx)
	if len(list) != 2 || list[0].ID != fresh.ID {
		t.Fatalf("List() = %+v, want newest first", list)
	}

	got, err := r.GetByID(ctx, old.ID)
	if err != nil || got.City != "Erode" {
		t.Fatalf("GetByID() = %+v, %v", got, err)
	}
	if _, err := r.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}

	if n := r.CountSince(time.Now().Add(-time.Hour)); n != 1 {
		t.Errorf("CountSince() = %d, want 1", n)
	}

	r.Clear()
	if r.Count() != 0 {
		t.Errorf("Count() after Clear = %d", r.Count())
	}
	if _, err := r.GetByID(ctx, fresh.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after Clear error = %v", err)
	}
}
