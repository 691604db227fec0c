package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"sevagan-backend/internal/models"
	"sevagan-backend/internal/validation"

	"github.com/goccy/go-json"
)

func TestCreateNeedCopiesRequesterName(t *testing.T) {
	env := newTestEnv(t)
	env.createAccount(t, models.Account{ID: "2", Type: models.AccountTypeHospital, Name: "CITY HOSPITAL"})

	need, err := env.needs.CreateNeed(context.Background(), CreateNeedRequest{
		BloodGroup:         models.BloodGroupBPos,
		City:               "Erode",
		Pincode:            "638001",
		NeededAtISO:        neededAt(3 * time.Hour),
		RequesterAccountID: "2",
	})
	if err != nil {
		t.Fatalf("CreateNeed() error = %v", err)
	}
	if need.RequesterName != "CITY HOSPITAL" {
		t.Errorf("RequesterName = %q, want CITY HOSPITAL", need.RequesterName)
	}
	if need.ID == "" || need.CreatedAt.IsZero() {
		t.Errorf("need missing id/createdAt: %+v", need)
	}
}

func TestCreateNeedKeepsSuppliedName(t *testing.T) {
	env := newTestEnv(t)
	env.createAccount(t, models.Account{ID: "2", Name: "CITY HOSPITAL"})

	need, err := env.needs.CreateNeed(context.Background(), CreateNeedRequest{
		BloodGroup:         models.BloodGroupBPos,
		City:               "Erode",
		NeededAtISO:        neededAt(time.Hour),
		RequesterAccountID: "2",
		RequesterName:      "Ward 4",
	})
	if err != nil {
		t.Fatalf("CreateNeed() error = %v", err)
	}
	if need.RequesterName != "Ward 4" {
		t.Errorf("RequesterName = %q, want Ward 4", need.RequesterName)
	}
}

func TestCreateNeedBroadcast(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subs := []*Subscription{env.needs.Subscribe(ctx), env.needs.Subscribe(ctx), env.needs.Subscribe(ctx)}

	need, err := env.needs.CreateNeed(context.Background(), CreateNeedRequest{
		BloodGroup:  models.BloodGroupONeg,
		City:        "Chennai",
		NeededAtISO: neededAt(time.Hour),
		TimeOption:  models.TimeOptionWithin1Hour,
	})
	if err != nil {
		t.Fatalf("CreateNeed() error = %v", err)
	}

	for i, sub := range subs {
		var got models.BloodNeedRequest
		if err := json.Unmarshal(receive(t, sub), &got); err != nil {
			t.Fatalf("sub %d: invalid payload: %v", i, err)
		}
		if got.CreatedAt.UnixMilli() != need.CreatedAt.UnixMilli() {
			t.Errorf("sub %d createdAt = %v, want %v", i, got.CreatedAt, need.CreatedAt)
		}
		got.CreatedAt = need.CreatedAt
		if !reflect.DeepEqual(got, *need) {
			t.Errorf("sub %d got %+v, want %+v", i, got, *need)
		}
		select {
		case extra := <-sub.Events():
			t.Errorf("sub %d received extra event %s", i, extra)
		default:
		}
	}
}

func TestCreateNeedValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  CreateNeedRequest
	}{
		{"missing blood group", CreateNeedRequest{City: "Erode", NeededAtISO: neededAt(time.Hour)}},
		{"bad blood group", CreateNeedRequest{BloodGroup: "Q", City: "Erode", NeededAtISO: neededAt(time.Hour)}},
		{"missing city", CreateNeedRequest{BloodGroup: models.BloodGroupAPos, NeededAtISO: neededAt(time.Hour)}},
		{"bad timestamp", CreateNeedRequest{BloodGroup: models.BloodGroupAPos, City: "Erode", NeededAtISO: "tomorrow"}},
		{"bad time option", CreateNeedRequest{BloodGroup: models.BloodGroupAPos, City: "Erode", NeededAtISO: neededAt(time.Hour), TimeOption: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.needs.CreateNeed(context.Background(), tt.req)
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Errorf("CreateNeed() error = %v, want validation error", err)
			}
		})
	}
	if n := len(env.needs.ListNeeds(context.Background())); n != 0 {
		t.Errorf("%d needs stored after rejected creates", n)
	}
}

func TestGetNeed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	need, err := env.needs.CreateNeed(ctx, CreateNeedRequest{BloodGroup: models.BloodGroupAPos, City: "Salem", NeededAtISO: neededAt(time.Hour)})
	if err != nil {
		t.Fatalf("CreateNeed() error = %v", err)
	}

	got, err := env.needs.GetNeed(ctx, need.ID)
	if err != nil || got.ID != need.ID {
		t.Errorf("GetNeed() = %+v, %v", got, err)
	}

	_, err = env.needs.GetNeed(ctx, "missing")
	if !errors.Is(err, ErrNeedNotFound) || !errors.Is(err, ErrNotFound) {
		t.Errorf("GetNeed() error = %v, want ErrNeedNotFound", err)
	}
}
