package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sevagan-backend/internal/models"
	"sevagan-backend/internal/validation"
)

func TestRespondToNeed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	requester := env.createAccount(t, models.Account{
		Type:   models.AccountTypeHospital,
		Name:   "CITY HOSPITAL",
		Mobile: "9876500000",
		Email:  "desk@cityhospital.example",
	})
	need, err := env.needs.CreateNeed(ctx, CreateNeedRequest{
		BloodGroup:         models.BloodGroupBPos,
		City:               "Erode",
		NeededAtISO:        neededAt(2 * time.Hour),
		TimeOption:         models.TimeOptionEmergency,
		RequesterAccountID: requester.ID,
	})
	if err != nil {
		t.Fatalf("CreateNeed() error = %v", err)
	}

	resp, err := env.relay.RespondToNeed(ctx, RespondRequest{
		NeedID:    need.ID,
		Contact:   "9876500000",
		DonorName: "Karthik",
		Message:   "On my way",
	})
	if err != nil {
		t.Fatalf("RespondToNeed() error = %v", err)
	}

	want := []string{"9876500000", "desk@cityhospital.example"}
	if len(resp.NotifyTo) != len(want) {
		t.Fatalf("NotifyTo = %v, want %v", resp.NotifyTo, want)
	}
	for i := range want {
		if resp.NotifyTo[i] != want[i] {
			t.Errorf("NotifyTo[%d] = %q, want %q", i, resp.NotifyTo[i], want[i])
		}
	}
	if resp.Response.ID == "" || resp.Response.NeedID != need.ID {
		t.Errorf("Response = %+v", resp.Response)
	}

	msgs := env.channel.Messages()
	if len(msgs) != 2 {
		t.Fatalf("delivered %d messages, want 2", len(msgs))
	}
	if !strings.Contains(msgs[0].Body, "Karthik") || !strings.Contains(msgs[0].Body, "(Emergency)") {
		t.Errorf("message body = %q", msgs[0].Body)
	}
	if n := len(env.notificationRepo.Responses(ctx)); n != 1 {
		t.Errorf("stored responses = %d, want 1", n)
	}
}

func TestRespondToNeedWithoutRequester(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	need, err := env.needs.CreateNeed(ctx, CreateNeedRequest{BloodGroup: models.BloodGroupAPos, City: "Salem", NeededAtISO: neededAt(time.Hour)})
	if err != nil {
		t.Fatalf("CreateNeed() error = %v", err)
	}

	resp, err := env.relay.RespondToNeed(ctx, RespondRequest{NeedID: need.ID})
	if err != nil {
		t.Fatalf("RespondToNeed() error = %v", err)
	}
	if resp.NotifyTo == nil || len(resp.NotifyTo) != 0 {
		t.Errorf("NotifyTo = %#v, want empty", resp.NotifyTo)
	}
}

func TestRespondToNeedErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.relay.RespondToNeed(context.Background(), RespondRequest{NeedID: "missing"})
	if !errors.Is(err, ErrNeedNotFound) {
		t.Errorf("RespondToNeed() error = %v, want ErrNeedNotFound", err)
	}

	_, err = env.relay.RespondToNeed(context.Background(), RespondRequest{})
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Errorf("RespondToNeed() error = %v, want validation error", err)
	}
}

func TestNotifyDonor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.relay.NotifyDonor(ctx, NotifyRequest{Mobile: "9123456780", DonorID: "d1", Message: "O- needed in Chennai"})
	if err != nil {
		t.Fatalf("NotifyDonor() error = %v", err)
	}
	if !resp.OK || resp.Notification.ID == "" {
		t.Errorf("NotifyDonor() = %+v", resp)
	}

	msgs := env.channel.Messages()
	if len(msgs) != 1 || msgs[0].Channel != models.ChannelSMS {
		t.Errorf("delivered = %+v", msgs)
	}

	_, err = env.relay.NotifyDonor(ctx, NotifyRequest{DonorID: "d1"})
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Errorf("NotifyDonor() error = %v, want validation error", err)
	}
}
