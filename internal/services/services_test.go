package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"sevagan-backend/internal/models"
	"sevagan-backend/internal/notify"
	"sevagan-backend/internal/profilesink"
	"sevagan-backend/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	log.Logger = zerolog.New(io.Discard)
}

// profileRecorder captures submitted profiles synchronously
type profileRecorder struct {
	mu      sync.Mutex
	entries []profilesink.Entry
}

func (p *profileRecorder) Submit(entry profilesink.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, entry)
}

func (p *profileRecorder) Entries() []profilesink.Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]profilesink.Entry(nil), p.entries...)
}

type testEnv struct {
	donorRepo        *repository.DonorRepository
	needRepo         *repository.NeedRepository
	accountRepo      *repository.AccountRepository
	otpRepo          *repository.OTPRepository
	notificationRepo *repository.NotificationRepository

	hub      *FeedHub
	channel  *notify.Recorder
	profiles *profileRecorder
	tokens   TokenIssuer

	donors   *DonorService
	needs    *NeedService
	otp      *OTPService
	accounts *AccountService
	relay    *RelayService
	admin    *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		donorRepo:        repository.NewDonorRepository(),
		needRepo:         repository.NewNeedRepository(),
		accountRepo:      repository.NewAccountRepository(),
		otpRepo:          repository.NewOTPRepository(),
		notificationRepo: repository.NewNotificationRepository(),
		hub:              NewFeedHub(16),
		channel:          notify.NewRecorder(),
		profiles:         &profileRecorder{},
		tokens:           NewDevTokenIssuer("dev-token"),
	}
	t.Cleanup(env.hub.Close)

	env.donors = NewDonorService(env.donorRepo)
	env.needs = NewNeedService(env.needRepo, env.accountRepo, env.hub)
	env.otp = NewOTPService(env.otpRepo, env.accountRepo, env.tokens, env.channel, env.profiles, OTPOptions{
		TTL:         5 * time.Minute,
		MaxAttempts: 5,
		ExposeCode:  true,
	})
	env.accounts = NewAccountService(env.accountRepo, env.donorRepo, env.tokens)
	env.relay = NewRelayService(env.needRepo, env.accountRepo, env.notificationRepo, env.channel)
	env.admin = NewAdminService(env.donorRepo, env.needRepo, env.accountRepo, env.otpRepo, env.notificationRepo, env.donors, env.needs)
	return env
}

func (env *testEnv) createAccount(t *testing.T, a models.Account) *models.Account {
	t.Helper()
	if err := env.accountRepo.Create(context.Background(), &a); err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	return &a
}

func neededAt(d time.Duration) string {
	return time.Now().Add(d).UTC().Format(time.RFC3339Nano)
}
