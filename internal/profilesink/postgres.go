package profilesink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSink appends profiles to the signup_profiles table
type PostgresSink struct {
	db *pgxpool.Pool
}

// NewPostgresSink creates a sink on an open pool
func NewPostgresSink(db *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{db: db}
}

// Name implements Sink
func (s *PostgresSink) Name() string { return "postgres" }

// EnsureSchema creates the signup_profiles table if it does not exist
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS signup_profiles (
			id           BIGSERIAL PRIMARY KEY,
			request_id   TEXT NOT NULL,
			account_type TEXT NOT NULL,
			recipient    TEXT NOT NULL,
			name         TEXT,
			mobile       TEXT,
			email        TEXT,
			blood_group  TEXT,
			gender       TEXT,
			dob          TEXT,
			city         TEXT,
			pincode      TEXT,
			created_at   TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create signup_profiles: %w", err)
	}
	return nil
}

// Append implements Sink
func (s *PostgresSink) Append(ctx context.Context, e Entry) error {
	query := `
		INSERT INTO signup_profiles
			(request_id, account_type, recipient, name, mobile, email, blood_group, gender, dob, city, pincode, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	p := e.Profile
	_, err := s.db.Exec(ctx, query,
		e.RequestID, string(e.AccountType), e.Recipient,
		p.Name, p.Mobile, p.Email, string(p.BloodGroup), string(p.Gender), p.DOB, p.City, p.Pincode,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert signup profile: %w", err)
	}
	return nil
}
