package services

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Match with errors.Is.
var (
	ErrNotAuthorized   = errors.New("not authorized")
	ErrNotFound        = errors.New("not found")
	ErrNeedNotFound    = fmt.Errorf("need %w", ErrNotFound)
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrNoOtpRequested  = errors.New("no OTP requested")
	ErrOtpExpired      = errors.New("OTP expired")
	ErrInvalidOtp      = errors.New("invalid OTP")
	ErrTooManyAttempts = errors.New("too many OTP attempts")
)
