package models

import "time"

// VerificationCode is a single-use, short-lived proof of email ownership.
// Only the hash of the code is stored.
type VerificationCode struct {
	ID             int64
	AccountID      string
	CodeHash       string
	IssuedAt       time.Time
	ExpiresAt      time.Time
	Consumed       bool
	ConsumedAt     *time.Time
	FailedAttempts int
}

func (c *VerificationCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
