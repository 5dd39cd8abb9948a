package models

import "time"

// Principal is the request-scoped authenticated identity. It is rebuilt for
// every request from a verified session token and never persisted.
type Principal struct {
	AccountID string
	LoginCode string
	Role      Role
	Status    AccountStatus
}

// Session is the result of a successful authentication.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal Principal
}
