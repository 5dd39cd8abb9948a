// Package models defines server-side data models persisted in the database
// and the request-scoped projections derived from them.
package models

import (
	"strings"
	"time"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	StatusUnauthorized AccountStatus = "UNAUTHORIZED"
	StatusEnabled      AccountStatus = "ENABLED"
	StatusDisabled     AccountStatus = "DISABLED"
)

// Role grants privileges; RoleAdmin is the elevated role.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is the identity entity. PasswordHash never holds a raw password.
type Account struct {
	ID              string
	LoginCode       string
	PasswordHash    string
	Name            string
	Email           string
	Introduction    string
	Status          AccountStatus
	Role            Role
	StatusChangedAt time.Time
	ProfileImageURL string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// accountTransitions lists the permitted status changes. DISABLED is terminal.
var accountTransitions = map[AccountStatus]map[AccountStatus]struct{}{
	StatusUnauthorized: {StatusEnabled: {}, StatusDisabled: {}},
	StatusEnabled:      {StatusDisabled: {}},
}

// CanTransition reports whether the account may move to target.
func (a *Account) CanTransition(target AccountStatus) bool {
	_, ok := accountTransitions[a.Status][target]
	return ok
}

// Transition moves the account to target and refreshes StatusChangedAt.
// It returns false and leaves the account untouched when the change is not
// permitted.
func (a *Account) Transition(target AccountStatus, at time.Time) bool {
	if !a.CanTransition(target) {
		return false
	}
	a.Status = target
	a.StatusChangedAt = at
	return true
}

func (a *Account) IsDisabled() bool { return a.Status == StatusDisabled }

// AccountSummary is the outward view of an account. It carries no secrets.
type AccountSummary struct {
	ID              string
	LoginCode       string
	Name            string
	Email           string
	Introduction    string
	Status          AccountStatus
	Role            Role
	ProfileImageURL string
	StatusChangedAt time.Time
}

func (a *Account) Summary() *AccountSummary {
	return &AccountSummary{
		ID:              a.ID,
		LoginCode:       a.LoginCode,
		Name:            a.Name,
		Email:           a.Email,
		Introduction:    a.Introduction,
		Status:          a.Status,
		Role:            a.Role,
		ProfileImageURL: a.ProfileImageURL,
		StatusChangedAt: a.StatusChangedAt,
	}
}

// NormalizeEmail is the stored form of an email address. Addresses differing
// only in case belong to one account.
func NormalizeEmail(email string) string {
	return strings.ToLower(email)
}
