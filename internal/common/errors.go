// Package common defines shared constants and sentinel errors used across
// the newsfeed core. Callers should use errors.Is to match these values;
// specific errors wrap their class so both levels can be matched.
package common

import (
	"errors"
	"fmt"
)

// Error classes.
var (
	ErrAuthFailed = errors.New("authentication failed")
	ErrCode       = errors.New("verification code error")
	ErrToken      = errors.New("token error")
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
	ErrTimeout    = errors.New("operation timed out")

	// Input errors.
	ErrValidation           = errors.New("validation error")
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// Verification code errors.
	ErrCodeNotFound    = fmt.Errorf("%w: code not found", ErrCode)
	ErrCodeExpired     = fmt.Errorf("%w: code expired", ErrCode)
	ErrCodeAlreadyUsed = fmt.Errorf("%w: code already used", ErrCode)

	// Authentication errors.
	ErrAccountNotFound    = fmt.Errorf("%w: account not found", ErrAuthFailed)
	ErrAccountDisabled    = fmt.Errorf("%w: account disabled", ErrAuthFailed)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuthFailed)

	// Session token errors.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrToken)
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrToken)

	// Authorization.
	ErrForbidden = errors.New("forbidden")

	// Dependency failures, retryable by the caller.
	ErrStorageUnavailable      = errors.New("storage unavailable")
	ErrNotificationUnavailable = errors.New("notification unavailable")
)

// Stable error codes exposed to outer layers.
const (
	CodeValidationFailed        = "VALIDATION_FAILED"
	CodeConflict                = "CONFLICT"
	CodeNotFound                = "NOT_FOUND"
	CodeVerificationNotFound    = "CODE_NOT_FOUND"
	CodeVerificationExpired     = "CODE_EXPIRED"
	CodeVerificationUsed        = "CODE_ALREADY_USED"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeTokenInvalid            = "TOKEN_INVALID"
	CodeTokenExpired            = "TOKEN_EXPIRED"
	CodeForbidden               = "FORBIDDEN"
	CodeUnsupportedMediaType    = "UNSUPPORTED_MEDIA_TYPE"
	CodeStorageUnavailable      = "STORAGE_UNAVAILABLE"
	CodeNotificationUnavailable = "NOTIFICATION_UNAVAILABLE"
	CodeTimeout                 = "TIMEOUT"
	CodeInternal                = "INTERNAL"
)

type errorInfo struct {
	err     error
	code    string
	message string
}

// Order matters: specific errors come before their class.
var errorTable = []errorInfo{
	{ErrValidation, CodeValidationFailed, "request validation failed"},
	{ErrConflict, CodeConflict, "login code or email is already registered"},
	{ErrCodeNotFound, CodeVerificationNotFound, "verification code not found"},
	{ErrCodeExpired, CodeVerificationExpired, "verification code expired"},
	{ErrCodeAlreadyUsed, CodeVerificationUsed, "verification code already used"},
	{ErrAuthFailed, CodeInvalidCredentials, "invalid login code or password"},
	{ErrTokenExpired, CodeTokenExpired, "session token expired"},
	{ErrToken, CodeTokenInvalid, "session token is invalid"},
	{ErrForbidden, CodeForbidden, "operation not permitted"},
	{ErrorNotFound, CodeNotFound, "resource not found"},
	{ErrUnsupportedMediaType, CodeUnsupportedMediaType, "unsupported media type"},
	{ErrStorageUnavailable, CodeStorageUnavailable, "media storage is unavailable, try again later"},
	{ErrNotificationUnavailable, CodeNotificationUnavailable, "notification service is unavailable, try again later"},
	{ErrTimeout, CodeTimeout, "operation timed out, try again later"},
}

func lookup(err error) errorInfo {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e
		}
	}
	return errorInfo{ErrorInternal, CodeInternal, "internal error"}
}

// Code returns the stable machine-readable code for err. All authentication
// failures share CodeInvalidCredentials so callers cannot enumerate accounts.
func Code(err error) string {
	return lookup(err).code
}

// Message returns a human-readable message for err that never includes the
// underlying cause.
func Message(err error) string {
	return lookup(err).message
}

// IsRetryable reports whether the caller may retry the failed operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrNotificationUnavailable)
}
