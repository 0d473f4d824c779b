package errors

import (
	stderrors "errors"
	"fmt"
)

// Sign-in and session failure types.
const (
	ErrorTypeTokenExpired   ErrorType = "token_expired"
	ErrorTypeTokenInvalid   ErrorType = "token_invalid"
	ErrorTypeSessionExpired ErrorType = "session_expired"
	ErrorTypeOAuthError     ErrorType = "oauth_error"
	ErrorTypeSignInAborted  ErrorType = "sign_in_aborted"
)

const signInAgain = "Please sign in again"

// AuthError is a sign-in or session failure reported by the identity
// provider or the session store.
type AuthError struct {
	*AppError
	// ShouldLog is false for expected outcomes such as an expired session.
	ShouldLog bool
}

func (e *AuthError) Error() string {
	return e.AppError.Error()
}

func (e *AuthError) Unwrap() error {
	return e.AppError
}

func newAuthError(t ErrorType, message, detail string, shouldLog bool) *AuthError {
	return &AuthError{AppError: New(t, message, detail), ShouldLog: shouldLog}
}

func detailOr(details []string, fallback string) string {
	if len(details) > 0 {
		return details[0]
	}
	return fallback
}

func NewTokenExpiredError(tokenType string) *AuthError {
	return newAuthError(ErrorTypeTokenExpired, fmt.Sprintf("%s has expired", tokenType), signInAgain, false)
}

// NewTokenInvalidError reports a token that failed verification.
func NewTokenInvalidError(tokenType string, details ...string) *AuthError {
	return newAuthError(ErrorTypeTokenInvalid, fmt.Sprintf("Invalid %s", tokenType),
		detailOr(details, "Token is invalid or has been revoked"), true)
}

// NewSessionExpiredError reports a persisted session that can no longer be restored.
func NewSessionExpiredError() *AuthError {
	return newAuthError(ErrorTypeSessionExpired, "Session has expired", signInAgain, false)
}

// NewOAuthError reports a failed provider round trip at the named stage.
func NewOAuthError(stage string, details ...string) *AuthError {
	return newAuthError(ErrorTypeOAuthError, "OAuth sign-in failed",
		detailOr(details, fmt.Sprintf("OAuth sign-in failed at %s stage", stage)), true)
}

// NewSignInAbortedError is returned when the interactive flow ends without a code.
func NewSignInAbortedError(reason string) *AuthError {
	return newAuthError(ErrorTypeSignInAborted, "Sign-in was not completed", reason, false)
}

func IsAuthError(err error) bool {
	return GetAuthError(err) != nil
}

func GetAuthError(err error) *AuthError {
	var authErr *AuthError
	if stderrors.As(err, &authErr) {
		return authErr
	}
	return nil
}

// ShouldLogAuthError reports whether err deserves a log line. Errors that are
// not AuthErrors are always logged.
func ShouldLogAuthError(err error) bool {
	if authErr := GetAuthError(err); authErr != nil {
		return authErr.ShouldLog
	}
	return true
}
