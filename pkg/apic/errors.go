package apic

import (
	"fmt"
	"net/http"

	"github.com/newtron-network/acipush/pkg/util"
)

// AuthFailure classifies why a login did not produce a session.
type AuthFailure string

const (
	AuthMalformed  AuthFailure = "malformed-response"
	AuthStatus     AuthFailure = "status"
	AuthTimeout    AuthFailure = "timeout"
	AuthConnection AuthFailure = "connection"
)

// UnknownStatus is reported in place of a status code when the controller
// could not be reached at all.
const UnknownStatus = 999

// AuthError is a login failure. Every kind is terminal for the run.
type AuthError struct {
	Kind       AuthFailure
	Controller string
	StatusCode int // set for AuthStatus and AuthMalformed
	Err        error
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case AuthStatus:
		return fmt.Sprintf("login to %s failed: HTTP %d", e.Controller, e.StatusCode)
	case AuthMalformed:
		return fmt.Sprintf("login to %s failed: malformed response: %v", e.Controller, e.Err)
	default:
		return fmt.Sprintf("login to %s failed: %s: %v", e.Controller, e.Kind, e.Err)
	}
}

func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{util.ErrAuthFailed}
	}
	return []error{util.ErrAuthFailed, e.Err}
}

// Code returns the status code to display for this failure. Network level
// failures use UnknownStatus.
func (e *AuthError) Code() int {
	if e.Kind == AuthStatus {
		return e.StatusCode
	}
	if e.Kind == AuthMalformed && e.StatusCode != 0 {
		return e.StatusCode
	}
	return UnknownStatus
}

// Hint returns the operator-facing headline and advice for the failure.
func (e *AuthError) Hint() (headline, advice string) {
	if e.Kind == AuthMalformed {
		return "Malformed login response", "Controller did not return a session token"
	}
	return StatusHint(e.Code())
}

// StatusHint maps a login status code to an operator message.
func StatusHint(code int) (headline, advice string) {
	switch code {
	case http.StatusOK:
		return "200 - Authentication successful", "Received token from controller"
	case http.StatusBadRequest:
		return "400 - Bad request", "Bad URL or payload"
	case http.StatusUnauthorized:
		return "401 - Unauthorised", "Bad credentials"
	case http.StatusForbidden:
		return "403 - Forbidden", "Server refusing to handle request"
	case http.StatusNotFound:
		return "404 - Not found", "Post to page that does not exist"
	}
	if code == UnknownStatus {
		return "999 - Unknown error occurred", "Check network connectivity"
	}
	return fmt.Sprintf("%d - %s", code, http.StatusText(code)), "Unexpected response from controller"
}
