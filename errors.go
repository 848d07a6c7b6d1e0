package xsession

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// InvalidCredentialsError reports construction-time credential rejection.
type InvalidCredentialsError struct {
	Field  string // "auth_token" or "csrf_token"
	Reason string
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("invalid credentials: %s %s", e.Field, e.Reason)
}

// ValidationError reports caller input that violates a known platform
// constraint. Raised before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// NetworkError is a connection, DNS, or timeout failure. Retryable.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RateLimitError is a 429 or an in-body rate-limit code (88). Retryable;
// Reset carries the x-rate-limit-reset hint when the server sent one.
type RateLimitError struct {
	Endpoint string
	Reset    time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited until %s", e.Endpoint, e.Reset.Format(time.RFC3339))
}

// ServerError is a 5xx or an in-body internal error code (131). Retryable.
type ServerError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server error HTTP %d: %s", e.Endpoint, e.Status, e.Body)
}

// AuthError is a 401/403 or an in-body auth code. Terminal: the session is
// expired, suspended, locked, or the csrf token no longer matches. The
// caller must re-extract credentials; nothing here is retried.
type AuthError struct {
	Endpoint string
	Status   int
	Code     int // upstream error code when present: 32, 64, 326, 353
	Reason   string
}

func (e *AuthError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: auth failed HTTP %d (code %d): %s", e.Endpoint, e.Status, e.Code, e.Reason)
	}
	return fmt.Sprintf("%s: auth failed HTTP %d: %s", e.Endpoint, e.Status, e.Reason)
}

// ClientError is any other non-auth, non-rate-limit 4xx, or a 200 whose
// body carries only error entries. Terminal: caller misuse or upstream
// drift.
type ClientError struct {
	Endpoint string
	Status   int
	Code     int
	Reason   string
}

func (e *ClientError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: HTTP %d (code %d): %s", e.Endpoint, e.Status, e.Code, e.Reason)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Endpoint, e.Status, e.Reason)
}

// UnexpectedShapeError reports a response missing a field the domain object
// contract requires. Terminal, signals upstream API drift.
type UnexpectedShapeError struct {
	Endpoint string
	Field    string
}

func (e *UnexpectedShapeError) Error() string {
	return fmt.Sprintf("%s: response missing required field %q", e.Endpoint, e.Field)
}

// NotFoundError reports an absent target entity (HTTP 404 or the
// no-such-status body codes).
type NotFoundError struct {
	Kind string // "tweet", "user", or the operation name
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// OperationFailedError wraps the last classified error after the retry
// budget is exhausted.
type OperationFailedError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
}

func (e *OperationFailedError) Unwrap() error { return e.Err }

// Known upstream body error codes.
const (
	codeAuthExpired      = 32  // could not authenticate
	codePageNotFound     = 34  // page does not exist
	codeSuspended        = 64  // account suspended
	codeRateLimited      = 88  // rate limit exceeded
	codeInternal         = 131 // internal error
	codeAlreadyFavorited = 139
	codeNoStatus         = 144 // no status found with that ID
	codeFollowRequested  = 160 // follow request already sent
	codeAccountLocked    = 326
	codeAlreadyRetweeted = 327
	codeCSRFMismatch     = 353
)

// apiError extracts the first error code and message from a response body,
// or (0, "") when the body carries no errors array.
func apiError(body []byte) (int, string) {
	var resp struct {
		Errors []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &resp) != nil || len(resp.Errors) == 0 {
		return 0, ""
	}
	return resp.Errors[0].Code, resp.Errors[0].Message
}

// classifyResponse turns a raw HTTP outcome into nil or exactly one
// taxonomy error. Body codes are checked before the status line because
// the API reports some conditions (already-favorited, rate limiting) under
// misleading statuses.
func classifyResponse(endpoint string, status int, headers map[string]string, body []byte) error {
	code, msg := apiError(body)

	switch code {
	case codeRateLimited:
		return &RateLimitError{Endpoint: endpoint, Reset: parseRateLimitReset(headers["x-rate-limit-reset"])}
	case codePageNotFound, codeNoStatus:
		return &NotFoundError{Kind: endpoint, ID: msg}
	case codeAuthExpired, codeSuspended, codeAccountLocked, codeCSRFMismatch:
		return &AuthError{Endpoint: endpoint, Status: status, Code: code, Reason: msg}
	case codeAlreadyFavorited, codeFollowRequested, codeAlreadyRetweeted:
		// Idempotent mutations map these to success at the facade.
		return &ClientError{Endpoint: endpoint, Status: status, Code: code, Reason: msg}
	case codeInternal:
		if status == 200 && hasResponseData(body) {
			return nil
		}
		return &ServerError{Endpoint: endpoint, Status: status, Body: msg}
	}

	switch {
	case status == 429:
		return &RateLimitError{Endpoint: endpoint, Reset: parseRateLimitReset(headers["x-rate-limit-reset"])}
	case status == 401 || status == 403:
		return &AuthError{Endpoint: endpoint, Status: status, Code: code, Reason: msg}
	case status == 404:
		return &NotFoundError{Kind: endpoint, ID: msg}
	case status >= 500:
		return &ServerError{Endpoint: endpoint, Status: status, Body: truncateBytes(body, 200)}
	case status < 200 || status >= 300:
		return &ClientError{Endpoint: endpoint, Status: status, Code: code, Reason: truncateBytes(body, 200)}
	}

	if code != 0 && !hasResponseData(body) {
		return &ClientError{Endpoint: endpoint, Status: status, Code: code, Reason: msg}
	}
	return nil
}

// retryable reports whether the governor may schedule another attempt.
func retryable(err error) bool {
	switch err.(type) {
	case *NetworkError, *RateLimitError, *ServerError:
		return true
	}
	return false
}

// alreadyInState reports the upstream "already in that state" responses
// that idempotent mutations treat as success.
func alreadyInState(err error) bool {
	ce, ok := err.(*ClientError)
	if !ok {
		return false
	}
	switch ce.Code {
	case codeAlreadyFavorited, codeFollowRequested, codeAlreadyRetweeted:
		return true
	}
	return false
}

// parseRateLimitReset parses the x-rate-limit-reset unix timestamp header.
// Returns the zero time if missing or invalid; the retry delay then falls
// back to pure backoff.
func parseRateLimitReset(v string) time.Time {
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	return time.Time{}
}
