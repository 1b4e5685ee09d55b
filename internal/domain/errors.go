package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why a call to an external service failed.
type Kind string

const (
	KindAuth              Kind = "auth"
	KindRateLimit         Kind = "rate_limit"
	KindNetwork           Kind = "network"
	KindUpstream          Kind = "upstream"
	KindMalformedResponse Kind = "malformed_response"
	KindInvalidInput      Kind = "invalid_input"
)

// CallError is returned by every client that talks to a third-party service.
// Callers branch on Kind to decide between aborting and retrying.
type CallError struct {
	Service    string
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *CallError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Service, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status = %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// KindForStatus maps a non-success HTTP status code to a failure kind.
func KindForStatus(statusCode int) Kind {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusTooManyRequests:
		return KindRateLimit
	default:
		return KindUpstream
	}
}

// KindOf reports the kind of the first CallError in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Kind
	}

	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
