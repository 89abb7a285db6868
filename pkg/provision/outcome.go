package provision

import (
	"fmt"
	"net/http"
	"strings"
)

// State is the result class of one unit.
type State string

const (
	StateSuccess State = "Success"
	StateFailure State = "Failure"
)

// Status is Success, or Failure with the remote diagnostic text.
type Status struct {
	State  State
	Reason string
}

// Success is the status of an accepted credential.
func Success() Status {
	return Status{State: StateSuccess}
}

// Failure is the status of a rejected or unsent credential.
func Failure(reason string) Status {
	return Status{State: StateFailure, Reason: reason}
}

// OK reports whether the credential was created.
func (s Status) OK() bool {
	return s.State == StateSuccess
}

func (s Status) String() string {
	if s.OK() {
		return string(StateSuccess)
	}
	return string(StateFailure) + ": " + s.Reason
}

// MarshalText renders the status as its string form in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the immutable record of one unit in one run.
type Outcome struct {
	Index          int    `json:"index"`
	Unit           string `json:"unit"`
	CredentialName string `json:"name"`
	Passphrase     string `json:"psk"`
	Status         Status `json:"status"`
	StatusCode     int    `json:"status_code"`
	Fingerprint    string `json:"fingerprint,omitempty"`
}

// failureReason picks the diagnostic for a non-created response. The body is
// kept verbatim; an empty body falls back to the status line.
func failureReason(statusCode int, body string) string {
	if strings.TrimSpace(body) != "" {
		return body
	}
	return fmt.Sprintf("HTTP %d %s", statusCode, http.StatusText(statusCode))
}
