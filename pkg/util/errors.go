// Package util provides logging helpers and the common error types shared by
// the resolver, the unit normalizer and the Dashboard client.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Typed errors below unwrap to one of these so callers can
// branch with errors.Is.
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrNetworkNotFound      = errors.New("network not found")
	ErrIdentityNotFound     = errors.New("wireless identity not found")
	ErrPolicyNotFound       = errors.New("group policy not found")
	ErrAmbiguousName        = errors.New("ambiguous name")
	ErrMissingColumn        = errors.New("missing column")
	ErrNoUnits              = errors.New("no units to provision")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrValidationFailed     = errors.New("validation failed")
	ErrDecode               = errors.New("unexpected response shape")
	ErrAPI                  = errors.New("dashboard API error")
)

// Resource kinds used in NotFoundError and AmbiguousNameError.
const (
	KindOrganization = "organization"
	KindNetwork      = "network"
	KindIdentity     = "SSID"
	KindPolicy       = "group policy"
)

// NotFoundError reports a name that did not match any resource of its kind.
type NotFoundError struct {
	Kind  string
	Name  string
	Scope string // parent id the search was scoped to, empty for organizations
}

func (e *NotFoundError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s '%s' not found in %s", e.Kind, e.Name, e.Scope)
}

func (e *NotFoundError) Unwrap() error {
	switch e.Kind {
	case KindOrganization:
		return ErrOrganizationNotFound
	case KindNetwork:
		return ErrNetworkNotFound
	case KindIdentity:
		return ErrIdentityNotFound
	case KindPolicy:
		return ErrPolicyNotFound
	}
	return nil
}

// NewNotFoundError creates a not-found error for the given kind
func NewNotFoundError(kind, name, scope string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name, Scope: scope}
}

// AmbiguousNameError reports a display name shared by more than one resource.
type AmbiguousNameError struct {
	Kind string
	Name string
	IDs  []string
}

func (e *AmbiguousNameError) Error() string {
	return fmt.Sprintf("%s name '%s' matches %d resources: %s", e.Kind, e.Name, len(e.IDs), strings.Join(e.IDs, ", "))
}

func (e *AmbiguousNameError) Unwrap() error {
	return ErrAmbiguousName
}

// MissingColumnError reports tabular input without the expected unit column.
type MissingColumnError struct {
	Column string
	Have   []string
}

func (e *MissingColumnError) Error() string {
	if len(e.Have) == 0 {
		return fmt.Sprintf("input must contain a column labeled '%s'", e.Column)
	}
	return fmt.Sprintf("input must contain a column labeled '%s' (have: %s)", e.Column, strings.Join(e.Have, ", "))
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

// APIError carries a non-success Dashboard response. Body is kept verbatim.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s failed with code %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}

// DecodeError reports a response that decoded but lacked a required field,
// or could not be decoded at all.
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %s", e.Path, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return ErrDecode
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

// IsConfigurationError reports whether err is one of the terminal
// configuration errors that must stop a session before any write.
func IsConfigurationError(err error) bool {
	for _, target := range []error{
		ErrOrganizationNotFound, ErrNetworkNotFound, ErrIdentityNotFound,
		ErrPolicyNotFound, ErrAmbiguousName, ErrMissingColumn, ErrInvalidConfig,
		ErrValidationFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
