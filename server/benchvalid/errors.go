package benchvalid

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRulesLoaded is returned by Validate when called with an empty
	// rule list.
	ErrNoRulesLoaded = errors.New("no rules loaded")

	// ErrNoResults is returned by the result queries before any validation
	// has run.
	ErrNoResults = errors.New("no validation results available")
)

// NotFoundError is implemented by errors indicating that a looked-up entity
// does not exist.
type NotFoundError interface {
	error
	IsNotFound() bool
}

// SourceNotFoundError is returned when a rule-table source path does not
// exist.
type SourceNotFoundError struct {
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("rule source not found: %s", e.Path)
}

func (e *SourceNotFoundError) IsNotFound() bool {
	return true
}

// MalformedSourceError is returned when a rule-table source is missing a
// required column or contains a row that cannot be parsed. Reason carries
// the column name or row context needed to diagnose the failure without
// re-running the load.
type MalformedSourceError struct {
	Path   string
	Reason string
}

func (e *MalformedSourceError) Error() string {
	return fmt.Sprintf("malformed rule source %s: %s", e.Path, e.Reason)
}

// MalformedReportError is returned when a report document is not well-formed
// XML.
type MalformedReportError struct {
	Err error
}

func (e *MalformedReportError) Error() string {
	return fmt.Sprintf("malformed XCCDF report: %s", e.Err)
}

func (e *MalformedReportError) Unwrap() error {
	return e.Err
}

// CredentialsNotFoundError is returned when no configured credential backend
// resolves a value for the lookup key.
type CredentialsNotFoundError struct {
	Key string
}

func (e *CredentialsNotFoundError) Error() string {
	return fmt.Sprintf("credentials not found for %s", e.Key)
}

func (e *CredentialsNotFoundError) IsNotFound() bool {
	return true
}
