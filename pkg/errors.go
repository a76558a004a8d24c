package newver

import (
	"errors"
	"strings"
)

// Sentinel errors for known conditions. Every error returned by this package
// wraps one of these, so callers can use errors.Is.
var (
	// ErrInvalidVersion indicates the requested version does not look like a version.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrFileNotFound indicates an explicitly requested file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrNoCandidateFiles indicates none of the default manifest files exist.
	ErrNoCandidateFiles = errors.New("no files to update")

	// ErrUnsupportedFileType indicates a file extension with no known format.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrParse indicates a file could not be read or decoded.
	ErrParse = errors.New("parse error")

	// ErrFieldNotFound indicates no version field could be located in a document.
	ErrFieldNotFound = errors.New("version field not found")

	// ErrSecondaryFieldNotFound indicates a package-lock.json without packages[""].version.
	ErrSecondaryFieldNotFound = errors.New("package-lock root package version not found")

	// ErrVersionControl indicates a failed git invocation.
	ErrVersionControl = errors.New("version control error")

	// ErrInvalidPath indicates a malformed data path expression.
	ErrInvalidPath = errors.New("invalid data path")

	// ErrPathConflict indicates a data path that runs through a value of the wrong shape.
	ErrPathConflict = errors.New("data path conflict")

	// ErrAborted indicates an interactive prompt was interrupted or failed.
	ErrAborted = errors.New("aborted")
)

// DetailError captures an error category together with a human readable
// message and an optional hint on how to fix it.
type DetailError struct {
	// Type is the error category (required).
	Type string

	// Message is the specific description (required).
	Message string

	// Location is the file the error relates to (optional).
	Location string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	b.WriteString(e.Type)
	b.WriteString(": ")
	b.WriteString(e.Message)

	if e.Location != "" {
		b.WriteString("\n  Location: ")
		b.WriteString(e.Location)
	}

	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether err ends a run. Field lookups that come up empty
// only affect the file they were made on.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrFieldNotFound) && !errors.Is(err, ErrSecondaryFieldNotFound)
}
