package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("no related article candidate found")

	// ErrProcessing is matched by every *ProcessingError.
	ErrProcessing = errors.New("article processing failed")
)

// FetchError reports a transport failure or non-2xx response from a content
// or summarization API.
type FetchError struct {
	Op         string // Operation, e.g. "random summary"
	URL        string // Requested URL
	StatusCode int    // HTTP status, zero for transport failures
	Err        error  // Underlying cause, may be nil for status failures
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s: status code %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NotFoundError reports that no related-article candidate was discoverable.
type NotFoundError struct {
	Source string // Title the search started from
	Stage  string // Discovery stage that came up empty
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no related article for %q (%s)", e.Source, e.Stage)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ProcessingError reports an HTML parse or per-section summarization failure.
type ProcessingError struct {
	Title   string // Article title
	Section string // Section title, empty for whole-article failures
	Err     error
}

func (e *ProcessingError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("process %q section %q: %v", e.Title, e.Section, e.Err)
	}
	return fmt.Sprintf("process %q: %v", e.Title, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func (e *ProcessingError) Is(target error) bool {
	return target == ErrProcessing
}

// IsFetchError reports whether err carries a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
