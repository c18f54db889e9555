package assets

import "fmt"

type (
	// ArgumentError reports a missing or invalid argument. It indicates caller
	// misuse and is never downgraded to a warning.
	ArgumentError struct {
		Name   string
		Reason string
	}

	// FetchError reports that a single asset could not be obtained. Bulk
	// operations record it as a warning and continue with the next asset.
	FetchError struct {
		Source string
		Err    error
	}
)

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Name, e.Reason)
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to add %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Cause supports errors.Cause from github.com/pkg/errors.
func (e *FetchError) Cause() error { return e.Err }
