package provider

import "fmt"

type (
	// InvalidTemplateError is returned by Load when the input is absent,
	// unreadable, or does not contain a valid manifest.
	InvalidTemplateError struct {
		Path   string
		Reason string
		Err    error
	}

	// PersistenceError is returned by Save when writing or committing the output
	// fails. The previous contents of an archive output are left untouched.
	PersistenceError struct {
		Path string
		Err  error
	}
)

func invalid(path, reason string, err error) error {
	return &InvalidTemplateError{Path: path, Reason: reason, Err: err}
}

func (e *InvalidTemplateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid template %s: %s: %v", e.Path, e.Reason, e.Err)
	}

	return fmt.Sprintf("invalid template %s: %s", e.Path, e.Reason)
}

func (e *InvalidTemplateError) Unwrap() error { return e.Err }

// Cause supports errors.Cause from github.com/pkg/errors.
func (e *InvalidTemplateError) Cause() error { return e.Err }

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save template %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Cause supports errors.Cause from github.com/pkg/errors.
func (e *PersistenceError) Cause() error { return e.Err }
