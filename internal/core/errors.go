package core

import (
	"errors"
	"fmt"
)

// Error taxonomy for the assistant core. Credential and precondition errors
// abort only the triggering operation and leave the stores unchanged.
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnsupportedKind    = errors.New("unsupported file kind")
	ErrExtractionFailed   = errors.New("text extraction failed")
	ErrNoGroundingSource  = errors.New("no grounding source: upload a file or enable web search")
	ErrCompletionFailed   = errors.New("completion failed")
	ErrEmptyPrompt        = errors.New("prompt title and body are required")
)

// ExtractionError carries the name of the file whose extraction failed, so a
// batch report can point at the offending upload without aborting the rest.
type ExtractionError struct {
	FileName string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.FileName, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtractionFailed }
