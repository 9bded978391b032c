// Package document reads uploaded PDF resumes: validation, first page rasterization and text
// extraction.
package document

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable means the page renderer cannot run at all. It is a configuration
	// problem, not a property of any particular file.
	ErrBackendUnavailable = errors.New("pdf page renderer is not available")
	// ErrNoPages is returned for documents that parse but contain no pages.
	ErrNoPages = errors.New("document has no pages")
	// ErrEmpty is returned for zero-length uploads.
	ErrEmpty = errors.New("document is empty")
)

// recoverParse converts a panic raised by a PDF parser on malformed input into an error.
func recoverParse(op string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: malformed pdf: %v", op, r)
	}
}
