package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrArticleNotFound is returned by persistence adapters for unknown ids.
	ErrArticleNotFound = errors.New("article not found")
	// ErrNoContent marks a page that rendered but held no extractable text.
	ErrNoContent = errors.New("no content extracted")
)

// FetchError reports a failure to retrieve a URL.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports that expected markup was absent.
type ParseError struct {
	What string
}

func (e *ParseError) Error() string {
	return "parse: " + e.What + " not found"
}

// GenerationError wraps a failure of the text-generation capability.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate with %s: %v", e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PersistenceError wraps a failure of the persistence adapter.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
