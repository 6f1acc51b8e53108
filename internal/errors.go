package internal

import (
	"errors"
	"fmt"
	"github.com/csr-ugra/yellowpages-parser/internal/selector"
)

type ElementNotFoundError struct {
	Selector string
}

func NewElementNotFoundError(selector selector.Selector) *ElementNotFoundError {
	return &ElementNotFoundError{Selector: selector.String()}
}

func (e ElementNotFoundError) Error() string {
	return fmt.Sprintf("element '%s' not found", e.Selector)
}

func (e ElementNotFoundError) Is(target error) bool {
	var t *ElementNotFoundError
	ok := errors.As(target, &t)
	return ok
}

// ExtractionError marks a listing container that could not be turned into a record.
type ExtractionError struct {
	Index int
	Err   error
}

func (e ExtractionError) Error() string {
	return fmt.Sprintf("listing #%d: %v", e.Index, e.Err)
}

func (e ExtractionError) Unwrap() error {
	return e.Err
}

type FetchErrorKind string

const (
	FetchErrorNetwork    FetchErrorKind = "network"
	FetchErrorHttpStatus FetchErrorKind = "http_status"
	FetchErrorParse      FetchErrorKind = "parse"
)

type FetchError struct {
	Url        string
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

func (e FetchError) Error() string {
	if e.Kind == FetchErrorHttpStatus {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Url, e.StatusCode)
	}

	return fmt.Sprintf("fetch %s: %s error: %v", e.Url, e.Kind, e.Err)
}

func (e FetchError) Unwrap() error {
	return e.Err
}

func (e FetchError) Is(target error) bool {
	var t *FetchError
	ok := errors.As(target, &t)
	return ok
}

// Retryable reports whether repeating the request may succeed.
func (e FetchError) Retryable() bool {
	switch e.Kind {
	case FetchErrorNetwork:
		return true
	case FetchErrorHttpStatus:
		return e.StatusCode == 429 || e.StatusCode >= 500
	}

	return false
}

type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error {
	return e.Err
}

func (e StorageError) Is(target error) bool {
	var t *StorageError
	ok := errors.As(target, &t)
	return ok
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}
