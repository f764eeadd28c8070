package repositories

import (
	"errors"
	"fmt"
)

type errorKind int

const (
	kindNotFound errorKind = iota
	kindConflict
	kindUnavailable
)

type repositoryError struct {
	kind errorKind
	msg  string
	err  error
}

func (e *repositoryError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *repositoryError) Unwrap() error      { return e.err }
func (e *repositoryError) IsNotFound() bool   { return e.kind == kindNotFound }
func (e *repositoryError) IsConflict() bool   { return e.kind == kindConflict }
func (e *repositoryError) IsUnavailable() bool { return e.kind == kindUnavailable }

// NewNotFoundError builds a RepositoryError categorised as not-found.
func NewNotFoundError(msg string, err error) RepositoryError {
	return &repositoryError{kind: kindNotFound, msg: msg, err: err}
}

// NewConflictError builds a RepositoryError categorised as a conflict.
func NewConflictError(msg string, err error) RepositoryError {
	return &repositoryError{kind: kindConflict, msg: msg, err: err}
}

// NewUnavailableError builds a RepositoryError categorised as unavailable.
func NewUnavailableError(msg string, err error) RepositoryError {
	return &repositoryError{kind: kindUnavailable, msg: msg, err: err}
}

// IsNotFound reports whether err carries not-found categorisation.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}
