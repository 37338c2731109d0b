package models

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by the transfer pipeline matches exactly
// one of them through errors.Is.
var (
	ErrConfig               = errors.New("config error")
	ErrConnection           = errors.New("connection error")
	ErrMetadataParse        = errors.New("metadata parse error")
	ErrCommitmentBuild      = errors.New("commitment build error")
	ErrUnsupportedExtension = errors.New("unsupported signed extension")
	ErrAssembly             = errors.New("extrinsic assembly error")
	ErrSigning              = errors.New("signing error")
	ErrSubmission           = errors.New("submission error")
)

// Error carries the kind of a pipeline failure, the offending field when one
// is known, and the underlying cause.
type Error struct {
	Kind  error
	Field string
	Err   error
}

func NewError(kind error, field string, err error) *Error {
	return &Error{Kind: kind, Field: field, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Field)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Classify wraps err into kind unless it already carries a pipeline kind.
func Classify(kind error, field string, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return NewError(kind, field, err)
}
