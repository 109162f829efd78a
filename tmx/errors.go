package tmx

import (
	"errors"
	"fmt"
)

// ErrNoSuchUnit is returned when a unit index is out of range.
var ErrNoSuchUnit = errors.New("tmx: no such translation unit")

// ParseError reports content that could not be loaded as a TMX document, either because it
// is not well-formed XML or because it lacks the <tmx>/<body> structure.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExportError reports a failure while cloning, stripping or serializing a document.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export failed: %v", e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
