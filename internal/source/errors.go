package source

import (
	"errors"
	"fmt"
)

// SourceError records which transport step failed and for which URL
type SourceError struct {
	Transport string
	Op        string
	Source    string
	Status    int // HTTP status, zero for non-HTTP failures
	Err       error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Transport, e.Op, e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the response status carried by err, or zero
func HTTPStatus(err error) int {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
