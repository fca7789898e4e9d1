package rpc

import (
	"errors"
	"fmt"
)

// ErrMalformed indicates the payload doesn't start with a function ID.
var ErrMalformed = errors.New("malformed rpc payload")

// UnknownFuncError indicates no function is registered for ID.
type UnknownFuncError struct {
	ID uint64
}

// Error implements error.
func (e *UnknownFuncError) Error() string {
	return fmt.Sprintf("unknown rpc function %d", e.ID)
}
