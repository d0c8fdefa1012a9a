package engine

import (
	"errors"
	"fmt"
)

// ErrTerminated is returned by Submit once the engine has terminated.
var ErrTerminated = errors.New("engine terminated")

// ErrUnrecoverable marks client errors after which the session cannot
// continue, such as rejected credentials. Clients wrap it; the engine then
// terminates.
var ErrUnrecoverable = errors.New("unrecoverable model client error")

// ExternalClientError wraps a transport or protocol failure of the model client.
type ExternalClientError struct {
	Err error
}

func (e *ExternalClientError) Error() string { return "model client: " + e.Err.Error() }

func (e *ExternalClientError) Unwrap() error { return e.Err }

// RecursionLimitError is returned when the model asks for more tool rounds
// than one turn allows.
type RecursionLimitError struct {
	Limit int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("tool round limit reached (%d rounds)", e.Limit)
}
