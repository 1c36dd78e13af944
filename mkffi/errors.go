package mkffi

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyReleased is returned when a handle is used after its release.
	ErrAlreadyReleased = errors.New("handle already released")

	// ErrUnknownHandle is returned for handles the registry never issued.
	ErrUnknownHandle = errors.New("unknown handle")

	// ErrWrongHandleKind is returned when a root handle is used as a proof,
	// or the other way around.
	ErrWrongHandleKind = errors.New("wrong handle kind")
)

// HandleError annotates a handle misuse with the handle involved.
type HandleError struct {
	Handle Handle
	Op     string
	Err    error
}

func (e HandleError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Handle, e.Err)
}

func (e HandleError) Unwrap() error {
	return e.Err
}
