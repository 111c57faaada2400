package gripper

import (
	"errors"
	"fmt"
)

var (
	// ErrPortBusy means another process holds the serial port.
	ErrPortBusy = errors.New("port in use by another program")

	// ErrNoPort means no usable port name was given.
	ErrNoPort = errors.New("no valid port selected")
)

// CommError is returned when writing a command to the gripper fails.
type CommError struct {
	Action Action
	Err    error
}

func (e *CommError) Error() string {
	return fmt.Sprintf("send %s: %v", e.Action.Name(), e.Err)
}

func (e *CommError) Unwrap() error {
	return e.Err
}
