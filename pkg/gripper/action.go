// Package gripper provides the serial link to the gripper microcontroller.
package gripper

import (
	"fmt"
	"strings"
)

// Action is a single ASCII digit understood by the gripper firmware.
type Action string

// Actions accepted by the firmware.
const (
	Stop    Action = "0"
	Grip    Action = "1"
	Release Action = "2"
)

// AllActions returns all actions in code order.
func AllActions() []Action {
	return []Action{
		Stop,
		Grip,
		Release,
	}
}

// Valid reports whether a is one of the known action codes.
func (a Action) Valid() bool {
	switch a {
	case Stop, Grip, Release:
		return true
	}
	return false
}

// Name returns the lowercase name of the action.
func (a Action) Name() string {
	switch a {
	case Stop:
		return "stop"
	case Grip:
		return "grip"
	case Release:
		return "release"
	}
	return "unknown"
}

func (a Action) String() string {
	return fmt.Sprintf("%s(%s)", a.Name(), string(a))
}

// Frame returns the wire bytes for an action: 'T', the code, and a newline.
func Frame(a Action) []byte {
	return []byte("T" + string(a) + "\n")
}

// ParseAction accepts an action name ("grip") or its code ("1").
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range AllActions() {
		if s == a.Name() || s == string(a) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q (want stop, grip or release)", s)
}

// MarshalText encodes the action by name, so config files stay readable.
func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid action code %q", string(a))
	}
	return []byte(a.Name()), nil
}

// UnmarshalText accepts anything ParseAction does.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
