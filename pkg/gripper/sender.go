package gripper

import "fmt"

// Sender writes framed action codes to an open port.
type Sender struct {
	port Port
}

// NewSender returns a sender writing to port.
func NewSender(port Port) *Sender {
	return &Sender{port: port}
}

// Send writes T<code>\n and drains the port. Failures come back as
// *CommError and are not retried.
func (s *Sender) Send(a Action) error {
	if !a.Valid() {
		return fmt.Errorf("invalid action code %q", string(a))
	}
	if _, err := s.port.Write(Frame(a)); err != nil {
		return &CommError{Action: a, Err: err}
	}
	if err := s.port.Drain(); err != nil {
		return &CommError{Action: a, Err: err}
	}
	return nil
}
