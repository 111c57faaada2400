// Package panel holds the control panel state for the gripper: connection,
// the active button, and the command sequencing between grip, release and
// stop.
package panel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gwillem/gripper/pkg/gripper"
)

// Button identifies one of the two mutually exclusive gripper actions.
type Button int

const (
	None Button = iota
	Grip
	Release
)

func (b Button) String() string {
	switch b {
	case Grip:
		return "grip"
	case Release:
		return "release"
	}
	return "none"
}

// Action returns the command sent when the button becomes active.
func (b Button) Action() gripper.Action {
	switch b {
	case Grip:
		return gripper.Grip
	case Release:
		return gripper.Release
	}
	return gripper.Stop
}

// ErrNotConnected is returned when a button is pressed without a connection.
var ErrNotConnected = errors.New("please connect to a port first")

// Link is an open connection to the gripper.
type Link interface {
	Send(a gripper.Action) error
	Port() string
	Close() error
}

// Dialer opens links.
type Dialer interface {
	Dial(ctx context.Context, port string) (Link, error)
}

// SerialDialer adapts *gripper.Dialer to the Dialer interface.
type SerialDialer struct {
	*gripper.Dialer
}

func (d SerialDialer) Dial(ctx context.Context, port string) (Link, error) {
	conn, err := d.Dialer.Dial(ctx, port)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Status is a snapshot of the panel state.
type Status struct {
	Connected bool
	Port      string
	Active    Button
	Message   string
	Emergency bool
}

// Panel tracks the connection and active button. It is driven from a single
// goroutine (the UI loop) and does no locking.
type Panel struct {
	dialer Dialer
	link   Link
	active Button
	status Status

	// Pause is the delay between stopping one action and starting another.
	Pause time.Duration

	logCh chan string
}

// New creates a panel that dials through d.
func New(d Dialer) *Panel {
	p := &Panel{
		dialer: d,
		Pause:  100 * time.Millisecond,
		logCh:  make(chan string, 10),
	}
	p.status.Message = "Not Connected"
	return p
}

// Logs returns a channel that receives log messages.
func (p *Panel) Logs() <-chan string {
	return p.logCh
}

func (p *Panel) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case p.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Connected reports whether a link is open.
func (p *Panel) Connected() bool {
	return p.link != nil
}

// Active returns the currently commanded button.
func (p *Panel) Active() Button {
	return p.active
}

// Status returns the current panel state.
func (p *Panel) Status() Status {
	s := p.status
	s.Connected = p.Connected()
	s.Active = p.active
	if p.link != nil {
		s.Port = p.link.Port()
	}
	return s
}

func (p *Panel) setStatus(msg string, emergency bool) {
	p.status.Message = msg
	p.status.Emergency = emergency
}

// Connect opens a link to port. Connecting while connected is a no-op.
func (p *Panel) Connect(ctx context.Context, port string) error {
	if p.link != nil {
		return nil
	}
	link, err := p.dialer.Dial(ctx, port)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	p.link = link
	p.active = None
	p.setStatus("Connected to "+link.Port(), false)
	p.log("Connected to %s", link.Port())
	return nil
}

// Disconnect closes the link and clears the active button.
func (p *Panel) Disconnect() error {
	p.active = None
	if p.link == nil {
		return nil
	}
	err := p.link.Close()
	p.link = nil
	p.setStatus("Disconnected", false)
	p.log("Disconnected")
	return err
}

// Toggle connects when disconnected and disconnects otherwise.
func (p *Panel) Toggle(ctx context.Context, port string) error {
	if p.link != nil {
		return p.Disconnect()
	}
	return p.Connect(ctx, port)
}

// Press handles a grip or release button press. Pressing the active button
// again stops it; pressing the other button stops the current action first.
func (p *Panel) Press(b Button) error {
	if b == None {
		return fmt.Errorf("press: no button")
	}
	if p.link == nil {
		return ErrNotConnected
	}

	if p.active == b {
		p.active = None
		if err := p.send(gripper.Stop); err != nil {
			return err
		}
		p.setStatus("Stopped", false)
		return nil
	}

	if p.active != None {
		if err := p.send(gripper.Stop); err != nil {
			return err
		}
		if p.Pause > 0 {
			time.Sleep(p.Pause)
		}
	}

	p.active = b
	if err := p.send(b.Action()); err != nil {
		return err
	}
	if b == Grip {
		p.setStatus("Securing grip...", false)
	} else {
		p.setStatus("Releasing grip...", false)
	}
	return nil
}

// EmergencyStop clears the active button and sends stop.
func (p *Panel) EmergencyStop() error {
	if p.link == nil {
		return ErrNotConnected
	}
	p.active = None
	if err := p.send(gripper.Stop); err != nil {
		return err
	}
	p.setStatus("EMERGENCY STOP", true)
	p.log("Emergency stop")
	return nil
}

// send writes one action; a failure drops the connection.
func (p *Panel) send(a gripper.Action) error {
	if err := p.link.Send(a); err != nil {
		p.log("Communication error: %v", err)
		p.Disconnect()
		p.setStatus("Communication error", false)
		return err
	}
	return nil
}
