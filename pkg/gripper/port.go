package gripper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

const (
	// BaudRate is the rate the gripper firmware listens on.
	BaudRate = 115_200

	// DefaultBaudRate is the driver default used when no mode is given.
	DefaultBaudRate = 9600

	// NoPortsPlaceholder is shown in port pickers when nothing is attached.
	NoPortsPlaceholder = "No ports available"
)

// Port is the subset of serial.Port the gripper needs.
type Port interface {
	io.ReadWriteCloser
	Drain() error
	SetReadTimeout(t time.Duration) error
}

// Opener opens a serial device. A nil mode means 9600 8N1.
type Opener func(name string, mode *serial.Mode) (Port, error)

// OpenSerial opens a real serial device through go.bug.st/serial.
func OpenSerial(name string, mode *serial.Mode) (Port, error) {
	if mode == nil {
		mode = Mode8N1(DefaultBaudRate)
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Mode8N1 returns a serial mode with 8 data bits, no parity and one stop bit.
func Mode8N1(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// PortGuard checks that a port is free before a long-lived connection is
// opened on it.
type PortGuard struct {
	Open    Opener
	Baud    int
	Timeout time.Duration // read timeout used while probing
	Settle  time.Duration // wait between the forced release and the re-check

	// Logf, when set, receives diagnostic messages.
	Logf func(format string, args ...any)
}

// NewPortGuard returns a guard using real serial devices and the firmware
// defaults: 115200 baud, 1s probe timeout, 1s settle time.
func NewPortGuard() *PortGuard {
	return &PortGuard{
		Open:    OpenSerial,
		Baud:    BaudRate,
		Timeout: time.Second,
		Settle:  time.Second,
	}
}

func (g *PortGuard) logf(format string, args ...any) {
	if g.Logf != nil {
		g.Logf(format, args...)
	}
}

func (g *PortGuard) opener() Opener {
	if g.Open == nil {
		return OpenSerial
	}
	return g.Open
}

// Available opens and immediately closes the port. It reports whether the
// open succeeded.
func (g *PortGuard) Available(name string) bool {
	baud := g.Baud
	if baud == 0 {
		baud = BaudRate
	}
	p, err := g.opener()(name, Mode8N1(baud))
	if err != nil {
		var portErr *serial.PortError
		if errors.As(err, &portErr) {
			g.logf("probe %s: %s", name, portErr.EncodedErrorString())
		} else {
			g.logf("probe %s: %v", name, err)
		}
		return false
	}
	if g.Timeout > 0 {
		p.SetReadTimeout(g.Timeout)
	}
	p.Close()
	return true
}

// Acquire makes sure the port can be opened. When the first probe fails it
// force-opens and closes the port once at 9600 8N1, waits for the settle
// time and probes again.
func (g *PortGuard) Acquire(ctx context.Context, name string) error {
	if name == "" || name == NoPortsPlaceholder {
		return ErrNoPort
	}
	if g.Available(name) {
		return nil
	}

	g.logf("port %s busy, forcing release", name)
	if p, err := g.opener()(name, Mode8N1(DefaultBaudRate)); err == nil {
		p.Close()
	}

	if g.Settle > 0 {
		t := time.NewTimer(g.Settle)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	if !g.Available(name) {
		return fmt.Errorf("port %s: %w; close any other applications using the port (Arduino IDE, Serial Monitor, etc.)", name, ErrPortBusy)
	}
	return nil
}
