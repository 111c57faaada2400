package gripper

import (
	"bytes"
	"errors"
	"time"

	"go.bug.st/serial"
)

type fakePort struct {
	bytes.Buffer
	writeErr error
	drainErr error
	drains   int
	closed   bool
	timeout  time.Duration
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.Buffer.Write(b)
}

func (p *fakePort) Drain() error {
	p.drains++
	return p.drainErr
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	return nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

// fakeDevice fails the first `busy` opens with a PortBusy error.
type fakeDevice struct {
	busy  int
	opens []*serial.Mode
	ports []*fakePort
}

func (d *fakeDevice) open(name string, mode *serial.Mode) (Port, error) {
	d.opens = append(d.opens, mode)
	if d.busy > 0 {
		d.busy--
		return nil, &serial.PortError{}
	}
	p := &fakePort{}
	d.ports = append(d.ports, p)
	return p, nil
}

var errBroken = errors.New("broken pipe")
