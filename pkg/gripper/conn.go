package gripper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial/enumerator"
)

// Conn is an exclusive, long-lived connection to the gripper.
type Conn struct {
	name   string
	port   Port
	sender *Sender
}

// Port returns the device name the connection was opened on.
func (c *Conn) Port() string {
	return c.name
}

// Send writes one action to the gripper.
func (c *Conn) Send(a Action) error {
	return c.sender.Send(a)
}

// Close closes the underlying serial port.
func (c *Conn) Close() error {
	return c.port.Close()
}

// Dialer opens gripper connections after checking the port with a guard.
type Dialer struct {
	Guard       *PortGuard
	Open        Opener
	Baud        int
	ReadTimeout time.Duration
}

// NewDialer returns a dialer for real serial devices.
func NewDialer() *Dialer {
	return &Dialer{
		Guard:       NewPortGuard(),
		Open:        OpenSerial,
		Baud:        BaudRate,
		ReadTimeout: time.Second,
	}
}

// Dial checks the port is free and opens it at 115200 8N1.
func (d *Dialer) Dial(ctx context.Context, name string) (*Conn, error) {
	port, err := d.DialPort(ctx, name)
	if err != nil {
		return nil, err
	}
	return &Conn{
		name:   name,
		port:   port,
		sender: NewSender(port),
	}, nil
}

// DialPort runs the guard and returns the raw port, for streams that are
// read rather than commanded (the magnetic field sensor).
func (d *Dialer) DialPort(ctx context.Context, name string) (Port, error) {
	if d.Guard != nil {
		if err := d.Guard.Acquire(ctx, name); err != nil {
			return nil, err
		}
	} else if name == "" || name == NoPortsPlaceholder {
		return nil, ErrNoPort
	}

	open := d.Open
	if open == nil {
		open = OpenSerial
	}
	baud := d.Baud
	if baud == 0 {
		baud = BaudRate
	}

	port, err := open(name, Mode8N1(baud))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if d.ReadTimeout > 0 {
		if err := port.SetReadTimeout(d.ReadTimeout); err != nil {
			port.Close()
			return nil, fmt.Errorf("set read timeout: %w", err)
		}
	}
	return port, nil
}

// PortInfo describes a serial device found on the system.
type PortInfo struct {
	Name    string
	IsUSB   bool
	VID     string
	PID     string
	Serial  string
	Product string
}

// ListPorts returns the serial devices attached to the system.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		// Skip Bluetooth ports on macOS
		if strings.Contains(d.Name, "Bluetooth") {
			continue
		}
		ports = append(ports, PortInfo{
			Name:    d.Name,
			IsUSB:   d.IsUSB,
			VID:     d.VID,
			PID:     d.PID,
			Serial:  d.SerialNumber,
			Product: d.Product,
		})
	}
	return ports, nil
}

// PortNames returns just the device names from ListPorts, or the
// placeholder when nothing is attached.
func PortNames() []string {
	ports, err := ListPorts()
	if err != nil || len(ports) == 0 {
		return []string{NoPortsPlaceholder}
	}
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	return names
}
