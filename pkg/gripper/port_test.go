package gripper

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func testGuard(dev *fakeDevice) *PortGuard {
	return &PortGuard{
		Open:    dev.open,
		Baud:    BaudRate,
		Timeout: 10 * time.Millisecond,
	}
}

func TestPortGuard_Available(t *testing.T) {
	dev := &fakeDevice{}
	g := testGuard(dev)

	if !g.Available("/dev/ttyUSB0") {
		t.Fatal("free port reported unavailable")
	}
	if len(dev.ports) != 1 || !dev.ports[0].closed {
		t.Error("probe should close the port it opened")
	}
	if dev.opens[0].BaudRate != BaudRate {
		t.Errorf("probe baud = %d, want %d", dev.opens[0].BaudRate, BaudRate)
	}
	if dev.ports[0].timeout != 10*time.Millisecond {
		t.Errorf("probe timeout = %v", dev.ports[0].timeout)
	}
}

func TestPortGuard_AvailableHeldElsewhere(t *testing.T) {
	dev := &fakeDevice{busy: 1}
	g := testGuard(dev)

	if g.Available("/dev/ttyUSB0") {
		t.Fatal("held port reported available")
	}
}

func TestPortGuard_AcquireFree(t *testing.T) {
	dev := &fakeDevice{}
	g := testGuard(dev)

	if err := g.Acquire(context.Background(), "/dev/ttyUSB0"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(dev.opens) != 1 {
		t.Errorf("opened %d times, want 1", len(dev.opens))
	}
}

func TestPortGuard_AcquireReleasedAfterForce(t *testing.T) {
	// First probe fails, forced open succeeds, re-check succeeds.
	dev := &fakeDevice{busy: 1}
	g := testGuard(dev)

	if err := g.Acquire(context.Background(), "/dev/ttyUSB0"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(dev.opens) != 3 {
		t.Fatalf("opened %d times, want 3 (probe, force, re-check)", len(dev.opens))
	}
	force := dev.opens[1]
	if force == nil || force.BaudRate != DefaultBaudRate || force.DataBits != 8 {
		t.Errorf("forced open mode = %+v, want 9600 8N1 (a zero baud rate hangs up the line)", force)
	}
}

func TestPortGuard_AcquireStillBusy(t *testing.T) {
	dev := &fakeDevice{busy: 3}
	g := testGuard(dev)

	err := g.Acquire(context.Background(), "COM3")
	if !errors.Is(err, ErrPortBusy) {
		t.Fatalf("Acquire error = %v, want ErrPortBusy", err)
	}
	if !strings.Contains(err.Error(), "COM3") || !strings.Contains(err.Error(), "Arduino IDE") {
		t.Errorf("error message should name the port and the likely culprit: %q", err)
	}
	if len(dev.opens) != 3 {
		t.Errorf("opened %d times, want exactly one retry", len(dev.opens))
	}
}

func TestPortGuard_AcquireNoPort(t *testing.T) {
	dev := &fakeDevice{}
	g := testGuard(dev)

	for _, name := range []string{"", NoPortsPlaceholder} {
		if err := g.Acquire(context.Background(), name); !errors.Is(err, ErrNoPort) {
			t.Errorf("Acquire(%q) = %v, want ErrNoPort", name, err)
		}
	}
	if len(dev.opens) != 0 {
		t.Error("no device should be opened without a port name")
	}
}

func TestPortGuard_AcquireCancelled(t *testing.T) {
	dev := &fakeDevice{busy: 3}
	g := testGuard(dev)
	g.Settle = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := g.Acquire(ctx, "COM3"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Acquire error = %v, want context.Canceled", err)
	}
}

func TestDialer_Dial(t *testing.T) {
	dev := &fakeDevice{}
	d := &Dialer{
		Guard:       testGuard(dev),
		Open:        dev.open,
		ReadTimeout: time.Second,
	}

	conn, err := d.Dial(context.Background(), "/dev/ttyACM0")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if conn.Port() != "/dev/ttyACM0" {
		t.Errorf("Port() = %q", conn.Port())
	}
	if err := conn.Send(Grip); err != nil {
		t.Fatalf("Send: %v", err)
	}

	// ports[0] is the guard's probe, ports[1] the real connection
	if len(dev.ports) != 2 {
		t.Fatalf("opened %d ports, want 2", len(dev.ports))
	}
	p := dev.ports[1]
	if p.String() != "T1\n" {
		t.Errorf("connection wrote %q", p.String())
	}
	mode := dev.opens[1]
	if mode.BaudRate != BaudRate || mode.DataBits != 8 {
		t.Errorf("connection mode = %+v, want 115200 8N1", mode)
	}

	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}
	if !p.closed {
		t.Error("Close should close the port")
	}
}

func TestDialer_DialBusy(t *testing.T) {
	dev := &fakeDevice{busy: 10}
	d := &Dialer{Guard: testGuard(dev), Open: dev.open}

	if _, err := d.Dial(context.Background(), "/dev/ttyACM0"); !errors.Is(err, ErrPortBusy) {
		t.Fatalf("Dial error = %v, want ErrPortBusy", err)
	}
}

func TestDialer_DialPortNoGuard(t *testing.T) {
	dev := &fakeDevice{}
	d := &Dialer{Open: dev.open, ReadTimeout: 50 * time.Millisecond}

	if _, err := d.DialPort(context.Background(), ""); !errors.Is(err, ErrNoPort) {
		t.Fatalf("DialPort(\"\") = %v, want ErrNoPort", err)
	}

	p, err := d.DialPort(context.Background(), "/dev/ttyUSB1")
	if err != nil {
		t.Fatalf("DialPort: %v", err)
	}
	if len(dev.opens) != 1 {
		t.Errorf("opened %d times, want 1 without a guard", len(dev.opens))
	}
	if p.(*fakePort).timeout != 50*time.Millisecond {
		t.Errorf("read timeout not applied")
	}
}
