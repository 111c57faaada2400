package magfield

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Monitor reads samples from a sensor stream into a Window.
type Monitor struct {
	r      io.Reader
	window *Window

	samples chan Sample
	logCh   chan string

	received int
	dropped  int
}

// NewMonitor creates a monitor reading from r. The reader is typically a
// serial port opened at 115200 baud.
func NewMonitor(r io.Reader, size int) *Monitor {
	return &Monitor{
		r:       r,
		window:  NewWindow(size),
		samples: make(chan Sample, 1),
		logCh:   make(chan string, 10),
	}
}

// Window returns the monitor's sample window.
func (m *Monitor) Window() *Window {
	return m.window
}

// Samples returns a channel that receives each parsed sample. Only the
// latest sample is kept when the consumer falls behind.
func (m *Monitor) Samples() <-chan Sample {
	return m.samples
}

// Logs returns a channel that receives log messages.
func (m *Monitor) Logs() <-chan string {
	return m.logCh
}

// Stats returns how many lines were parsed and how many were discarded.
// Call it after Run has returned.
func (m *Monitor) Stats() (received, dropped int) {
	return m.received, m.dropped
}

func (m *Monitor) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case m.logCh <- msg:
	default:
	}
}

// Run reads lines until ctx is cancelled or the reader ends. Malformed lines,
// including lines too long to buffer, are discarded.
func (m *Monitor) Run(ctx context.Context) error {
	br := bufio.NewReader(pollReader{ctx: ctx, r: m.r})
	overflow := false
	for {
		line, err := br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			overflow = true
			continue
		}

		if len(line) > 0 && (err == nil || err == io.EOF) {
			if overflow {
				m.dropped++
			} else {
				m.handle(string(line))
			}
			overflow = false
		}

		if err != nil {
			if overflow {
				m.dropped++
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read sensor: %w", err)
		}
	}
}

func (m *Monitor) handle(line string) {
	s, err := ParseSample(line)
	if err != nil {
		m.dropped++
		return
	}
	s.Time = time.Now()
	m.received++
	if m.received == 1 {
		m.log("Receiving sensor data")
	}
	m.window.Push(s)
	m.send(s)
}

// pollReader retries empty reads, which is how a serial port with a read
// timeout reports an idle line, until ctx is done.
type pollReader struct {
	ctx context.Context
	r   io.Reader
}

func (p pollReader) Read(b []byte) (int, error) {
	for {
		if err := p.ctx.Err(); err != nil {
			return 0, err
		}
		n, err := p.r.Read(b)
		if n > 0 || err != nil {
			return n, err
		}
	}
}

func (m *Monitor) send(s Sample) {
	select {
	case m.samples <- s:
	default:
		// Drop old sample if channel full, replace with new
		select {
		case <-m.samples:
		default:
		}
		m.samples <- s
	}
}
