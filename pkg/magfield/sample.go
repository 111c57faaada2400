// Package magfield reads three-axis magnetic field samples streamed over
// serial as comma-separated text lines.
package magfield

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Axis names a sample component.
type Axis string

const (
	X Axis = "X"
	Y Axis = "Y"
	Z Axis = "Z"
)

// AllAxes returns the axes in wire order.
func AllAxes() []Axis {
	return []Axis{X, Y, Z}
}

// Sample is one reading from the sensor.
type Sample struct {
	X, Y, Z float64
	Time    time.Time
}

// Get returns the value for one axis.
func (s Sample) Get(a Axis) float64 {
	switch a {
	case X:
		return s.X
	case Y:
		return s.Y
	}
	return s.Z
}

// ParseSample parses "x,y,z". Anything other than exactly three floats is an
// error.
func ParseSample(line string) (Sample, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 3 {
		return Sample{}, fmt.Errorf("want 3 values, got %d", len(fields))
	}

	var v [3]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Sample{}, fmt.Errorf("value %d: %w", i, err)
		}
		v[i] = n
	}
	return Sample{X: v[0], Y: v[1], Z: v[2]}, nil
}

// DefaultWindow is how many samples the live view keeps.
const DefaultWindow = 200

// Window is a fixed-size ring of the most recent samples. It is safe for
// concurrent use.
type Window struct {
	mu    sync.Mutex
	buf   []Sample
	start int
	n     int
}

// NewWindow returns a window holding up to size samples.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindow
	}
	return &Window{buf: make([]Sample, size)}
}

// Push appends s, evicting the oldest sample when full.
func (w *Window) Push(s Sample) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.n < len(w.buf) {
		w.buf[(w.start+w.n)%len(w.buf)] = s
		w.n++
		return
	}
	w.buf[w.start] = s
	w.start = (w.start + 1) % len(w.buf)
}

// Len returns the number of samples held.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// Samples returns a copy of the held samples, oldest first.
func (w *Window) Samples() []Sample {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Sample, w.n)
	for i := range out {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

// WriteCSV writes samples with a header row: sample,x,y,z.
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"sample", "x", "y", "z"}); err != nil {
		return err
	}
	for i, s := range samples {
		rec := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(s.X, 'f', -1, 64),
			strconv.FormatFloat(s.Y, 'f', -1, 64),
			strconv.FormatFloat(s.Z, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
