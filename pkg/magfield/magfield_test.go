package magfield

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestParseSample(t *testing.T) {
	tests := []struct {
		line    string
		want    Sample
		wantErr bool
	}{
		{"1.5,-2,3.25", Sample{X: 1.5, Y: -2, Z: 3.25}, false},
		{" 10, 20 ,30\r\n", Sample{X: 10, Y: 20, Z: 30}, false},
		{"1,2", Sample{}, true},
		{"1,2,3,4", Sample{}, true},
		{"1,abc,3", Sample{}, true},
		{"", Sample{}, true},
	}

	for _, tt := range tests {
		got, err := ParseSample(tt.line)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSample(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			continue
		}
		if got.X != tt.want.X || got.Y != tt.want.Y || got.Z != tt.want.Z {
			t.Errorf("ParseSample(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestWindow_KeepsMostRecent(t *testing.T) {
	w := NewWindow(3)
	for i := 1; i <= 5; i++ {
		w.Push(Sample{X: float64(i)})
	}

	if w.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", w.Len())
	}
	got := w.Samples()
	for i, want := range []float64{3, 4, 5} {
		if got[i].X != want {
			t.Errorf("Samples()[%d].X = %f, want %f", i, got[i].X, want)
		}
	}
}

func TestWindow_PartiallyFilled(t *testing.T) {
	w := NewWindow(0)
	w.Push(Sample{Y: 7})

	got := w.Samples()
	if len(got) != 1 || got[0].Y != 7 {
		t.Errorf("Samples() = %+v", got)
	}
}

func TestMonitor_DiscardsMalformed(t *testing.T) {
	in := "1,2,3\ngarbage\n4,5\n\n7,8,9\n"
	m := NewMonitor(strings.NewReader(in), DefaultWindow)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := m.Window().Samples()
	if len(got) != 2 {
		t.Fatalf("window holds %d samples, want 2", len(got))
	}
	if got[0].Z != 3 || got[1].X != 7 {
		t.Errorf("samples = %+v", got)
	}
	received, dropped := m.Stats()
	if received != 2 || dropped != 3 {
		t.Errorf("Stats() = %d, %d; want 2, 3", received, dropped)
	}

	// Only the latest sample is left for a slow consumer
	latest := <-m.Samples()
	if latest.X != 7 {
		t.Errorf("latest sample = %+v, want 7,8,9", latest)
	}
}

func TestMonitor_DiscardsOverlongLine(t *testing.T) {
	in := "1,2,3\n" + strings.Repeat("x", 70000) + "\n4,5,6\n"
	m := NewMonitor(strings.NewReader(in), DefaultWindow)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := m.Window().Samples()
	if len(got) != 2 {
		t.Fatalf("window holds %d samples, want 2", len(got))
	}
	if got[1].X != 4 {
		t.Errorf("second sample = %+v, want 4,5,6", got[1])
	}
	received, dropped := m.Stats()
	if received != 2 || dropped != 1 {
		t.Errorf("Stats() = %d, %d; want 2, 1", received, dropped)
	}
}

func TestMonitor_LastLineWithoutNewline(t *testing.T) {
	m := NewMonitor(strings.NewReader("1,2,3\n4,5,6"), DefaultWindow)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.Window().Len() != 2 {
		t.Errorf("window holds %d samples, want 2", m.Window().Len())
	}
}

// idlePort returns empty reads, like a serial port whose read timed out.
type idlePort struct {
	reads  int
	cancel context.CancelFunc
}

func (p *idlePort) Read(b []byte) (int, error) {
	p.reads++
	if p.reads == 3 {
		p.cancel()
	}
	return 0, nil
}

func TestMonitor_IdlePortUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	port := &idlePort{cancel: cancel}
	m := NewMonitor(port, DefaultWindow)

	if err := m.Run(ctx); err != context.Canceled {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}

func TestMonitor_ReadError(t *testing.T) {
	m := NewMonitor(io.MultiReader(strings.NewReader("1,2,3\n"), errReader{}), 10)

	if err := m.Run(context.Background()); err == nil {
		t.Fatal("Run should surface read errors")
	}
	if m.Window().Len() != 1 {
		t.Errorf("window holds %d samples, want 1", m.Window().Len())
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	samples := []Sample{{X: 1, Y: 2.5, Z: -3}, {X: 0, Y: 0, Z: 100}}

	if err := WriteCSV(&buf, samples); err != nil {
		t.Fatal(err)
	}
	want := "sample,x,y,z\n0,1,2.5,-3\n1,0,0,100\n"
	if buf.String() != want {
		t.Errorf("WriteCSV wrote %q, want %q", buf.String(), want)
	}
}
