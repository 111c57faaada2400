package mobilenet

import (
	"math"
	"testing"
)

func TestSoftmax(t *testing.T) {
	out := softmax([]float32{1, 2, 3})

	var sum float64
	for _, v := range out {
		sum += float64(v)
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("softmax sums to %f, want 1", sum)
	}
	if !(out[2] > out[1] && out[1] > out[0]) {
		t.Errorf("softmax should preserve order: %v", out)
	}
}

func TestDefaultConfig_ScalesToUnitRange(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.InputSize != 224 {
		t.Errorf("InputSize = %d, want 224", cfg.InputSize)
	}
	// (pixel - mean) * scale must map 0..255 onto -1..1
	lo := (0 - cfg.Mean) * cfg.Scale
	hi := (255 - cfg.Mean) * cfg.Scale
	if math.Abs(lo+1) > 1e-9 || math.Abs(hi-1) > 1e-9 {
		t.Errorf("normalization maps to [%f, %f], want [-1, 1]", lo, hi)
	}
}
