// Package mobilenet runs an ImageNet MobileNetV2 classifier through gocv's
// DNN module.
package mobilenet

import (
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/gwillem/gripper/pkg/classify"
)

// Config holds model configuration.
type Config struct {
	ModelPath  string
	LabelsPath string
	InputSize  int
	Mean       float64 // subtracted from every channel
	Scale      float64 // applied after the mean
	SwapRB     bool    // camera frames are BGR; the model expects RGB
	Softmax    bool    // set when the model outputs raw logits
}

// DefaultConfig matches Keras' mobilenet_v2.preprocess_input: 224x224 input
// scaled to [-1, 1].
func DefaultConfig() Config {
	return Config{
		ModelPath:  "models/mobilenetv2.onnx",
		LabelsPath: "models/imagenet_labels.txt",
		InputSize:  224,
		Mean:       127.5,
		Scale:      1.0 / 127.5,
		SwapRB:     true,
	}
}

// Net is a loaded classifier.
type Net struct {
	net    gocv.Net
	labels []string
	config Config
	mu     sync.Mutex
}

// Load reads the ONNX model and its label file.
func Load(cfg Config) (*Net, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	f, err := os.Open(cfg.LabelsPath)
	if err != nil {
		return nil, fmt.Errorf("open labels: %w", err)
	}
	labels, err := classify.ParseLabels(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model from %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	if cfg.InputSize <= 0 {
		cfg.InputSize = 224
	}

	return &Net{net: net, labels: labels, config: cfg}, nil
}

// Close releases the model.
func (n *Net) Close() error {
	return n.net.Close()
}

// Predict classifies one frame and returns the top predictions.
func (n *Net) Predict(frame *gocv.Mat) ([]classify.Prediction, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if frame == nil || frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	size := image.Pt(n.config.InputSize, n.config.InputSize)
	mean := gocv.NewScalar(n.config.Mean, n.config.Mean, n.config.Mean, 0)
	blob := gocv.BlobFromImage(*frame, n.config.Scale, size, mean, n.config.SwapRB, false)
	defer blob.Close()

	n.net.SetInput(blob, "")
	output := n.net.Forward("")
	defer output.Close()

	scores, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	if n.config.Softmax {
		scores = softmax(scores)
	}

	return classify.TopK(scores, n.labels, classify.TopN), nil
}

func softmax(logits []float32) []float32 {
	out := make([]float32, len(logits))
	maxv := float32(math.Inf(-1))
	for _, v := range logits {
		maxv = max(maxv, v)
	}
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxv))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
