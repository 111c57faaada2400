package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"gocv.io/x/gocv"

	"github.com/gwillem/gripper/internal/log"
	"github.com/gwillem/gripper/pkg/classify"
	"github.com/gwillem/gripper/pkg/classify/mobilenet"
)

type ClassifyCommand struct {
	Camera  *int   `long:"camera" description:"Video capture device index (default from gripper.json)"`
	Model   string `long:"model" description:"MobileNetV2 ONNX model (default from gripper.json)"`
	Labels  string `long:"labels" description:"ImageNet labels, one per line (default from gripper.json)"`
	Softmax bool   `long:"softmax" description:"Apply softmax to model output (for models that emit logits)"`
	Send    bool   `long:"send" description:"Send the detected action to the gripper"`
	Port    string `long:"port" short:"p" description:"Gripper serial port for --send (default from gripper.json)"`
}

func (c *ClassifyCommand) Execute(args []string) error {
	cfg := loadConfig()

	netCfg := mobilenet.DefaultConfig()
	if cfg.Classifier.Model != "" {
		netCfg.ModelPath = cfg.Classifier.Model
	}
	if cfg.Classifier.Labels != "" {
		netCfg.LabelsPath = cfg.Classifier.Labels
	}
	if c.Model != "" {
		netCfg.ModelPath = c.Model
	}
	if c.Labels != "" {
		netCfg.LabelsPath = c.Labels
	}
	netCfg.Softmax = c.Softmax

	camera := cfg.Classifier.Camera
	if c.Camera != nil {
		camera = *c.Camera
	}

	keywords := classify.DefaultKeywords()
	if len(cfg.Classifier.Keywords) > 0 {
		keywords = classify.Keywords(cfg.Classifier.Keywords)
	}

	net, err := mobilenet.Load(netCfg)
	if err != nil {
		return err
	}
	defer net.Close()

	cam, err := mobilenet.OpenCamera(camera)
	if err != nil {
		return err
	}
	defer cam.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	log.Info("classifying", "camera", camera, "model", netCfg.ModelPath, "keywords", len(keywords))

	det, err := classify.Detect[*gocv.Mat](ctx, cam, net, classify.Options{
		Keywords: keywords,
		OnFrame: func(preds []classify.Prediction, det *classify.Detection) {
			if det != nil {
				log.Debug("frame", "match", det.Prediction.String())
			} else if len(preds) > 0 {
				log.Debug("frame", "top", preds[0].String(), "match", "Not detected")
			}
		},
	})
	switch {
	case errors.Is(err, classify.ErrNotDetected), errors.Is(err, context.Canceled):
		fmt.Println(dimStyle.Render("No target object detected."))
		return nil
	case err != nil:
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Detected %s", det.Prediction)))
	fmt.Printf("  Action: %s after %d frame(s)\n", det.Action.Name(), det.Frames)

	if !c.Send {
		return nil
	}

	port := c.Port
	if port == "" {
		port = cfg.Gripper.Port
	}
	conn, err := newDialer(cfg.Gripper.BaudOrDefault()).Dial(ctx, port)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Send(det.Action); err != nil {
		return err
	}
	log.Info("sent", "action", det.Action.Name(), "port", conn.Port())
	return nil
}
