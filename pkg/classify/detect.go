package classify

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrEndOfStream is returned by a Source that has no more frames.
var ErrEndOfStream = errors.New("end of stream")

// Source yields camera frames.
type Source[F any] interface {
	Read() (F, error)
}

// Model classifies a single frame. Predictions come back in descending
// confidence order.
type Model[F any] interface {
	Predict(frame F) ([]Prediction, error)
}

// Options tunes Detect.
type Options struct {
	Keywords Keywords

	// OnFrame, when set, is called with the scanned predictions of every
	// frame and the match, if any.
	OnFrame func(preds []Prediction, det *Detection)
}

// Detect classifies frames from src until one of the top predictions
// matches a keyword. It returns ErrNotDetected when src is exhausted and
// ctx.Err() when ctx is cancelled.
func Detect[F any](ctx context.Context, src Source[F], m Model[F], opts Options) (Detection, error) {
	keywords := opts.Keywords
	if keywords == nil {
		keywords = DefaultKeywords()
	}

	for frames := 1; ; frames++ {
		if err := ctx.Err(); err != nil {
			return Detection{}, err
		}

		frame, err := src.Read()
		if errors.Is(err, ErrEndOfStream) {
			return Detection{}, ErrNotDetected
		}
		if err != nil {
			return Detection{}, fmt.Errorf("read frame: %w", err)
		}

		preds, err := m.Predict(frame)
		if c, ok := any(frame).(io.Closer); ok {
			c.Close()
		}
		if err != nil {
			return Detection{}, fmt.Errorf("predict: %w", err)
		}
		if len(preds) > TopN {
			preds = preds[:TopN]
		}

		det, ok := keywords.Match(preds)
		det.Frames = frames
		if opts.OnFrame != nil {
			if ok {
				opts.OnFrame(preds, &det)
			} else {
				opts.OnFrame(preds, nil)
			}
		}
		if ok {
			return det, nil
		}
	}
}
