// Package classify maps image-model predictions to gripper actions.
//
// The model itself lives behind the Model interface; see the mobilenet
// subpackage for the gocv-backed implementation.
package classify

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gwillem/gripper/pkg/gripper"
)

// TopN is how many predictions per frame are scanned for a keyword.
const TopN = 5

// ErrNotDetected is returned when the frame source runs dry before any
// keyword matched.
var ErrNotDetected = errors.New("no target object detected")

// Prediction is a single decoded class with its confidence in [0, 1].
type Prediction struct {
	Label      string
	Confidence float64
}

func (p Prediction) String() string {
	return fmt.Sprintf("%s: %.2f%%", p.Label, p.Confidence*100)
}

// Detection is a keyword match and the action it maps to.
type Detection struct {
	Prediction
	Action gripper.Action
	Frames int // frames classified up to and including the match
}

// Keywords maps ImageNet labels to gripper actions.
type Keywords map[string]gripper.Action

// DefaultKeywords returns the stock allowlist.
func DefaultKeywords() Keywords {
	return Keywords{
		"balloon":    gripper.Grip,
		"pop_bottle": gripper.Release,
		"cell_phone": gripper.Stop,
	}
}

// Match returns the first prediction whose label is in the allowlist.
// preds must already be in descending confidence order.
func (k Keywords) Match(preds []Prediction) (Detection, bool) {
	for _, p := range preds {
		if a, ok := k[p.Label]; ok {
			return Detection{Prediction: p, Action: a}, true
		}
	}
	return Detection{}, false
}

// TopK returns the k highest-scoring labels in descending order. Scores
// beyond the end of labels are ignored.
func TopK(scores []float32, labels []string, k int) []Prediction {
	n := min(len(scores), len(labels))
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	if k > n {
		k = n
	}

	preds := make([]Prediction, k)
	for i := 0; i < k; i++ {
		preds[i] = Prediction{
			Label:      labels[idx[i]],
			Confidence: float64(scores[idx[i]]),
		}
	}
	return preds
}

// ParseLabels reads one class label per line. Blank lines are skipped and
// spaces become underscores so "cell phone" matches "cell_phone".
func ParseLabels(r io.Reader) ([]string, error) {
	var labels []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		labels = append(labels, strings.ReplaceAll(line, " ", "_"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return labels, nil
}
