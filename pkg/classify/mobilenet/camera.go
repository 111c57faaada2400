package mobilenet

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/gwillem/gripper/pkg/classify"
)

// Camera reads frames from a video capture device.
type Camera struct {
	vc *gocv.VideoCapture
}

// OpenCamera opens capture device id (0 is the default webcam).
func OpenCamera(id int) (*Camera, error) {
	vc, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", id, err)
	}
	return &Camera{vc: vc}, nil
}

// Read grabs the next frame. The caller closes the returned Mat.
func (c *Camera) Read() (*gocv.Mat, error) {
	frame := gocv.NewMat()
	if ok := c.vc.Read(&frame); !ok || frame.Empty() {
		frame.Close()
		return nil, classify.ErrEndOfStream
	}
	return &frame, nil
}

// Close releases the capture device.
func (c *Camera) Close() error {
	return c.vc.Close()
}

var (
	_ classify.Source[*gocv.Mat] = (*Camera)(nil)
	_ classify.Model[*gocv.Mat]  = (*Net)(nil)
)
