package detect

import (
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"github.com/oshokin/driver-sentry/internal/config"
)

// ObjectDetector classifies behavior regions in a whole frame.
type ObjectDetector interface {
	Detect(frame gocv.Mat) ([]Detection, error)
	Close() error
}

// yoloInputSize is the square network input in pixels.
const yoloInputSize = 640

// YOLO runs a YOLO-style network through OpenCV's DNN module. Inference is
// serialized: the network is not safe for concurrent forward passes.
type YOLO struct {
	// net is the loaded network.
	net gocv.Net
	// classNames maps class ids to raw labels, one per line of the names file.
	classNames []string
	// confidence is the minimum kept score.
	confidence float64
	// mu protects inference.
	mu sync.Mutex
}

// NewYOLO loads the network and class names. ONNX models need only a model
// path; darknet-style models also provide a config path.
func NewYOLO(cfg config.Detector) (*YOLO, error) {
	namesBytes, err := os.ReadFile(cfg.NamesPath)
	if err != nil {
		return nil, fmt.Errorf("read class names: %w", err)
	}

	var classNames []string

	for _, line := range strings.Split(string(namesBytes), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			classNames = append(classNames, line)
		}
	}

	var net gocv.Net
	if cfg.ConfigPath == "" {
		net = gocv.ReadNetFromONNX(cfg.ModelPath)
	} else {
		net = gocv.ReadNet(cfg.ModelPath, cfg.ConfigPath)
	}

	if net.Empty() {
		return nil, fmt.Errorf("load detection model %q", cfg.ModelPath)
	}

	_ = net.SetPreferableBackend(gocv.NetBackendDefault)
	_ = net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YOLO{
		net:        net,
		classNames: classNames,
		confidence: cfg.Confidence,
	}, nil
}

// Detect runs one forward pass and returns classified regions above the
// confidence floor. Output rows are [cx, cy, w, h, objectness, scores...]
// in normalized coordinates.
func (d *YOLO) Detect(frame gocv.Mat) ([]Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	blob := gocv.BlobFromImage(frame, 1.0/255.0,
		image.Pt(yoloInputSize, yoloInputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	var (
		frameWidth  = float64(frame.Cols())
		frameHeight = float64(frame.Rows())
		detections  []Detection
	)

	for row := 0; row < output.Rows(); row++ {
		classID, score := bestClass(output, row)
		if score < d.confidence || classID >= len(d.classNames) {
			continue
		}

		centerX := float64(output.GetFloatAt(row, 0)) * frameWidth
		centerY := float64(output.GetFloatAt(row, 1)) * frameHeight
		width := float64(output.GetFloatAt(row, 2)) * frameWidth
		height := float64(output.GetFloatAt(row, 3)) * frameHeight

		left := int(centerX - width/2)
		top := int(centerY - height/2)

		detections = append(detections, Detection{
			Label:      d.classNames[classID],
			Confidence: score,
			Rect:       image.Rect(left, top, left+int(width), top+int(height)),
		})
	}

	return detections, nil
}

// bestClass returns the highest-scoring class of one output row.
func bestClass(output gocv.Mat, row int) (int, float64) {
	var (
		bestID    int
		bestScore float32
	)

	for col := 5; col < output.Cols(); col++ {
		if score := output.GetFloatAt(row, col); score > bestScore {
			bestScore = score
			bestID = col - 5
		}
	}

	return bestID, float64(bestScore)
}

// Close releases the network.
func (d *YOLO) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.net.Close()
}
