package detect

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// LandmarkExtractor returns facial landmarks for the single supported face.
// An empty slice means no face was found; that is not an error.
type LandmarkExtractor interface {
	Extract(frame gocv.Mat) ([]Point, error)
	Close() error
}

const (
	// meshInputSize is the square face-mesh network input in pixels.
	meshInputSize = 192
	// meshCoordinates is the packed (x, y, z) stride of the mesh output.
	meshCoordinates = 3
)

// FaceMesh runs a face-mesh ONNX model through OpenCV's DNN module and
// maps its landmark tensor back to frame pixels.
type FaceMesh struct {
	// net is the loaded network.
	net gocv.Net
	// mu protects inference.
	mu sync.Mutex
}

// NewFaceMesh loads the mesh model.
func NewFaceMesh(modelPath string) (*FaceMesh, error) {
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("load face mesh model %q", modelPath)
	}

	_ = net.SetPreferableBackend(gocv.NetBackendDefault)
	_ = net.SetPreferableTarget(gocv.NetTargetCPU)

	return &FaceMesh{net: net}, nil
}

// Extract runs one forward pass. The output tensor packs landmarks as
// (x, y, z) triples in network-input scale; x and y are rescaled to frame
// pixels and z is dropped.
func (m *FaceMesh) Extract(frame gocv.Mat) ([]Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	blob := gocv.BlobFromImage(frame, 1.0/255.0,
		image.Pt(meshInputSize, meshInputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	m.net.SetInput(blob, "")

	output := m.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read mesh output: %w", err)
	}

	if len(data) < meshCoordinates {
		return nil, nil
	}

	var (
		scaleX = float64(frame.Cols()) / meshInputSize
		scaleY = float64(frame.Rows()) / meshInputSize
		points = make([]Point, 0, len(data)/meshCoordinates)
	)

	for i := 0; i+meshCoordinates-1 < len(data); i += meshCoordinates {
		points = append(points, Point{
			X: float64(data[i]) * scaleX,
			Y: float64(data[i+1]) * scaleY,
		})
	}

	return points, nil
}

// Close releases the network.
func (m *FaceMesh) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.net.Close()
}
