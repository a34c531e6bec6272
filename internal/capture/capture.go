package capture

import (
	"context"
	"fmt"
	"io"
	"time"

	"gocv.io/x/gocv"
)

// Frame is one decoded frame plus its place in the stream.
type Frame struct {
	// Mat is the decoded image. The consumer owns it and must Close it.
	Mat gocv.Mat
	// Index is the zero-based frame number.
	Index int
	// Delta is the elapsed time this frame represents (1/fps).
	Delta time.Duration
}

// Source yields frames until the stream ends.
type Source interface {
	// Next returns the next frame, io.EOF at end of stream.
	Next(ctx context.Context) (*Frame, error)
	// FPS is the declared frame rate, 0 when the stream reports none.
	FPS() float64
	// Close releases the underlying device or file.
	Close() error
}

// Stream reads frames from a video file or camera device through OpenCV.
type Stream struct {
	// capture is the underlying OpenCV handle.
	capture *gocv.VideoCapture
	// fps is the declared rate, 0 for live cameras without a hint.
	fps float64
	// delta is the per-frame elapsed time derived from fps or the fallback.
	delta time.Duration
	// index counts delivered frames.
	index int
}

// OpenFile opens a recorded video. The declared FPS drives the per-frame
// elapsed time; a missing or non-positive FPS falls back to fallbackFPS.
func OpenFile(path string, fallbackFPS float64) (*Stream, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video %q: %w", path, err)
	}

	fps := capture.Get(gocv.VideoCaptureFPS)

	return newStream(capture, fps, fallbackFPS), nil
}

// OpenCamera opens a live capture device. Live streams rarely declare a
// usable FPS, so the fallback shapes the per-frame elapsed time and the
// tracker typically runs the consecutive-frames policy instead.
func OpenCamera(device int, fallbackFPS float64) (*Stream, error) {
	capture, err := gocv.VideoCaptureDevice(device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", device, err)
	}

	return newStream(capture, 0, fallbackFPS), nil
}

func newStream(capture *gocv.VideoCapture, fps, fallbackFPS float64) *Stream {
	effective := fps
	if effective <= 0 {
		effective = fallbackFPS
	}

	return &Stream{
		capture: capture,
		fps:     fps,
		delta:   time.Duration(float64(time.Second) / effective),
	}
}

// Next returns the next frame. An unreadable or empty frame means end of
// stream, reported as io.EOF so the main loop terminates gracefully.
func (s *Stream) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat := gocv.NewMat()
	if !s.capture.Read(&mat) || mat.Empty() {
		_ = mat.Close()

		return nil, io.EOF
	}

	frame := &Frame{
		Mat:   mat,
		Index: s.index,
		Delta: s.delta,
	}
	s.index++

	return frame, nil
}

// FPS returns the declared frame rate, 0 when the stream reports none.
func (s *Stream) FPS() float64 {
	return s.fps
}

// Close releases the underlying device or file.
func (s *Stream) Close() error {
	return s.capture.Close()
}
