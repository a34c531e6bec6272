package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gocv.io/x/gocv"

	"github.com/oshokin/driver-sentry/internal/alarm"
	"github.com/oshokin/driver-sentry/internal/capture"
	"github.com/oshokin/driver-sentry/internal/config"
	"github.com/oshokin/driver-sentry/internal/detect"
	"github.com/oshokin/driver-sentry/internal/logger"
	"github.com/oshokin/driver-sentry/internal/overlay"
	"github.com/oshokin/driver-sentry/internal/repository/report"
	"github.com/oshokin/driver-sentry/internal/signal"
	"github.com/oshokin/driver-sentry/internal/sound"
	"github.com/oshokin/driver-sentry/internal/web"
)

// Options controls the driver-sentry monitor process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// Mode overrides the configured pipeline mode when non-empty.
	Mode string
	// VideoFile overrides the configured input video path.
	VideoFile string
	// CameraIndex overrides the configured capture device. Negative means
	// no override.
	CameraIndex int
	// ListenAddress overrides the configured dashboard address.
	ListenAddress string
	// ReportFile overrides the configured summary report path.
	ReportFile string
	// OutputFile overrides the configured annotated-video path.
	OutputFile string
	// SoundDisabled forces the visual-only siren regardless of configuration.
	SoundDisabled bool
}

// ErrNoVideoFile indicates video mode was selected without an input path.
var ErrNoVideoFile = errors.New("no video file configured")

// codec is the FourCC used for the annotated output video.
const codec = "mp4v"

// Run starts the monitor and blocks until the stream ends or the context is
// canceled. Configuration is loaded first, then command-line overrides are
// applied on top.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "driver-sentry")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyOverrides(settings, opts)

	controller := alarm.New(newSiren(ctx, settings, opts.SoundDisabled), settings.Alarm)

	var dashboard *web.Server
	if settings.ListenAddress != "" {
		dashboard = web.NewServer(settings.ListenAddress)

		go func() {
			if err := dashboard.Run(ctx); err != nil {
				logger.Errorf(ctx, "Dashboard stopped: %v", err)
			}
		}()
	}

	var reports report.Repository
	if settings.ReportFile != "" {
		reports = report.NewFileRepository(settings.ReportFile)
	}

	svc := newService(settings, controller, dashboard, reports)

	source, err := openSource(settings)
	if err != nil {
		return fmt.Errorf("open capture source: %w", err)
	}
	defer source.Close()

	logger.InfoKV(ctx, "Monitor started",
		"mode", string(settings.Mode),
		"policy", string(settings.Tracking.Policy),
		"fps", source.FPS(),
		"behaviors", len(settings.Behaviors))

	switch settings.Mode {
	case config.ModeCamera:
		err = runLandmarkLoop(ctx, settings, svc, source)
	default:
		err = runDetectionLoop(ctx, settings, svc, source)
	}

	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		svc.finalize(ctx)

		return err
	}

	svc.finalize(ctx)
	logger.Info(ctx, "Monitor stopped")

	return nil
}

// applyOverrides copies non-empty command-line options over the loaded
// configuration.
func applyOverrides(settings *config.Config, opts *Options) {
	if opts.Mode != "" {
		settings.Mode = config.Mode(opts.Mode)
	}

	if opts.VideoFile != "" {
		settings.VideoFile = opts.VideoFile
	}

	if opts.CameraIndex >= 0 {
		settings.CameraIndex = opts.CameraIndex
	}

	if opts.ListenAddress != "" {
		settings.ListenAddress = opts.ListenAddress
	}

	if opts.ReportFile != "" {
		settings.ReportFile = opts.ReportFile
	}

	if opts.OutputFile != "" {
		settings.OutputFile = opts.OutputFile
	}
}

// newSiren builds the audio backend, degrading to the silent one when sound
// is disabled or the audio device cannot be opened.
func newSiren(ctx context.Context, settings *config.Config, disabled bool) alarm.Siren {
	if disabled || !settings.Alarm.SoundEnabled {
		return sound.Noop{}
	}

	tone, err := sound.NewTone(settings.Alarm)
	if err != nil {
		logger.Warnf(ctx, "Audio unavailable, running visual-only: %v", err)

		return sound.Noop{}
	}

	return tone
}

// openSource opens the capture stream for the configured mode.
func openSource(settings *config.Config) (capture.Source, error) {
	if settings.Mode == config.ModeCamera {
		return capture.OpenCamera(settings.CameraIndex, settings.Tracking.FallbackFPS)
	}

	if settings.VideoFile == "" {
		return nil, ErrNoVideoFile
	}

	return capture.OpenFile(settings.VideoFile, settings.Tracking.FallbackFPS)
}

// runDetectionLoop drives the object-detector pipeline: every frame goes
// through the network, detections become an observation and the observation
// drives the alarm. A detector failure counts as an absent frame so the
// accumulators reset instead of free-running on stale signals.
func runDetectionLoop(ctx context.Context, settings *config.Config, svc *service, source capture.Source) error {
	detector, err := detect.NewYOLO(settings.Detector)
	if err != nil {
		return fmt.Errorf("load object detector: %w", err)
	}
	defer detector.Close()

	adapter := signal.NewDiscrete(settings.Tags())
	writer := newRecorder(settings.OutputFile, source.FPS(), settings.Tracking.FallbackFPS)
	defer writer.Close()

	for {
		frame, err := source.Next(ctx)
		if err != nil {
			return err
		}

		detections, err := detector.Detect(frame.Mat)
		if err != nil {
			logger.Warnf(ctx, "Detection failed on frame %d: %v", frame.Index, err)

			detections = nil
		}

		o := adapter.Observe(frame.Index, frame.Delta, detections)
		result := svc.step(ctx, o)

		overlay.Draw(&frame.Mat, o, result)
		writer.Write(ctx, &frame.Mat)
		frame.Mat.Close()
	}
}

// runLandmarkLoop drives the face-landmark pipeline: eye closure and head
// pose become an observation plus a HUD reading drawn on every frame.
func runLandmarkLoop(ctx context.Context, settings *config.Config, svc *service, source capture.Source) error {
	mesh, err := detect.NewFaceMesh(settings.Detector.MeshModelPath)
	if err != nil {
		return fmt.Errorf("load face mesh: %w", err)
	}
	defer mesh.Close()

	adapter := signal.NewLandmark(settings.Geometry)
	writer := newRecorder(settings.OutputFile, source.FPS(), settings.Tracking.FallbackFPS)
	defer writer.Close()

	for {
		frame, err := source.Next(ctx)
		if err != nil {
			return err
		}

		points, err := mesh.Extract(frame.Mat)
		if err != nil {
			logger.Warnf(ctx, "Landmark extraction failed on frame %d: %v", frame.Index, err)

			points = nil
		}

		o, reading := adapter.Observe(frame.Index, frame.Delta, points)
		result := svc.step(ctx, o)

		overlay.Draw(&frame.Mat, o, result)
		overlay.DrawHUD(&frame.Mat, reading, svc.tracker.Accumulated(settings.Geometry.EyesClosedTag))
		writer.Write(ctx, &frame.Mat)
		frame.Mat.Close()
	}
}

// recorder lazily opens the annotated-video writer on the first frame, once
// the frame dimensions are known. A zero recorder discards frames.
type recorder struct {
	path   string
	fps    float64
	writer *gocv.VideoWriter
	failed bool
}

// newRecorder creates a recorder; an empty path disables recording. Live
// cameras report no FPS, so the fallback shapes the output rate.
func newRecorder(path string, fps, fallbackFPS float64) *recorder {
	if fps <= 0 {
		fps = fallbackFPS
	}

	return &recorder{path: path, fps: fps}
}

// Write appends one annotated frame to the output video.
func (r *recorder) Write(ctx context.Context, img *gocv.Mat) {
	if r.path == "" || r.failed || img.Empty() {
		return
	}

	if r.writer == nil {
		writer, err := gocv.VideoWriterFile(r.path, codec, r.fps, img.Cols(), img.Rows(), true)
		if err != nil {
			logger.Errorf(ctx, "Failed to open output video %s: %v", r.path, err)

			r.failed = true

			return
		}

		r.writer = writer
	}

	if err := r.writer.Write(*img); err != nil {
		logger.Warnf(ctx, "Failed to write output frame: %v", err)
	}
}

// Close releases the output video, if one was opened.
func (r *recorder) Close() {
	if r.writer != nil {
		_ = r.writer.Close()
		r.writer = nil
	}
}
