package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/driver-sentry/internal/config"
	"github.com/oshokin/driver-sentry/internal/logger"
	"github.com/oshokin/driver-sentry/internal/service/monitor"
	"github.com/oshokin/driver-sentry/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// mode overrides the configured pipeline (video or camera).
	mode string
	// videoFile overrides the input video path.
	videoFile string
	// cameraIndex overrides the capture device.
	cameraIndex int
	// listenAddress overrides the dashboard address.
	listenAddress string
	// reportFile overrides the session summary path.
	reportFile string
	// outputFile overrides the annotated video path.
	outputFile string
	// noSound forces visual-only alerts.
	noSound bool
	// logLevel sets the logging verbosity.
	logLevel string

	// rootCmd represents the base command for running the monitor.
	rootCmd = &cobra.Command{
		Use:   "driver-sentry [video-file]",
		Short: "Monitor a driver stream for unsafe behavior and raise escalating alerts.",
		Long: `Watches a recorded video or a live camera for unsafe driver behavior:
phone usage, eating, smoking, eyes closed, head turned away.

Each behavior sustained past its configured threshold activates an escalating
audio-visual alarm; a single frame without the behavior resets its progress.
When the stream ends a per-behavior summary is printed and optionally saved.

The video file can be provided as argument to override the configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use video file argument if provided, otherwise rely on config.
			if len(args) > 0 {
				videoFile = args[0]
			}

			options := &monitor.Options{
				ConfigPath:    configPath,
				Mode:          mode,
				VideoFile:     videoFile,
				CameraIndex:   cameraIndex,
				ListenAddress: listenAddress,
				ReportFile:    reportFile,
				OutputFile:    outputFile,
				SoundDisabled: noSound,
			}

			return monitor.Run(ctx, options)
		},
	}
)

// Execute runs the driver-sentry CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&mode, "mode", "m", "", "pipeline mode: video or camera")
	rootCmd.Flags().StringVar(&videoFile, "video", "", "input video file (video mode)")
	rootCmd.Flags().IntVar(&cameraIndex, "camera", -1, "capture device index (camera mode)")
	rootCmd.Flags().StringVarP(&listenAddress, "listen", "l", "", "status dashboard listen address (e.g. :8080)")
	rootCmd.Flags().StringVarP(&reportFile, "report", "r", "", "path to save the session summary JSON")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "path to save the annotated video")
	rootCmd.Flags().BoolVar(&noSound, "no-sound", false, "disable the audio siren, visual alerts only")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "logging level: debug, info, warn, error")
}
