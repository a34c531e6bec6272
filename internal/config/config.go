package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/driver-sentry/internal/domain/behavior"
)

// Mode selects which detection pipeline the monitor runs.
type Mode string

const (
	// ModeVideo processes a recorded file through the object-detector pipeline.
	ModeVideo Mode = "video"
	// ModeCamera processes a live camera through the landmark pipeline.
	ModeCamera Mode = "camera"
)

// TrackingPolicy selects how the duration tracker accumulates presence.
type TrackingPolicy string

const (
	// PolicySeconds accumulates elapsed seconds per tag (file streams).
	PolicySeconds TrackingPolicy = "seconds"
	// PolicyFrames counts consecutive frames per tag (live streams).
	PolicyFrames TrackingPolicy = "frames"
)

// Behavior is one entry of the threshold table. Order in the YAML list is
// significant: it breaks ties when several tags are equally overdue.
type Behavior struct {
	// Tag is the behavior label as produced by the signal adapters.
	Tag behavior.Tag `yaml:"tag"`
	// Seconds is the duration threshold used by the seconds policy.
	Seconds float64 `yaml:"seconds"`
	// Frames is the consecutive-frame threshold used by the frames policy.
	Frames int `yaml:"frames"`
}

// Geometry holds the landmark pipeline tuning.
type Geometry struct {
	// EARThreshold is the eye-aspect-ratio below which eyes count as closed.
	EARThreshold float64 `yaml:"ear_threshold"`
	// YawThreshold is the normalized horizontal nose displacement beyond
	// which the head counts as turned.
	YawThreshold float64 `yaml:"yaw_threshold"`
	// PitchThreshold is the normalized vertical nose displacement beyond
	// which the head counts as down.
	PitchThreshold float64 `yaml:"pitch_threshold"`
	// LeftEye and RightEye are the six ordered eye-contour landmark indices.
	LeftEye  []int `yaml:"left_eye"`
	RightEye []int `yaml:"right_eye"`
	// Nose is the nose-tip landmark index.
	Nose int `yaml:"nose"`
	// EyesClosedTag, HeadTurnedTag and HeadDownTag name the tags the
	// landmark adapter emits.
	EyesClosedTag behavior.Tag `yaml:"eyes_closed_tag"`
	HeadTurnedTag behavior.Tag `yaml:"head_turned_tag"`
	HeadDownTag   behavior.Tag `yaml:"head_down_tag"`
}

// Tracking holds the duration tracker tuning.
type Tracking struct {
	// Policy selects seconds accumulation or consecutive-frame counting.
	Policy TrackingPolicy `yaml:"policy"`
	// FallbackFPS replaces a missing or non-positive stream FPS hint.
	FallbackFPS float64 `yaml:"fallback_fps"`
	// RearmCooldown suppresses alert re-fires after a trigger (frames policy).
	RearmCooldown time.Duration `yaml:"rearm_cooldown"`
}

// Alarm holds the escalation tuning.
type Alarm struct {
	// SoundEnabled is the master switch for the audio siren.
	SoundEnabled bool `yaml:"sound_enabled"`
	// IntensityFloor is the volume the alarm starts at on every activation.
	IntensityFloor float64 `yaml:"intensity_floor"`
	// IntensityCeiling caps the escalation.
	IntensityCeiling float64 `yaml:"intensity_ceiling"`
	// IntensityStep is added on every escalation tick.
	IntensityStep float64 `yaml:"intensity_step"`
	// Tick is the escalation cadence, independent of the frame rate.
	Tick time.Duration `yaml:"tick"`
	// FrequencyHz is the siren tone frequency.
	FrequencyHz int `yaml:"frequency_hz"`
	// BeepDuration is the length of one pulse.
	BeepDuration time.Duration `yaml:"beep_duration"`
	// BeepGap is the silence between pulses.
	BeepGap time.Duration `yaml:"beep_gap"`
}

// Detector holds the inference model paths.
type Detector struct {
	// ModelPath is the network weights file (ONNX or darknet weights).
	ModelPath string `yaml:"model_path"`
	// ConfigPath is the optional network config file.
	ConfigPath string `yaml:"config_path"`
	// NamesPath is the class-names file, one label per line.
	NamesPath string `yaml:"names_path"`
	// Confidence is the minimum score to keep a detection.
	Confidence float64 `yaml:"confidence"`
	// MeshModelPath is the face-mesh ONNX model for the landmark pipeline.
	MeshModelPath string `yaml:"mesh_model_path"`
}

// Config holds every recognized option of the monitor binary.
type Config struct {
	// Mode selects the pipeline: video file or live camera.
	Mode Mode `yaml:"mode"`
	// VideoFile is the input path in video mode.
	VideoFile string `yaml:"video_file"`
	// CameraIndex is the capture device in camera mode.
	CameraIndex int `yaml:"camera_index"`
	// Behaviors is the ordered per-tag threshold table.
	Behaviors []Behavior `yaml:"behaviors"`
	// Geometry tunes the landmark pipeline.
	Geometry Geometry `yaml:"geometry"`
	// Tracking tunes the duration tracker.
	Tracking Tracking `yaml:"tracking"`
	// Alarm tunes the escalation.
	Alarm Alarm `yaml:"alarm"`
	// Detector points at the inference models.
	Detector Detector `yaml:"detector"`
	// OutputFile records the annotated stream when non-empty.
	OutputFile string `yaml:"output_file"`
	// ListenAddress enables the status dashboard when non-empty.
	ListenAddress string `yaml:"listen_address"`
	// ReportFile persists the finalized session summary when non-empty.
	ReportFile string `yaml:"report_file"`
}

const (
	// DefaultConfigFilename is the default filename for monitor settings.
	DefaultConfigFilename = "driver-sentry-settings.yaml"

	// DefaultFallbackFPS stands in when a stream reports no usable FPS.
	DefaultFallbackFPS = 30.0

	// DefaultRearmCooldown suppresses alert flicker on live streams.
	DefaultRearmCooldown = 2 * time.Second

	// DefaultEARThreshold marks eyes as closed below this aspect ratio.
	DefaultEARThreshold = 0.25

	// DefaultHeadThreshold is the normalized nose displacement limit.
	DefaultHeadThreshold = 0.18

	// DefaultNoseIndex is the nose-tip landmark in the face mesh.
	DefaultNoseIndex = 1

	// DefaultIntensityFloor is the siren volume on activation.
	DefaultIntensityFloor = 0.2

	// DefaultIntensityCeiling caps the siren volume.
	DefaultIntensityCeiling = 1.0

	// DefaultIntensityStep is the per-tick volume increase.
	DefaultIntensityStep = 0.05

	// DefaultEscalationTick is the escalation cadence.
	DefaultEscalationTick = 500 * time.Millisecond

	// DefaultFrequencyHz is the siren tone frequency.
	DefaultFrequencyHz = 1000

	// DefaultBeepDuration is the length of one siren pulse.
	DefaultBeepDuration = 500 * time.Millisecond

	// DefaultBeepGap is the silence between siren pulses.
	DefaultBeepGap = 400 * time.Millisecond

	// DefaultConfidence is the minimum detection score kept.
	DefaultConfidence = 0.3

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// eyeContourPoints is the required landmark count per eye contour.
	eyeContourPoints = 6
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNoBehaviors is returned when the threshold table is empty.
	errNoBehaviors = errors.New("at least one behavior threshold must be configured")
	// errDuplicateTag is returned when a tag appears twice in the table.
	errDuplicateTag = errors.New("behavior tags must be unique")
)

// Default eye contours follow the mediapipe face-mesh indexing.
var (
	defaultLeftEye  = []int{33, 160, 158, 133, 153, 144}
	defaultRightEye = []int{362, 385, 387, 263, 373, 380}
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Mode == "" {
		cfg.Mode = ModeVideo
	}

	if cfg.Mode != ModeVideo && cfg.Mode != ModeCamera {
		return fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	// The video file may arrive as a command-line override, so its presence
	// is checked when the capture source is opened, not here.
	if len(cfg.Behaviors) == 0 {
		return errNoBehaviors
	}

	seen := make(map[behavior.Tag]struct{}, len(cfg.Behaviors))

	for i := range cfg.Behaviors {
		entry := &cfg.Behaviors[i]
		if entry.Tag == "" {
			return fmt.Errorf("behavior %d: tag must not be empty", i)
		}

		if _, ok := seen[entry.Tag]; ok {
			return fmt.Errorf("%w: %q", errDuplicateTag, entry.Tag)
		}

		seen[entry.Tag] = struct{}{}

		if entry.Seconds < 0 || entry.Frames < 0 {
			return fmt.Errorf("behavior %q: thresholds must not be negative", entry.Tag)
		}
	}

	if cfg.ListenAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.ListenAddress); err != nil {
			return fmt.Errorf("invalid listen address: %w", err)
		}
	}

	validateGeometry(&cfg.Geometry)
	validateTracking(&cfg.Tracking, cfg.Mode)
	validateAlarm(&cfg.Alarm)

	if cfg.Detector.Confidence <= 0 {
		cfg.Detector.Confidence = DefaultConfidence
	}

	return nil
}

// validateGeometry fills landmark pipeline defaults.
func validateGeometry(g *Geometry) {
	if g.EARThreshold <= 0 {
		g.EARThreshold = DefaultEARThreshold
	}

	if g.YawThreshold <= 0 {
		g.YawThreshold = DefaultHeadThreshold
	}

	if g.PitchThreshold <= 0 {
		g.PitchThreshold = DefaultHeadThreshold
	}

	if len(g.LeftEye) != eyeContourPoints {
		g.LeftEye = append([]int(nil), defaultLeftEye...)
	}

	if len(g.RightEye) != eyeContourPoints {
		g.RightEye = append([]int(nil), defaultRightEye...)
	}

	if g.Nose <= 0 {
		g.Nose = DefaultNoseIndex
	}

	if g.EyesClosedTag == "" {
		g.EyesClosedTag = "Eyes Closed"
	}

	if g.HeadTurnedTag == "" {
		g.HeadTurnedTag = "Head Turned"
	}

	if g.HeadDownTag == "" {
		g.HeadDownTag = "Head Down"
	}
}

// validateTracking fills tracker defaults. Camera streams have no FPS hint,
// so they default to the consecutive-frame policy.
func validateTracking(t *Tracking, mode Mode) {
	if t.Policy == "" {
		if mode == ModeCamera {
			t.Policy = PolicyFrames
		} else {
			t.Policy = PolicySeconds
		}
	}

	if t.FallbackFPS <= 0 {
		t.FallbackFPS = DefaultFallbackFPS
	}

	if t.RearmCooldown <= 0 {
		t.RearmCooldown = DefaultRearmCooldown
	}
}

// validateAlarm fills escalation defaults.
func validateAlarm(a *Alarm) {
	if a.IntensityFloor <= 0 {
		a.IntensityFloor = DefaultIntensityFloor
	}

	if a.IntensityCeiling <= 0 || a.IntensityCeiling > 1 {
		a.IntensityCeiling = DefaultIntensityCeiling
	}

	if a.IntensityStep <= 0 {
		a.IntensityStep = DefaultIntensityStep
	}

	if a.Tick <= 0 {
		a.Tick = DefaultEscalationTick
	}

	if a.FrequencyHz <= 0 {
		a.FrequencyHz = DefaultFrequencyHz
	}

	if a.BeepDuration <= 0 {
		a.BeepDuration = DefaultBeepDuration
	}

	if a.BeepGap <= 0 {
		a.BeepGap = DefaultBeepGap
	}
}

// Tags returns the configured tags in table order.
func (c *Config) Tags() []behavior.Tag {
	tags := make([]behavior.Tag, 0, len(c.Behaviors))
	for i := range c.Behaviors {
		tags = append(tags, c.Behaviors[i].Tag)
	}

	return tags
}

// Limit returns the threshold for tag in the units of the active policy
// (seconds or frames). The second result is false for unknown tags.
func (c *Config) Limit(tag behavior.Tag) (float64, bool) {
	for i := range c.Behaviors {
		entry := &c.Behaviors[i]
		if entry.Tag != tag {
			continue
		}

		if c.Tracking.Policy == PolicyFrames {
			return float64(entry.Frames), true
		}

		return entry.Seconds, true
	}

	return 0, false
}
