package monitor

import (
	"time"

	"github.com/rs/zerolog"

	"postured/internal/capture"
	"postured/internal/posture"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultInterval = 10 * time.Second
)

// Config encapsulates all tunables for Monitor construction.
type Config struct {
	// Opener provides the camera device; required.
	Opener capture.Opener
	// Classifier turns frames into verdicts; required.
	Classifier  posture.Classifier
	Interval    time.Duration
	CameraIndex int
	// Sensitivity is informational here (the classifier owns the threshold)
	// and is reported by Status.
	Sensitivity  float64
	Strategy     capture.Strategy
	GrabInterval time.Duration
	Schedule     Schedule
	Logger       *zerolog.Logger
	Publisher    EventPublisher
}

// NewWithConfig constructs a Monitor from Config.
func NewWithConfig(cfg Config) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Strategy == "" {
		cfg.Strategy = capture.StrategyHold
	}
	if cfg.Schedule == "" {
		cfg.Schedule = FixedRate
	}
	lg := zerolog.Nop()
	if cfg.Logger != nil {
		lg = cfg.Logger.With().Str("component", "monitor").Logger()
	}
	m := &Monitor{
		subs:        make(map[string]*Subscription),
		classifier:  cfg.Classifier,
		interval:    cfg.Interval,
		schedule:    cfg.Schedule,
		cameraIndex: cfg.CameraIndex,
		sensitivity: cfg.Sensitivity,
		pub:         cfg.Publisher,
		log:         lg,
		startTime:   time.Now(),
	}
	if m.pub == nil {
		m.pub = noopPublisher{}
	}
	m.res = capture.NewResource(cfg.Opener, capture.Options{
		Index:        cfg.CameraIndex,
		Strategy:     cfg.Strategy,
		GrabInterval: cfg.GrabInterval,
		Logger:       cfg.Logger,
	})
	return m
}
