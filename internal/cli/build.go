package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"postured/internal/capture"
	"postured/internal/config"
	"postured/internal/monitor"
	"postured/internal/posture"
	"postured/internal/stream"
)

// Function variables so tests can substitute hardware and network edges.
var (
	fnNewOpener   = capture.NewOpener
	fnNewDetector = func(url string, timeout time.Duration) posture.Detector {
		return posture.NewRemoteDetector(url, timeout)
	}
	fnNewMQTTSink = func(cfg stream.MQTTConfig, lg *zerolog.Logger) (stream.Sink, error) {
		return stream.NewMQTTSink(cfg, lg)
	}
	fnNewRedisSink = func(ctx context.Context, cfg stream.RedisConfig) (stream.Sink, error) {
		return stream.NewRedisSink(ctx, cfg)
	}
	fnRunStream = runStream
	fnServe     = serve
)

// newLogger returns the stderr logger. --verbose forces debug.
func newLogger(cfg config.Config, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		lvl = zerolog.WarnLevel
	}
	if cfg.Verbose {
		lvl = zerolog.DebugLevel
	}
	if cfg.LogFormat != "json" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// logPublisher forwards monitor lifecycle events to the debug log.
type logPublisher struct{ log zerolog.Logger }

func (p logPublisher) Publish(e monitor.Event) {
	ev := p.log.Debug().Str("event", e.Name)
	if e.SubscriberID != "" {
		ev = ev.Str("subscriber", e.SubscriberID)
	}
	ev.Fields(e.Fields).Msg("monitor event")
}

// buildMonitor assembles the capture backend, classifier and monitor for cfg.
func buildMonitor(cfg config.Config, lg *zerolog.Logger) (*monitor.Monitor, error) {
	strategy, err := capture.ParseStrategy(cfg.Capture.Strategy)
	if err != nil {
		return nil, err
	}
	schedule, err := monitor.ParseSchedule(cfg.Schedule)
	if err != nil {
		return nil, err
	}
	opener, err := fnNewOpener(capture.BackendConfig{
		Backend: cfg.Capture.Backend,
		Device:  cfg.Capture.Device,
		Dir:     cfg.Capture.Dir,
		Width:   cfg.Capture.Width,
		Height:  cfg.Capture.Height,
	})
	if err != nil {
		return nil, err
	}
	det := fnNewDetector(cfg.Landmarks.URL, time.Duration(cfg.Landmarks.TimeoutMS)*time.Millisecond)
	lg.Debug().
		Str("backend", capture.ResolvedBackend(cfg.Capture.Backend)).
		Str("strategy", string(strategy)).
		Str("landmarks", cfg.Landmarks.URL).
		Dur("interval", cfg.Interval()).
		Msg("monitor configured")
	return monitor.NewWithConfig(monitor.Config{
		Opener:       opener,
		Classifier:   posture.NewLandmarkClassifier(det, cfg.Sensitivity),
		Interval:     cfg.Interval(),
		CameraIndex:  cfg.CameraIndex,
		Sensitivity:  cfg.Sensitivity,
		Strategy:     strategy,
		GrabInterval: time.Duration(cfg.Capture.GrabIntervalMS) * time.Millisecond,
		Schedule:     schedule,
		Logger:       lg,
		Publisher:    logPublisher{log: *lg},
	}), nil
}

// buildSinks connects the configured event sinks. It returns nil when none
// are configured so callers can leave Runner.Sink unset.
func buildSinks(ctx context.Context, cfg config.Config, lg *zerolog.Logger) (*stream.Fanout, error) {
	var sinks []stream.Sink
	closeAll := func() {
		for _, s := range sinks {
			_ = s.Close()
		}
	}
	if cfg.MQTT.Broker != "" {
		s, err := fnNewMQTTSink(stream.MQTTConfig{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			Topic:    cfg.MQTT.Topic,
			QoS:      byte(cfg.MQTT.QoS),
		}, lg)
		if err != nil {
			return nil, fmt.Errorf("mqtt sink: %w", err)
		}
		sinks = append(sinks, s)
	}
	if cfg.Redis.Addr != "" {
		s, err := fnNewRedisSink(ctx, stream.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Stream:   cfg.Redis.Stream,
			MaxLen:   cfg.Redis.MaxLen,
		})
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("redis sink: %w", err)
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	return stream.NewFanout(lg, sinks...), nil
}
