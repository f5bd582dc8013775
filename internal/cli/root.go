// Package cli wires configuration, capture, classification and output into the
// postured command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"postured/internal/config"
)

// exitCodeError carries a non-zero exit status whose diagnostics were already
// written (as an event on stdout or a log line on stderr).
type exitCodeError struct{ code int }

func (e exitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// flagValues holds raw flag targets. Only flags the user set are applied on
// top of the file and environment layers.
type flagValues struct {
	configPath      string
	interval        float64
	camera          int
	sensitivity     float64
	verbose         bool
	format          string
	logLevel        string
	logFormat       string
	schedule        string
	captureBackend  string
	captureStrategy string
	captureDevice   string
	captureDir      string
	landmarksURL    string
	mqttBroker      string
	mqttTopic       string
	redisAddr       string
	redisStream     string
}

// buildRootCmd is a convenience for help-only fallbacks.
func buildRootCmd() *cobra.Command { return buildRootCmdWith(&config.Config{}) }

// buildRootCmdWith constructs the command tree. cfg is filled in by
// PersistentPreRunE before any RunE executes.
func buildRootCmdWith(cfg *config.Config) *cobra.Command {
	def := config.Default()
	fv := &flagValues{}
	root := &cobra.Command{
		Use:           "postured",
		Short:         "Stream posture events from a camera as JSON lines",
		Long:          "postured samples a camera at a fixed interval, classifies the user's posture\nand prints one JSON event per line on stdout. Diagnostics go to stderr.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&fv.configPath, "config", "", "Config file (.yaml, .yml, .json, .toml)")
	pf.Float64VarP(&fv.interval, "interval", "i", def.IntervalSeconds, "Sampling interval in seconds")
	pf.IntVarP(&fv.camera, "camera", "c", def.CameraIndex, "Camera device index")
	pf.Float64VarP(&fv.sensitivity, "sensitivity", "s", def.Sensitivity, "Posture sensitivity between 0.0 and 1.0")
	pf.BoolVarP(&fv.verbose, "verbose", "v", false, "Debug logging on stderr")
	pf.StringVar(&fv.format, "format", def.Format, "Output format: json|text")
	pf.StringVar(&fv.logLevel, "log-level", def.LogLevel, "Log level: debug|info|warn|error")
	pf.StringVar(&fv.logFormat, "log-format", def.LogFormat, "Log format: console|json")
	pf.StringVar(&fv.schedule, "schedule", def.Schedule, "Sampling schedule: fixed_rate|fixed_delay")
	pf.StringVar(&fv.captureBackend, "capture-backend", def.Capture.Backend, "Capture backend: auto|gocv|v4l2|file")
	pf.StringVar(&fv.captureStrategy, "capture-strategy", def.Capture.Strategy, "Capture strategy: hold|oneshot")
	pf.StringVar(&fv.captureDevice, "capture-device", "", "V4L2 device node (default /dev/video<camera>)")
	pf.StringVar(&fv.captureDir, "capture-dir", "", "Image directory for the file backend")
	pf.StringVar(&fv.landmarksURL, "landmarks-url", def.Landmarks.URL, "Base URL of the landmark detection service")
	pf.StringVar(&fv.mqttBroker, "mqtt-broker", "", "Publish events to this MQTT broker (host:port or tcp://...)")
	pf.StringVar(&fv.mqttTopic, "mqtt-topic", def.MQTT.Topic, "MQTT topic prefix")
	pf.StringVar(&fv.redisAddr, "redis-addr", "", "Append events to a Redis stream at this address")
	pf.StringVar(&fv.redisStream, "redis-stream", def.Redis.Stream, "Redis stream key")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		c, err := resolveConfig(cmd, fv)
		if err != nil {
			return err
		}
		*cfg = c
		return nil
	}
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return fnRunStream(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	root.AddCommand(newServeCmd(cfg), newDevicesCmd())
	return root
}

// resolveConfig layers defaults, the config file, POSTURED_* env and the flags
// the user actually set, then validates the result.
func resolveConfig(cmd *cobra.Command, fv *flagValues) (config.Config, error) {
	cfg := config.Default()
	if fv.configPath != "" {
		c, err := config.Load(fv.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	cfg.ApplyEnv()

	fl := cmd.Flags()
	set := func(name string, apply func()) {
		if fl.Changed(name) {
			apply()
		}
	}
	set("interval", func() { cfg.IntervalSeconds = fv.interval })
	set("camera", func() { cfg.CameraIndex = fv.camera })
	set("sensitivity", func() { cfg.Sensitivity = fv.sensitivity })
	set("verbose", func() { cfg.Verbose = fv.verbose })
	set("format", func() { cfg.Format = fv.format })
	set("log-level", func() { cfg.LogLevel = fv.logLevel })
	set("log-format", func() { cfg.LogFormat = fv.logFormat })
	set("schedule", func() { cfg.Schedule = fv.schedule })
	set("capture-backend", func() { cfg.Capture.Backend = fv.captureBackend })
	set("capture-strategy", func() { cfg.Capture.Strategy = fv.captureStrategy })
	set("capture-device", func() { cfg.Capture.Device = fv.captureDevice })
	set("capture-dir", func() { cfg.Capture.Dir = fv.captureDir })
	set("landmarks-url", func() { cfg.Landmarks.URL = fv.landmarksURL })
	set("mqtt-broker", func() { cfg.MQTT.Broker = fv.mqttBroker })
	set("mqtt-topic", func() { cfg.MQTT.Topic = fv.mqttTopic })
	set("redis-addr", func() { cfg.Redis.Addr = fv.redisAddr })
	set("redis-stream", func() { cfg.Redis.Stream = fv.redisStream })

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// MainWithArgs runs the CLI with args (without the program name) and returns
// the process exit code. ctx cancellation is treated as a shutdown request.
func MainWithArgs(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := &config.Config{}
	root := buildRootCmdWith(cfg)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		var ec exitCodeError
		if errors.As(err, &ec) {
			return ec.code
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
