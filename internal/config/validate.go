package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var maxIntervalSeconds = float64(math.MaxInt64) / float64(time.Second)

// Validate checks value ranges and enumerations. Messages name the flag a user
// would change.
func (c Config) Validate() error {
	if !(c.IntervalSeconds > 0) {
		return fmt.Errorf("--interval must be positive")
	}
	// The interval must survive conversion to a time.Duration.
	if c.IntervalSeconds >= maxIntervalSeconds || c.Interval() <= 0 {
		return fmt.Errorf("--interval %g is out of range", c.IntervalSeconds)
	}
	if c.CameraIndex < 0 {
		return fmt.Errorf("--camera must be non-negative")
	}
	if c.Sensitivity < 0 || c.Sensitivity > 1 {
		return fmt.Errorf("--sensitivity must be between 0.0 and 1.0")
	}
	if err := oneOf("--format", c.Format, "json", "text"); err != nil {
		return err
	}
	if err := oneOf("--schedule", c.Schedule, "fixed_rate", "fixed_delay"); err != nil {
		return err
	}
	if err := oneOf("--capture-backend", c.Capture.Backend, "auto", "gocv", "v4l2", "file"); err != nil {
		return err
	}
	if err := oneOf("--capture-strategy", c.Capture.Strategy, "hold", "oneshot"); err != nil {
		return err
	}
	if c.Capture.Backend == "file" && strings.TrimSpace(c.Capture.Dir) == "" {
		return fmt.Errorf("--capture-dir is required with the file backend")
	}
	if c.Capture.GrabIntervalMS < 0 {
		return fmt.Errorf("capture.grab_interval_ms must be non-negative")
	}
	if strings.TrimSpace(c.Landmarks.URL) == "" {
		return fmt.Errorf("--landmarks-url is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}
	return nil
}

func oneOf(flag, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s (got %q)", flag, strings.Join(allowed, "|"), v)
}
