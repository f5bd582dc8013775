package config

import (
	"fmt"
	"os"
	"strings"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "POSTURED_"

// ApplyEnv overrides fields from POSTURED_* environment variables. Unset or
// unparsable variables leave the current value in place.
func (c *Config) ApplyEnv() {
	c.IntervalSeconds = envFloat(EnvPrefix+"INTERVAL", c.IntervalSeconds)
	c.CameraIndex = envInt(EnvPrefix+"CAMERA", c.CameraIndex)
	c.Sensitivity = envFloat(EnvPrefix+"SENSITIVITY", c.Sensitivity)
	c.Verbose = envBool(EnvPrefix+"VERBOSE", c.Verbose)
	c.Format = envStr(EnvPrefix+"FORMAT", c.Format)
	c.LogLevel = envStr(EnvPrefix+"LOG_LEVEL", c.LogLevel)
	c.LogFormat = envStr(EnvPrefix+"LOG_FORMAT", c.LogFormat)
	c.Schedule = envStr(EnvPrefix+"SCHEDULE", c.Schedule)

	c.Capture.Backend = envStr(EnvPrefix+"CAPTURE_BACKEND", c.Capture.Backend)
	c.Capture.Strategy = envStr(EnvPrefix+"CAPTURE_STRATEGY", c.Capture.Strategy)
	c.Capture.Device = envStr(EnvPrefix+"CAPTURE_DEVICE", c.Capture.Device)
	c.Capture.Dir = envStr(EnvPrefix+"CAPTURE_DIR", c.Capture.Dir)

	c.Landmarks.URL = envStr(EnvPrefix+"LANDMARKS_URL", c.Landmarks.URL)
	c.Landmarks.TimeoutMS = envInt(EnvPrefix+"LANDMARKS_TIMEOUT_MS", c.Landmarks.TimeoutMS)

	c.Serve.Addr = envStr(EnvPrefix+"ADDR", c.Serve.Addr)

	c.MQTT.Broker = envStr(EnvPrefix+"MQTT_BROKER", c.MQTT.Broker)
	c.MQTT.Topic = envStr(EnvPrefix+"MQTT_TOPIC", c.MQTT.Topic)
	c.MQTT.Username = envStr(EnvPrefix+"MQTT_USERNAME", c.MQTT.Username)
	c.MQTT.Password = envStr(EnvPrefix+"MQTT_PASSWORD", c.MQTT.Password)

	c.Redis.Addr = envStr(EnvPrefix+"REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = envStr(EnvPrefix+"REDIS_PASSWORD", c.Redis.Password)
	c.Redis.Stream = envStr(EnvPrefix+"REDIS_STREAM", c.Redis.Stream)
}

// Env helpers
func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	s := strings.ToLower(v)
	return s == "1" || s == "true" || s == "yes"
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			return f
		}
	}
	return def
}
