package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"postured/internal/common/fsutil"
)

// Config holds runtime parameters for the daemon.
// Default() provides the baseline; files, env and flags override it in that order.
type Config struct {
	IntervalSeconds float64 `json:"interval_seconds" yaml:"interval_seconds" toml:"interval_seconds"`
	CameraIndex     int     `json:"camera_index" yaml:"camera_index" toml:"camera_index"`
	Sensitivity     float64 `json:"sensitivity" yaml:"sensitivity" toml:"sensitivity"`
	Verbose         bool    `json:"verbose" yaml:"verbose" toml:"verbose"`
	Format          string  `json:"format" yaml:"format" toml:"format"`
	LogLevel        string  `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat       string  `json:"log_format" yaml:"log_format" toml:"log_format"`
	// Schedule is fixed_rate (interval measured from tick start) or fixed_delay.
	Schedule string `json:"schedule" yaml:"schedule" toml:"schedule"`

	Capture   CaptureConfig   `json:"capture" yaml:"capture" toml:"capture"`
	Landmarks LandmarksConfig `json:"landmarks" yaml:"landmarks" toml:"landmarks"`
	Serve     ServeConfig     `json:"serve" yaml:"serve" toml:"serve"`
	MQTT      MQTTConfig      `json:"mqtt" yaml:"mqtt" toml:"mqtt"`
	Redis     RedisConfig     `json:"redis" yaml:"redis" toml:"redis"`
}

// CaptureConfig selects and tunes the camera backend.
type CaptureConfig struct {
	Backend        string `json:"backend" yaml:"backend" toml:"backend"`
	Strategy       string `json:"strategy" yaml:"strategy" toml:"strategy"`
	Device         string `json:"device" yaml:"device" toml:"device"`
	Dir            string `json:"dir" yaml:"dir" toml:"dir"`
	Width          int    `json:"width" yaml:"width" toml:"width"`
	Height         int    `json:"height" yaml:"height" toml:"height"`
	GrabIntervalMS int    `json:"grab_interval_ms" yaml:"grab_interval_ms" toml:"grab_interval_ms"`
}

// LandmarksConfig points at the landmark detection service.
type LandmarksConfig struct {
	URL       string `json:"url" yaml:"url" toml:"url"`
	TimeoutMS int    `json:"timeout_ms" yaml:"timeout_ms" toml:"timeout_ms"`
}

// ServeConfig tunes the HTTP stream server.
type ServeConfig struct {
	Addr        string   `json:"addr" yaml:"addr" toml:"addr"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// MQTTConfig enables the MQTT event sink when Broker is set.
type MQTTConfig struct {
	Broker   string `json:"broker" yaml:"broker" toml:"broker"`
	ClientID string `json:"client_id" yaml:"client_id" toml:"client_id"`
	Username string `json:"username" yaml:"username" toml:"username"`
	Password string `json:"password" yaml:"password" toml:"password"`
	Topic    string `json:"topic" yaml:"topic" toml:"topic"`
	QoS      int    `json:"qos" yaml:"qos" toml:"qos"`
}

// RedisConfig enables the Redis Streams event sink when Addr is set.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr"`
	Password string `json:"password" yaml:"password" toml:"password"`
	DB       int    `json:"db" yaml:"db" toml:"db"`
	Stream   string `json:"stream" yaml:"stream" toml:"stream"`
	MaxLen   int64  `json:"max_len" yaml:"max_len" toml:"max_len"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		IntervalSeconds: 10.0,
		CameraIndex:     0,
		Sensitivity:     0.4,
		Format:          "json",
		LogLevel:        "warn",
		LogFormat:       "console",
		Schedule:        "fixed_rate",
		Capture: CaptureConfig{
			Backend:        "auto",
			Strategy:       "hold",
			GrabIntervalMS: 5,
		},
		Landmarks: LandmarksConfig{
			URL:       "http://127.0.0.1:8765",
			TimeoutMS: 5000,
		},
		Serve: ServeConfig{Addr: ":8090"},
		MQTT: MQTTConfig{
			ClientID: "postured",
			Topic:    "postured/events",
		},
		Redis: RedisConfig{
			Stream: "postured:events",
			MaxLen: 10000,
		},
	}
}

// Interval returns the sampling interval as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds * float64(time.Second))
}

// Load reads a configuration file on top of Default() based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
