// Package config loads the go-fixate configuration file and maps it
// onto the per-package tuning structs. Every threshold the loop uses is
// a file-level tunable; the defaults match the packages' DefaultConfig
// functions.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/avishur/go-fixate/pkg/control"
	"github.com/avishur/go-fixate/pkg/policy"
	"github.com/avishur/go-fixate/pkg/uncertainty"
)

// Config is the full configuration file surface (TOML).
type Config struct {
	Log    Log    `toml:"log"`
	Camera Camera `toml:"camera"`
	Vision Vision `toml:"vision"`

	Uncertainty Uncertainty `toml:"uncertainty"`
	Policy      Policy      `toml:"policy"`
	Control     Control     `toml:"control"`

	Serial Serial `toml:"serial"`
	Web    Web    `toml:"web"`
}

// Log configures the structured logger.
type Log struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// Camera configures the capture device.
type Camera struct {
	Device      int `toml:"device"`
	Width       int `toml:"width"`
	Height      int `toml:"height"`
	JPEGQuality int `toml:"jpeg_quality"`
}

// Vision configures the marker oracle's quality proxy range.
type Vision struct {
	AreaLow  float64 `toml:"area_low"`
	AreaHigh float64 `toml:"area_high"`
}

// Uncertainty configures the estimator.
type Uncertainty struct {
	DetectionWeight float64 `toml:"w_det"`
	SharpnessWeight float64 `toml:"w_sharp"`
	Window          int     `toml:"window"`
	SharpnessLow    float64 `toml:"sharpness_low"`
	SharpnessHigh   float64 `toml:"sharpness_high"`
}

// Policy configures the action space.
type Policy struct {
	WindowSize     int       `toml:"window_size"`
	ExposureLevels []float64 `toml:"exposure_levels"`
	ZoomCrop       float64   `toml:"zoom_crop"`
}

// Control configures the state machine and tick loop.
type Control struct {
	RecoveryThreshold   float64 `toml:"recovery_threshold"`
	DebounceTicks       int     `toml:"debounce_ticks"`
	DwellTicks          int     `toml:"dwell_ticks"`
	SearchConfirmTicks  int     `toml:"search_confirm_ticks"`
	SearchMaxDwellTicks int     `toml:"search_max_dwell_ticks"`
	MaxIncidentCycles   int     `toml:"max_incident_cycles"`
	SettleTicks         int     `toml:"settle_ticks"`
	BrightnessRatio     float64 `toml:"brightness_ratio"`
	BrightnessFloor     float64 `toml:"brightness_floor"`
	IntervalMs          int     `toml:"interval_ms"`
	SampleEvery         int     `toml:"sample_every"`
}

// Serial configures the pan-tilt link. An empty device disables it and
// actions go to the software camera sink instead.
type Serial struct {
	Device string `toml:"device"`
	Baud   int    `toml:"baud"`
}

// Web configures the dashboard server. An empty addr disables it.
type Web struct {
	Addr string `toml:"addr"`
}

// Default returns the full default configuration.
func Default() Config {
	u := uncertainty.DefaultConfig()
	p := policy.DefaultConfig()
	c := control.DefaultConfig()

	return Config{
		Log:    Log{Level: "info"},
		Camera: Camera{Device: 0, Width: 1280, Height: 720, JPEGQuality: 85},
		Vision: Vision{AreaLow: 800, AreaHigh: 100000},
		Uncertainty: Uncertainty{
			DetectionWeight: u.DetectionWeight,
			SharpnessWeight: u.SharpnessWeight,
			Window:          u.Window,
			SharpnessLow:    u.SharpnessLow,
			SharpnessHigh:   u.SharpnessHigh,
		},
		Policy: Policy{
			WindowSize:     p.WindowSize,
			ExposureLevels: p.ExposureLevels,
			ZoomCrop:       p.ZoomCrop,
		},
		Control: Control{
			RecoveryThreshold:   c.RecoveryThreshold,
			DebounceTicks:       c.DebounceTicks,
			DwellTicks:          c.DwellTicks,
			SearchConfirmTicks:  c.SearchConfirmTicks,
			SearchMaxDwellTicks: c.SearchMaxDwellTicks,
			MaxIncidentCycles:   c.MaxIncidentCycles,
			SettleTicks:         c.SettleTicks,
			BrightnessRatio:     c.BrightnessRatio,
			BrightnessFloor:     c.BrightnessFloor,
			IntervalMs:          int(c.Interval / time.Millisecond),
			SampleEvery:         c.SampleEvery,
		},
		Serial: Serial{Baud: 115200},
		Web:    Web{Addr: ":8090"},
	}
}

// Load reads path over the defaults. A missing path returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// UncertaintyConfig maps onto the estimator tuning.
func (c Config) UncertaintyConfig() uncertainty.Config {
	return uncertainty.Config{
		DetectionWeight: c.Uncertainty.DetectionWeight,
		SharpnessWeight: c.Uncertainty.SharpnessWeight,
		Window:          c.Uncertainty.Window,
		SharpnessLow:    c.Uncertainty.SharpnessLow,
		SharpnessHigh:   c.Uncertainty.SharpnessHigh,
	}
}

// PolicyConfig maps onto the action space tuning.
func (c Config) PolicyConfig() policy.Config {
	return policy.Config{
		WindowSize:     c.Policy.WindowSize,
		ExposureLevels: c.Policy.ExposureLevels,
		ZoomCrop:       c.Policy.ZoomCrop,
	}
}

// ControlConfig maps onto the state machine tuning.
func (c Config) ControlConfig() control.Config {
	return control.Config{
		RecoveryThreshold:   c.Control.RecoveryThreshold,
		DebounceTicks:       c.Control.DebounceTicks,
		DwellTicks:          c.Control.DwellTicks,
		SearchConfirmTicks:  c.Control.SearchConfirmTicks,
		SearchMaxDwellTicks: c.Control.SearchMaxDwellTicks,
		MaxIncidentCycles:   c.Control.MaxIncidentCycles,
		SettleTicks:         c.Control.SettleTicks,
		BrightnessRatio:     c.Control.BrightnessRatio,
		BrightnessFloor:     c.Control.BrightnessFloor,
		Interval:            time.Duration(c.Control.IntervalMs) * time.Millisecond,
		SampleEvery:         c.Control.SampleEvery,
	}
}

// Validate checks every section for consistency.
func (c Config) Validate() error {
	if err := c.UncertaintyConfig().Validate(); err != nil {
		return err
	}
	if err := c.PolicyConfig().Validate(); err != nil {
		return err
	}
	return c.ControlConfig().Validate()
}

// EnvInt reads an integer override from the environment.
func EnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// EnvString reads a string override from the environment.
func EnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
