package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_MissingPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixate.toml")
	body := `
[log]
level = "debug"

[camera]
device = 2

[uncertainty]
window = 9

[policy]
exposure_levels = [-10.0, -5.0]
zoom_crop = 0.25

[control]
recovery_threshold = 0.7
interval_ms = 50

[serial]
device = "/dev/ttyUSB0"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Overridden values.
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Camera.Device)
	assert.Equal(t, 9, cfg.Uncertainty.Window)
	assert.Equal(t, []float64{-10, -5}, cfg.Policy.ExposureLevels)
	assert.Equal(t, 0.25, cfg.Policy.ZoomCrop)
	assert.Equal(t, 0.7, cfg.Control.RecoveryThreshold)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Device)

	// Untouched sections keep their defaults.
	def := Default()
	assert.Equal(t, def.Camera.Width, cfg.Camera.Width)
	assert.Equal(t, def.Control.DebounceTicks, cfg.Control.DebounceTicks)
	assert.Equal(t, def.Uncertainty.DetectionWeight, cfg.Uncertainty.DetectionWeight)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50*time.Millisecond, cfg.ControlConfig().Interval)
}

func TestLoad_BadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("log = {"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/fixate.toml")
	assert.Error(t, err)
}

func TestValidate_RejectsBrokenSections(t *testing.T) {
	cfg := Default()
	cfg.Uncertainty.DetectionWeight = 0.9 // weights no longer sum to 1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Policy.ExposureLevels = nil
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Control.DebounceTicks = 0
	assert.Error(t, cfg.Validate())
}

func TestMappersRoundTrip(t *testing.T) {
	cfg := Default()

	u := cfg.UncertaintyConfig()
	assert.Equal(t, cfg.Uncertainty.Window, u.Window)

	p := cfg.PolicyConfig()
	assert.Equal(t, cfg.Policy.ExposureLevels, p.ExposureLevels)

	c := cfg.ControlConfig()
	assert.Equal(t, cfg.Control.MaxIncidentCycles, c.MaxIncidentCycles)
	assert.Equal(t, time.Duration(cfg.Control.IntervalMs)*time.Millisecond, c.Interval)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FIXATE_TEST_INT", "7")
	assert.Equal(t, 7, EnvInt("FIXATE_TEST_INT", 1))
	assert.Equal(t, 1, EnvInt("FIXATE_TEST_INT_UNSET", 1))
	t.Setenv("FIXATE_TEST_STR", "abc")
	assert.Equal(t, "abc", EnvString("FIXATE_TEST_STR", "def"))
	assert.Equal(t, "def", EnvString("FIXATE_TEST_STR_UNSET", "def"))
}
