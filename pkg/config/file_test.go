package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wowitsjack/cool-little-battery/pkg/suspend"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "monitor.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "does-not-exist.conf"))
	require.NoError(t, err)

	assert.Equal(t, 20, f.WarningLevel())
	assert.Equal(t, 10, f.CriticalLevel())
	assert.Equal(t, 30, f.CheckIntervalSeconds())
	assert.Equal(t, 30, f.AlertTimeoutSeconds())
	assert.True(t, f.ForceSuspend())
	assert.True(t, f.ImpossibleAlerts())
	assert.Equal(t, suspend.Systemd, f.SuspendMethod())
}

func TestLoadParsesKnownKeys(t *testing.T) {
	path := writeConfig(t, `# comment line
warning_level=25
critical_level = 15
check_interval=60
alert_timeout=10
force_suspend=0
impossible_alerts=no
suspend_method=2
icon_low=battery-empty
`)
	f, err := NewFile(path)
	require.NoError(t, err)

	assert.Equal(t, 25, f.WarningLevel())
	assert.Equal(t, 15, f.CriticalLevel())
	assert.Equal(t, 60, f.CheckIntervalSeconds())
	assert.Equal(t, 10, f.AlertTimeoutSeconds())
	assert.False(t, f.ForceSuspend())
	assert.False(t, f.ImpossibleAlerts())
	assert.Equal(t, suspend.DBus, f.SuspendMethod())
	assert.Equal(t, "battery-empty", f.IconLow())
	// Keys not present in the file keep their defaults.
	assert.Equal(t, "battery-caution-charging", f.IconCharging())
}

func TestLoadOutOfRangeFallsBackPerField(t *testing.T) {
	path := writeConfig(t, `warning_level=150
critical_level=5
check_interval=0
suspend_method=9
`)
	f, err := NewFile(path)
	require.NoError(t, err)

	// Only the out-of-range fields fall back; valid fields are kept.
	assert.Equal(t, 20, f.WarningLevel())
	assert.Equal(t, 5, f.CriticalLevel())
	assert.Equal(t, 30, f.CheckIntervalSeconds())
	assert.Equal(t, suspend.Systemd, f.SuspendMethod())
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	path := writeConfig(t, `warning_level=abc
force_suspend=maybe
not a key value line
critical_level=7
`)
	f, err := NewFile(path)
	require.NoError(t, err)

	assert.Equal(t, 20, f.WarningLevel())
	assert.True(t, f.ForceSuspend())
	assert.Equal(t, 7, f.CriticalLevel())
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	path := writeConfig(t, `some_future_key=42
warning_level=30
`)
	f, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, 30, f.WarningLevel())
}

func TestLoadClampsInvertedLevels(t *testing.T) {
	path := writeConfig(t, `warning_level=10
critical_level=50
`)
	f, err := NewFile(path)
	require.NoError(t, err)

	assert.Equal(t, 10, f.WarningLevel())
	assert.Equal(t, 9, f.CriticalLevel(), "critical must end up below warning")
}

func TestSetLevelsClamp(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "missing.conf"))
	require.NoError(t, err)

	f.SetCriticalLevel(40)
	assert.Equal(t, 19, f.CriticalLevel(), "critical above warning is pulled back below it")

	f.SetWarningLevel(50)
	f.SetCriticalLevel(40)
	assert.Equal(t, 40, f.CriticalLevel())
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "monitor.conf")

	f, err := NewFile(path)
	require.NoError(t, err)
	f.SetWarningLevel(35)
	f.SetCriticalLevel(12)
	f.SetCheckIntervalSeconds(45)
	f.SetForceSuspend(false)
	f.SetSuspendMethod(suspend.PmUtils)
	require.NoError(t, f.Save())

	g, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, 35, g.WarningLevel())
	assert.Equal(t, 12, g.CriticalLevel())
	assert.Equal(t, 45, g.CheckIntervalSeconds())
	assert.False(t, g.ForceSuspend())
	assert.Equal(t, suspend.PmUtils, g.SuspendMethod())
	// Untouched fields survive as defaults.
	assert.Equal(t, 30, g.AlertTimeoutSeconds())
	assert.True(t, g.ImpossibleAlerts())
}

func TestSaveWritesCompatibleDialect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.conf")

	f, err := NewFile(path)
	require.NoError(t, err)
	f.SetForceSuspend(false)
	require.NoError(t, f.Save())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(b)
	assert.Contains(t, content, "warning_level=20")
	assert.Contains(t, content, "force_suspend=0", "booleans are written as 1/0")
	assert.Contains(t, content, "suspend_method=0")
}

func TestRawFileConfigSnapshot(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "missing.conf"))
	require.NoError(t, err)
	f.SetWarningLevel(33)

	raw, err := NewRawFileConfigFromConfig(f)
	require.NoError(t, err)
	require.NotNil(t, raw.WarningLevel)
	assert.Equal(t, 33, *raw.WarningLevel)

	g := NewFileFromConfig(raw, "")
	assert.Equal(t, 33, g.WarningLevel())

	_, err = NewRawFileConfigFromConfig(nil)
	assert.Error(t, err)
}
