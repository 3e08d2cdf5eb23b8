package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/wowitsjack/cool-little-battery/pkg/suspend"
	"github.com/wowitsjack/cool-little-battery/pkg/utils/ptr"
)

var defaultFileConfig = &RawFileConfig{
	WarningLevel:     ptr.To(20),
	CriticalLevel:    ptr.To(10),
	CheckInterval:    ptr.To(30),
	AlertTimeout:     ptr.To(30),
	ForceSuspend:     ptr.To(true),
	ImpossibleAlerts: ptr.To(true),
	SuspendMethod:    ptr.To(int(suspend.Systemd)),
	IconCharging:     ptr.To("battery-caution-charging"),
	IconBattery:      ptr.To("battery-good"),
	IconLow:          ptr.To("battery-caution"),
}

var _ Config = &File{}

// File is the on-disk configuration store. The format is the line-oriented
// key=value dialect used by the original monitor, so existing config files
// keep working.
type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

// RawFileConfig holds the raw parsed fields. Nil means "not set in the
// file"; the getter then falls back to the field's default.
type RawFileConfig struct {
	WarningLevel     *int    `json:"warning_level,omitempty"`
	CriticalLevel    *int    `json:"critical_level,omitempty"`
	CheckInterval    *int    `json:"check_interval,omitempty"`
	AlertTimeout     *int    `json:"alert_timeout,omitempty"`
	ForceSuspend     *bool   `json:"force_suspend,omitempty"`
	ImpossibleAlerts *bool   `json:"impossible_alerts,omitempty"`
	SuspendMethod    *int    `json:"suspend_method,omitempty"`
	IconCharging     *string `json:"icon_charging,omitempty"`
	IconBattery      *string `json:"icon_battery,omitempty"`
	IconLow          *string `json:"icon_low,omitempty"`
}

// DefaultPath returns the per-user config file path.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "/tmp/cool-little-battery-monitor.conf"
	}
	return filepath.Join(home, ".config", "cool-little-battery-monitor.conf")
}

// NewFile loads the config file at configPath. A missing file yields
// defaults for every field.
func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	if err := f.Load(); err != nil {
		return nil, err
	}
	return f, nil
}

// NewFileFromConfig wraps an already-parsed raw config. Used by clients
// that received the config over the API.
func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}
	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
	f.clampLevels()
	return f
}

// NewRawFileConfigFromConfig snapshots a Config into raw form, e.g. for
// serving over the API.
func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}
	return &RawFileConfig{
		WarningLevel:     ptr.To(c.WarningLevel()),
		CriticalLevel:    ptr.To(c.CriticalLevel()),
		CheckInterval:    ptr.To(c.CheckIntervalSeconds()),
		AlertTimeout:     ptr.To(c.AlertTimeoutSeconds()),
		ForceSuspend:     ptr.To(c.ForceSuspend()),
		ImpossibleAlerts: ptr.To(c.ImpossibleAlerts()),
		SuspendMethod:    ptr.To(int(c.SuspendMethod())),
		IconCharging:     ptr.To(c.IconCharging()),
		IconBattery:      ptr.To(c.IconBattery()),
		IconLow:          ptr.To(c.IconLow()),
	}, nil
}

func (f *File) WarningLevel() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.c.WarningLevel != nil {
		return *f.c.WarningLevel
	}
	return *defaultFileConfig.WarningLevel
}

func (f *File) CriticalLevel() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.c.CriticalLevel != nil {
		return *f.c.CriticalLevel
	}
	return *defaultFileConfig.CriticalLevel
}

func (f *File) CheckIntervalSeconds() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.c.CheckInterval != nil {
		return *f.c.CheckInterval
	}
	return *defaultFileConfig.CheckInterval
}

func (f *File) AlertTimeoutSeconds() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.c.AlertTimeout != nil {
		return *f.c.AlertTimeout
	}
	return *defaultFileConfig.AlertTimeout
}

func (f *File) ForceSuspend() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.c.ForceSuspend != nil {
		return *f.c.ForceSuspend
	}
	return *defaultFileConfig.ForceSuspend
}

func (f *File) ImpossibleAlerts() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.c.ImpossibleAlerts != nil {
		return *f.c.ImpossibleAlerts
	}
	return *defaultFileConfig.ImpossibleAlerts
}

func (f *File) SuspendMethod() suspend.Method {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.c.SuspendMethod != nil {
		return suspend.Method(*f.c.SuspendMethod)
	}
	return suspend.Method(*defaultFileConfig.SuspendMethod)
}

func (f *File) IconCharging() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.c.IconCharging != nil {
		return *f.c.IconCharging
	}
	return *defaultFileConfig.IconCharging
}

func (f *File) IconBattery() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.c.IconBattery != nil {
		return *f.c.IconBattery
	}
	return *defaultFileConfig.IconBattery
}

func (f *File) IconLow() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.c.IconLow != nil {
		return *f.c.IconLow
	}
	return *defaultFileConfig.IconLow
}

func (f *File) SetWarningLevel(i int) {
	f.mu.Lock()
	f.c.WarningLevel = &i
	f.mu.Unlock()
	f.clampLevels()
}

func (f *File) SetCriticalLevel(i int) {
	f.mu.Lock()
	f.c.CriticalLevel = &i
	f.mu.Unlock()
	f.clampLevels()
}

func (f *File) SetCheckIntervalSeconds(i int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.CheckInterval = &i
}

func (f *File) SetAlertTimeoutSeconds(i int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.AlertTimeout = &i
}

func (f *File) SetForceSuspend(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ForceSuspend = &b
}

func (f *File) SetImpossibleAlerts(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ImpossibleAlerts = &b
}

func (f *File) SetSuspendMethod(m suspend.Method) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.SuspendMethod = ptr.To(int(m))
}

// fieldRange describes the accepted range for an integer field.
type fieldRange struct {
	min, max int
}

var intRanges = map[string]fieldRange{
	"warning_level":  {1, 100},
	"critical_level": {1, 100},
	"check_interval": {1, 86400},
	"alert_timeout":  {1, 3600},
	"suspend_method": {int(suspend.Systemd), int(suspend.Kernel)},
}

// Load reads the config file. A missing file or an empty file yields the
// defaults. Unknown keys are ignored; malformed or out-of-range values
// fall back to that field's default, leaving the rest intact.
func (f *File) Load() error {
	f.mu.Lock()

	b, err := os.ReadFile(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Infof("no config file at %s, using defaults", f.filepath)
			f.c = &RawFileConfig{}
			f.mu.Unlock()
			return nil
		}
		f.mu.Unlock()
		return pkgerrors.Wrapf(err, "failed to read config file %s", f.filepath)
	}

	conf := &RawFileConfig{}
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		setRawField(conf, key, value)
	}
	f.c = conf
	f.mu.Unlock()

	f.clampLevels()
	return nil
}

func setRawField(conf *RawFileConfig, key, value string) {
	switch key {
	case "warning_level":
		conf.WarningLevel = parseRangedInt(key, value)
	case "critical_level":
		conf.CriticalLevel = parseRangedInt(key, value)
	case "check_interval":
		conf.CheckInterval = parseRangedInt(key, value)
	case "alert_timeout":
		conf.AlertTimeout = parseRangedInt(key, value)
	case "force_suspend":
		conf.ForceSuspend = parseBool(key, value)
	case "impossible_alerts":
		conf.ImpossibleAlerts = parseBool(key, value)
	case "suspend_method":
		conf.SuspendMethod = parseRangedInt(key, value)
	case "icon_charging":
		conf.IconCharging = &value
	case "icon_battery":
		conf.IconBattery = &value
	case "icon_low":
		conf.IconLow = &value
	default:
		// Unknown keys are ignored for forward compatibility.
		logrus.Debugf("ignoring unknown config key %q", key)
	}
}

func parseRangedInt(key, value string) *int {
	i, err := strconv.Atoi(value)
	if err != nil {
		logrus.Warnf("config %s=%q is not an integer, using default", key, value)
		return nil
	}
	if r, ok := intRanges[key]; ok && (i < r.min || i > r.max) {
		logrus.Warnf("config %s=%d out of range [%d, %d], using default", key, i, r.min, r.max)
		return nil
	}
	return &i
}

func parseBool(key, value string) *bool {
	switch value {
	case "1", "true", "yes":
		return ptr.To(true)
	case "0", "false", "no":
		return ptr.To(false)
	default:
		logrus.Warnf("config %s=%q is not a boolean, using default", key, value)
		return nil
	}
}

// clampLevels enforces criticalLevel < warningLevel. An inverted pair is
// fixed by pulling the critical level below the warning level rather than
// rejecting the config, so a hand-edited file never prevents startup.
func (f *File) clampLevels() {
	f.mu.Lock()
	defer f.mu.Unlock()

	warning := *defaultFileConfig.WarningLevel
	if f.c.WarningLevel != nil {
		warning = *f.c.WarningLevel
	}
	critical := *defaultFileConfig.CriticalLevel
	if f.c.CriticalLevel != nil {
		critical = *f.c.CriticalLevel
	}

	if critical < warning {
		return
	}

	if warning <= 1 {
		warning = 2
		f.c.WarningLevel = &warning
	}
	clamped := warning - 1
	logrus.Warnf("critical_level %d >= warning_level %d, clamping critical_level to %d", critical, warning, clamped)
	f.c.CriticalLevel = &clamped
}

// Save writes the config back in the compatible key=value format, one key
// per line.
func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	if dir := filepath.Dir(f.filepath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return pkgerrors.Wrapf(err, "failed to create config directory %s", dir)
		}
	}

	var sb strings.Builder
	sb.WriteString("# Cool Little Battery Monitor Configuration\n")
	writeKey := func(comment, key string, value any) {
		if comment != "" {
			fmt.Fprintf(&sb, "# %s\n", comment)
		}
		fmt.Fprintf(&sb, "%s=%v\n", key, value)
	}

	writeKey("Warning level percentage (when to show alerts)", "warning_level", f.warningLevelLocked())
	writeKey("Critical level percentage (when to force suspend)", "critical_level", f.criticalLevelLocked())
	writeKey("Check interval in seconds", "check_interval", f.intOrDefault(f.c.CheckInterval, defaultFileConfig.CheckInterval))
	writeKey("Alert timeout in seconds", "alert_timeout", f.intOrDefault(f.c.AlertTimeout, defaultFileConfig.AlertTimeout))
	writeKey("Force suspend at critical level (1=yes, 0=no)", "force_suspend", bool2Int(f.boolOrDefault(f.c.ForceSuspend, defaultFileConfig.ForceSuspend)))
	writeKey("Show impossible to dismiss alerts (1=yes, 0=no)", "impossible_alerts", bool2Int(f.boolOrDefault(f.c.ImpossibleAlerts, defaultFileConfig.ImpossibleAlerts)))
	writeKey("Suspend method (0=systemctl, 1=pm-suspend, 2=dbus, 3=kernel)", "suspend_method", f.intOrDefault(f.c.SuspendMethod, defaultFileConfig.SuspendMethod))
	writeKey("Icon paths", "icon_charging", f.stringOrDefault(f.c.IconCharging, defaultFileConfig.IconCharging))
	writeKey("", "icon_battery", f.stringOrDefault(f.c.IconBattery, defaultFileConfig.IconBattery))
	writeKey("", "icon_low", f.stringOrDefault(f.c.IconLow, defaultFileConfig.IconLow))

	if err := os.WriteFile(f.filepath, []byte(sb.String()), 0644); err != nil {
		return pkgerrors.Wrapf(err, "failed to write config file %s", f.filepath)
	}
	return nil
}

func (f *File) warningLevelLocked() int {
	return f.intOrDefault(f.c.WarningLevel, defaultFileConfig.WarningLevel)
}

func (f *File) criticalLevelLocked() int {
	return f.intOrDefault(f.c.CriticalLevel, defaultFileConfig.CriticalLevel)
}

func (f *File) intOrDefault(v, def *int) int {
	if v != nil {
		return *v
	}
	return *def
}

func (f *File) boolOrDefault(v, def *bool) bool {
	if v != nil {
		return *v
	}
	return *def
}

func (f *File) stringOrDefault(v, def *string) string {
	if v != nil {
		return *v
	}
	return *def
}

func bool2Int(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Keys returns the known config keys, sorted. Exposed for the CLI help
// text.
func Keys() []string {
	keys := []string{
		"warning_level", "critical_level", "check_interval", "alert_timeout",
		"force_suspend", "impossible_alerts", "suspend_method",
		"icon_charging", "icon_battery", "icon_low",
	}
	sort.Strings(keys)
	return keys
}

// LogrusFields returns the effective config for structured logging.
func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"warningLevel":     f.WarningLevel(),
		"criticalLevel":    f.CriticalLevel(),
		"checkInterval":    f.CheckIntervalSeconds(),
		"alertTimeout":     f.AlertTimeoutSeconds(),
		"forceSuspend":     f.ForceSuspend(),
		"impossibleAlerts": f.ImpossibleAlerts(),
		"suspendMethod":    f.SuspendMethod().String(),
	}
}
