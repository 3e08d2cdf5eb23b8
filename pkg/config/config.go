package config

import (
	"github.com/sirupsen/logrus"

	"github.com/wowitsjack/cool-little-battery/pkg/suspend"
)

// Config is the validated set of thresholds and behavior flags consumed by
// the escalation engine. Implementations must be safe for concurrent use:
// the engine reads while the settings-update path writes.
type Config interface {
	WarningLevel() int
	CriticalLevel() int
	CheckIntervalSeconds() int
	AlertTimeoutSeconds() int
	ForceSuspend() bool
	ImpossibleAlerts() bool
	SuspendMethod() suspend.Method
	IconCharging() string
	IconBattery() string
	IconLow() string

	SetWarningLevel(int)
	SetCriticalLevel(int)
	SetCheckIntervalSeconds(int)
	SetAlertTimeoutSeconds(int)
	SetForceSuspend(bool)
	SetImpossibleAlerts(bool)
	SetSuspendMethod(suspend.Method)

	// LogrusFields returns the effective config for structured logging.
	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
