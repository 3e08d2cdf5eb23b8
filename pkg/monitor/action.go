package monitor

import (
	"fmt"
	"time"

	"github.com/wowitsjack/cool-little-battery/pkg/config"
	"github.com/wowitsjack/cool-little-battery/pkg/suspend"
)

// ActionKind identifies what an emitted action asks the outside world to do.
type ActionKind int

const (
	// ActionUpdateDisplay refreshes the status presentation (icon, tooltip).
	ActionUpdateDisplay ActionKind = iota
	// ActionNotify shows a desktop notification.
	ActionNotify
	// ActionImpossibleAlert shows the hard-to-dismiss alert dialog.
	ActionImpossibleAlert
	// ActionDismissAlert closes any open alert dialog.
	ActionDismissAlert
	// ActionBeginGrace asks the loop to schedule the grace re-check.
	ActionBeginGrace
	// ActionCancelGrace cancels a pending grace re-check.
	ActionCancelGrace
	// ActionSuspend asks the suspend executor to put the system to sleep.
	ActionSuspend
)

func (k ActionKind) String() string {
	switch k {
	case ActionUpdateDisplay:
		return "update-display"
	case ActionNotify:
		return "notify"
	case ActionImpossibleAlert:
		return "impossible-alert"
	case ActionDismissAlert:
		return "dismiss-alert"
	case ActionBeginGrace:
		return "begin-grace"
	case ActionCancelGrace:
		return "cancel-grace"
	case ActionSuspend:
		return "suspend"
	default:
		return "unknown"
	}
}

// Urgency of a notification.
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyCritical
)

func (u Urgency) String() string {
	if u == UrgencyCritical {
		return "critical"
	}
	return "normal"
}

// Action is one instruction emitted by an evaluation. The engine never
// touches presentation or OS suspend surfaces itself; the loop dispatches
// actions to the registered sinks and the suspend executor.
type Action struct {
	Kind       ActionKind
	Band       Band
	Percentage int

	// Display fields (ActionUpdateDisplay).
	Icon    string
	Tooltip string

	// Notification fields (ActionNotify, ActionImpossibleAlert).
	Title          string
	Message        string
	Urgency        Urgency
	TimeoutSeconds int

	// Grace fields (ActionBeginGrace).
	Delay time.Duration

	// Suspend fields (ActionSuspend).
	Method suspend.Method
}

func displayAction(band Band, pct int, conf config.Config) Action {
	a := Action{Kind: ActionUpdateDisplay, Band: band, Percentage: pct}
	switch band {
	case BandAbsent:
		a.Icon = "battery-missing"
		a.Tooltip = "No battery detected"
	case BandCharging:
		a.Icon = conf.IconCharging()
		a.Tooltip = fmt.Sprintf("Charging: %d%%", pct)
	case BandCritical:
		a.Icon = conf.IconLow()
		a.Tooltip = fmt.Sprintf("CRITICAL: %d%% - GET A CHARGER NOW!", pct)
	case BandWarning:
		a.Icon = conf.IconLow()
		a.Tooltip = fmt.Sprintf("Low: %d%% - Consider charging", pct)
	default:
		a.Icon = conf.IconBattery()
		a.Tooltip = fmt.Sprintf("Battery: %d%%", pct)
	}
	return a
}

func criticalAlertText(pct int) (title, message string) {
	title = fmt.Sprintf("CRITICAL BATTERY: %d%%", pct)
	message = fmt.Sprintf(
		"Your battery is critically low at %d%%!\n\n"+
			"PLUG IN YOUR CHARGER IMMEDIATELY!\n\n"+
			"System will suspend in %d seconds to prevent data loss!",
		pct, int(GraceDelay.Seconds()))
	return
}

func warningAlertText(pct, criticalLevel int) (title, message string) {
	title = fmt.Sprintf("LOW BATTERY: %d%%", pct)
	message = fmt.Sprintf(
		"Your battery is getting low at %d%%!\n\n"+
			"Please plug in your charger soon!\n\n"+
			"System will force suspend at %d%% to protect your data!",
		pct, criticalLevel)
	return
}
