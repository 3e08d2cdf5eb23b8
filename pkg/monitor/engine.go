package monitor

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wowitsjack/cool-little-battery/pkg/battery"
	"github.com/wowitsjack/cool-little-battery/pkg/config"
	"github.com/wowitsjack/cool-little-battery/pkg/suspend"
)

const (
	// CriticalRealertWindow is the minimum time between critical alerts.
	// Repeated critical polls inside the window must not re-enter the
	// grace sequence.
	CriticalRealertWindow = 30 * time.Second
	// WarningRealertWindow is the minimum time between warning alerts.
	WarningRealertWindow = 2 * time.Minute
	// GraceDelay is the window the user gets to plug in a charger before
	// the suspend re-check fires.
	GraceDelay = 10 * time.Second
)

// State is the process-lifetime escalation record. It is owned by exactly
// one Engine and mutated only inside a single evaluation step.
type State struct {
	// LastPercentage and LastChargingState remember the previous reading.
	// -1 means unknown (no reading seen yet).
	LastPercentage    int
	LastChargingState int
	// LastAlertTime is when the last alert of any class fired. The
	// suppression windows are measured from here, not from the previous
	// poll.
	LastAlertTime time.Time
	// AlertActive is true while an alert dialog may be open.
	AlertActive bool
	// GracePending is true while a grace re-check is scheduled.
	GracePending bool
}

// NewState returns the fresh, unknown state.
func NewState() State {
	return State{LastPercentage: -1, LastChargingState: -1}
}

// Engine is the escalation state machine. Evaluate and ResolveGrace are
// deterministic given the reading, the config, the current state, and the
// clock value passed in; callers must serialize them on one goroutine.
type Engine struct {
	conf  config.Config
	state State
}

// NewEngine returns an engine with fresh state reading thresholds from conf.
func NewEngine(conf config.Config) *Engine {
	return &Engine{conf: conf, state: NewState()}
}

// State returns a copy of the current escalation state.
func (e *Engine) State() State {
	return e.state
}

// GracePending reports whether a grace re-check is outstanding.
func (e *Engine) GracePending() bool {
	return e.state.GracePending
}

// Evaluate classifies one reading and returns the actions to dispatch.
// Precedence: Absent, Charging, Critical, Warning, Normal.
func (e *Engine) Evaluate(r battery.Reading, now time.Time) []Action {
	defer e.recordReading(r)

	band := Classify(r, e.conf)

	if band == BandAbsent {
		// Alert timers are deliberately untouched: a transient read
		// failure must not reset the suppression window.
		return []Action{displayAction(BandAbsent, 0, e.conf)}
	}

	actions := []Action{displayAction(band, r.Percentage, e.conf)}

	switch band {
	case BandCharging:
		actions = append(actions, e.standDown()...)
		return actions

	case BandCritical:
		if now.Sub(e.state.LastAlertTime) <= CriticalRealertWindow {
			logrus.WithFields(logrus.Fields{
				"percentage":    r.Percentage,
				"lastAlertTime": e.state.LastAlertTime,
			}).Debug("critical reading inside suppression window")
			return actions
		}

		title, message := criticalAlertText(r.Percentage)
		actions = append(actions, e.alertActions(title, message, band, r.Percentage)...)
		e.state.AlertActive = true
		e.state.LastAlertTime = now

		if e.conf.ForceSuspend() {
			actions = append(actions, Action{Kind: ActionBeginGrace, Band: band, Percentage: r.Percentage, Delay: GraceDelay})
			e.state.GracePending = true
		} else {
			logrus.Debug("force suspend disabled, alerting only")
		}
		return actions

	case BandWarning:
		if now.Sub(e.state.LastAlertTime) <= WarningRealertWindow {
			return actions
		}

		title, message := warningAlertText(r.Percentage, e.conf.CriticalLevel())
		actions = append(actions, e.alertActions(title, message, band, r.Percentage)...)
		e.state.AlertActive = true
		e.state.LastAlertTime = now
		return actions

	default: // BandNormal
		actions = append(actions, e.standDown()...)
		return actions
	}
}

// ResolveGrace is the deferred re-check at the end of the grace window. It
// consumes the pending grace and emits a Suspend action only when the
// fresh reading is still critical and still not charging.
func (e *Engine) ResolveGrace(r battery.Reading, now time.Time) []Action {
	if !e.state.GracePending {
		return nil
	}
	e.state.GracePending = false
	defer e.recordReading(r)

	if !r.Present || r.Charging || r.Percentage > e.conf.CriticalLevel() {
		logrus.WithFields(logrus.Fields{
			"present":    r.Present,
			"charging":   r.Charging,
			"percentage": r.Percentage,
		}).Info("battery recovered during grace window, suspend aborted")
		return nil
	}

	method := e.conf.SuspendMethod()
	if !suspend.Known(method) {
		logrus.Warnf("unknown suspend method %d configured, not suspending", method)
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"percentage": r.Percentage,
		"method":     method.String(),
	}).Warn("battery still critical after grace window, forcing suspend")

	return []Action{
		{
			Kind:           ActionNotify,
			Band:           BandCritical,
			Percentage:     r.Percentage,
			Title:          "SYSTEM SUSPENDING NOW!",
			Message:        "Battery critically low! Suspending to prevent data loss!",
			Urgency:        UrgencyCritical,
			TimeoutSeconds: e.conf.AlertTimeoutSeconds(),
		},
		{Kind: ActionSuspend, Band: BandCritical, Percentage: r.Percentage, Method: method},
	}
}

// standDown clears the active alert and any pending grace wait. Used by
// the charging and normal branches.
func (e *Engine) standDown() []Action {
	var actions []Action
	if e.state.AlertActive {
		actions = append(actions, Action{Kind: ActionDismissAlert})
		e.state.AlertActive = false
	}
	if e.state.GracePending {
		actions = append(actions, Action{Kind: ActionCancelGrace})
		e.state.GracePending = false
	}
	return actions
}

func (e *Engine) alertActions(title, message string, band Band, pct int) []Action {
	actions := []Action{
		{
			Kind:           ActionNotify,
			Band:           band,
			Percentage:     pct,
			Title:          title,
			Message:        message,
			Urgency:        UrgencyCritical,
			TimeoutSeconds: e.conf.AlertTimeoutSeconds(),
		},
	}
	if e.conf.ImpossibleAlerts() {
		actions = append(actions, Action{
			Kind:       ActionImpossibleAlert,
			Band:       band,
			Percentage: pct,
			Title:      title,
			Message:    message,
		})
	}
	return actions
}

func (e *Engine) recordReading(r battery.Reading) {
	e.state.LastPercentage = r.Percentage
	e.state.LastChargingState = bool2Int(r.Charging)
}

func bool2Int(b bool) int {
	if b {
		return 1
	}
	return 0
}
