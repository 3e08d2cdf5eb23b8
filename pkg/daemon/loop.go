package daemon

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wowitsjack/cool-little-battery/pkg/battery"
	"github.com/wowitsjack/cool-little-battery/pkg/config"
	"github.com/wowitsjack/cool-little-battery/pkg/events"
	"github.com/wowitsjack/cool-little-battery/pkg/monitor"
	"github.com/wowitsjack/cool-little-battery/pkg/notify"
	"github.com/wowitsjack/cool-little-battery/pkg/suspend"
)

// internal control kinds (not user visible events)
type controlKind int

const (
	ctrlReschedule controlKind = iota // poll interval changed
	ctrlCheckNow                      // run one evaluation immediately
)

type controlMsg struct {
	kind  controlKind
	data  any
	reply chan struct{}
}

// Monitor drives the sample→evaluate→dispatch cycle. All evaluations --
// ticker ticks, grace-timer expiries, and check-now requests -- are
// serialized on one goroutine, because the escalation state is mutated in
// place and is not safe for concurrent access.
type Monitor struct {
	sampler  battery.Sampler
	engine   *monitor.Engine
	conf     config.Config
	executor *suspend.Executor
	hub      *events.Hub
	notifier notify.Notifier

	// graceOverride shortens the grace delay. Tests only.
	graceOverride time.Duration

	mu      sync.Mutex
	running bool

	controlCh chan controlMsg
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewMonitor wires a monitor from its collaborators. A nil notifier means
// no in-process presenter; the hub still receives every action.
func NewMonitor(sampler battery.Sampler, conf config.Config, executor *suspend.Executor, hub *events.Hub, notifier notify.Notifier) *Monitor {
	return &Monitor{
		sampler:   sampler,
		engine:    monitor.NewEngine(conf),
		conf:      conf,
		executor:  executor,
		hub:       hub,
		notifier:  notifier,
		controlCh: make(chan controlMsg, 4),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the loop goroutine. The first evaluation runs
// immediately, before the first tick.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	go m.run()
}

// Stop terminates the loop, cancelling any pending grace timer.
func (m *Monitor) Stop() {
	select {
	case <-m.stopCh: // already closed
	default:
		close(m.stopCh)
	}
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()
	if running {
		<-m.doneCh
	}
}

// Reschedule swaps the poll interval without losing escalation state.
func (m *Monitor) Reschedule(interval time.Duration) {
	if interval <= 0 {
		return
	}
	m.trySendControl(controlMsg{kind: ctrlReschedule, data: interval})
}

// CheckNow runs one evaluation on the loop goroutine and waits for it to
// finish.
func (m *Monitor) CheckNow() {
	reply := make(chan struct{})
	m.trySendControl(controlMsg{kind: ctrlCheckNow, reply: reply})
	select {
	case <-reply:
	case <-m.stopCh:
	}
}

func (m *Monitor) trySendControl(msg controlMsg) {
	select {
	case m.controlCh <- msg:
	default:
		if msg.reply != nil {
			close(msg.reply)
		}
	}
}

func (m *Monitor) run() {
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		close(m.doneCh)
		logrus.Debug("monitor loop stopped")
	}()

	interval := time.Duration(m.conf.CheckIntervalSeconds()) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logrus.Debugf("monitor loop started, interval %s", interval)

	var graceTimer *time.Timer
	var graceC <-chan time.Time

	stopGrace := func() {
		if graceTimer != nil {
			graceTimer.Stop()
			graceTimer = nil
			graceC = nil
		}
	}
	startGrace := func(delay time.Duration) {
		stopGrace()
		if m.graceOverride > 0 {
			delay = m.graceOverride
		}
		graceTimer = time.NewTimer(delay)
		graceC = graceTimer.C
	}

	// Initial check at startup.
	m.evaluateOnce(startGrace, stopGrace)

	for {
		select {
		case <-ticker.C:
			m.evaluateOnce(startGrace, stopGrace)

		case <-graceC:
			stopGrace()
			reading := m.sampler.Sample()
			actions := m.engine.ResolveGrace(reading, time.Now())
			m.dispatch(actions, startGrace, stopGrace)

		case msg := <-m.controlCh:
			switch msg.kind {
			case ctrlReschedule:
				interval = msg.data.(time.Duration)
				ticker.Reset(interval)
				logrus.Infof("poll interval changed to %s", interval)
			case ctrlCheckNow:
				m.evaluateOnce(startGrace, stopGrace)
			}
			if msg.reply != nil {
				close(msg.reply)
			}

		case <-m.stopCh:
			stopGrace()
			return
		}
	}
}

func (m *Monitor) evaluateOnce(startGrace func(time.Duration), stopGrace func()) {
	reading := m.sampler.Sample()
	actions := m.engine.Evaluate(reading, time.Now())
	m.dispatch(actions, startGrace, stopGrace)
}

// dispatch routes actions to the hub, the notifier, the grace timer, and
// the suspend executor. Suspend runs synchronously: once triggered, the
// whole process is expected to freeze.
func (m *Monitor) dispatch(actions []monitor.Action, startGrace func(time.Duration), stopGrace func()) {
	now := time.Now().Unix()

	for _, a := range actions {
		switch a.Kind {
		case monitor.ActionUpdateDisplay:
			m.hub.Publish(events.DisplayUpdate, events.DisplayEvent{
				Band:       a.Band.String(),
				Percentage: a.Percentage,
				Icon:       a.Icon,
				Tooltip:    a.Tooltip,
				Ts:         now,
			})

		case monitor.ActionNotify:
			m.hub.Publish(events.AlertNotify, events.AlertEvent{
				Band:           a.Band.String(),
				Percentage:     a.Percentage,
				Title:          a.Title,
				Message:        a.Message,
				Urgency:        a.Urgency.String(),
				TimeoutSeconds: a.TimeoutSeconds,
				Ts:             now,
			})
			m.notifyUser(notify.Alert{
				Title:          a.Title,
				Message:        a.Message,
				Urgency:        a.Urgency.String(),
				TimeoutSeconds: a.TimeoutSeconds,
				Icon:           m.conf.IconLow(),
			})

		case monitor.ActionImpossibleAlert:
			m.hub.Publish(events.AlertImpossible, events.AlertEvent{
				Band:       a.Band.String(),
				Percentage: a.Percentage,
				Title:      a.Title,
				Message:    a.Message,
				Ts:         now,
			})

		case monitor.ActionDismissAlert:
			m.hub.Publish(events.AlertDismiss, events.AlertEvent{Ts: now})

		case monitor.ActionBeginGrace:
			m.hub.Publish(events.GraceBegin, events.AlertEvent{
				Band:       a.Band.String(),
				Percentage: a.Percentage,
				Ts:         now,
			})
			startGrace(a.Delay)

		case monitor.ActionCancelGrace:
			m.hub.Publish(events.GraceCancel, events.AlertEvent{Ts: now})
			stopGrace()

		case monitor.ActionSuspend:
			m.hub.Publish(events.Suspend, events.SuspendEvent{
				Method:     a.Method.String(),
				Percentage: a.Percentage,
				Ts:         now,
			})
			if err := m.executor.Suspend(a.Method); err != nil {
				logrus.Errorf("suspend failed: %v", err)
				m.hub.Publish(events.SuspendFailed, events.SuspendEvent{
					Method:     a.Method.String(),
					Percentage: a.Percentage,
					Error:      err.Error(),
					Ts:         now,
				})
				m.notifyUser(notify.Alert{
					Title:   "Suspend Failed",
					Message: "All suspend methods failed! Save your work and plug in a charger!",
					Urgency: "critical",
					Icon:    m.conf.IconLow(),
				})
			}
		}
	}
}

func (m *Monitor) notifyUser(alert notify.Alert) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Notify(alert); err != nil {
		logrus.Warnf("%s notifier failed: %v", m.notifier.Name(), err)
	}
}
