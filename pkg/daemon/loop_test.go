package daemon

import (
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/wowitsjack/cool-little-battery/pkg/battery"
	"github.com/wowitsjack/cool-little-battery/pkg/config"
	"github.com/wowitsjack/cool-little-battery/pkg/events"
	"github.com/wowitsjack/cool-little-battery/pkg/suspend"
	"github.com/wowitsjack/cool-little-battery/pkg/utils/ptr"
)

// mutableSampler lets a test swap the reading mid-run.
type mutableSampler struct {
	mu sync.Mutex
	r  battery.Reading
}

func (s *mutableSampler) Sample() battery.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r
}

func (s *mutableSampler) set(r battery.Reading) {
	s.mu.Lock()
	s.r = r
	s.mu.Unlock()
}

// recordingInvoker records suspend invocations and always succeeds (or
// always fails when fail is set).
type recordingInvoker struct {
	mu    sync.Mutex
	calls []suspend.Method
	fail  bool
}

func (i *recordingInvoker) Invoke(m suspend.Method) error {
	i.mu.Lock()
	i.calls = append(i.calls, m)
	i.mu.Unlock()
	if i.fail {
		return pkgerrors.New("refused")
	}
	return nil
}

func (i *recordingInvoker) count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.calls)
}

func loopTestConfig(interval int) config.Config {
	return config.NewFileFromConfig(&config.RawFileConfig{
		WarningLevel:     ptr.To(20),
		CriticalLevel:    ptr.To(10),
		CheckInterval:    ptr.To(interval),
		AlertTimeout:     ptr.To(30),
		ForceSuspend:     ptr.To(true),
		ImpossibleAlerts: ptr.To(true),
		SuspendMethod:    ptr.To(int(suspend.Systemd)),
	}, "")
}

// awaitEvent drains ch until an event with the given name arrives.
func awaitEvent(t *testing.T, ch chan events.Event, name string) events.Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Name == name {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event %q", name)
		}
	}
}

// expectNoEvent asserts that no event with the given name arrives within
// the window.
func expectNoEvent(t *testing.T, ch chan events.Event, name string, window time.Duration) {
	t.Helper()
	deadline := time.After(window)
	for {
		select {
		case ev := <-ch:
			if ev.Name == name {
				t.Fatalf("unexpected event %q", name)
			}
		case <-deadline:
			return
		}
	}
}

func TestMonitorInitialEvaluation(t *testing.T) {
	sampler := &mutableSampler{r: battery.Reading{Present: true, Percentage: 80, Status: "Discharging"}}
	hub := events.NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	m := NewMonitor(sampler, loopTestConfig(3600), suspend.NewExecutor(&recordingInvoker{}), hub, nil)
	m.Start()
	defer m.Stop()

	ev := awaitEvent(t, sub, events.DisplayUpdate)
	payload, err := events.DecodeAs[events.DisplayEvent](ev)
	if err != nil {
		t.Fatalf("decode display event: %v", err)
	}
	if payload.Percentage != 80 || payload.Band != "normal" {
		t.Fatalf("unexpected display payload %+v", payload)
	}
}

func TestMonitorCriticalSuspendFlow(t *testing.T) {
	sampler := &mutableSampler{r: battery.Reading{Present: true, Percentage: 5, Status: "Discharging"}}
	inv := &recordingInvoker{}
	hub := events.NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	m := NewMonitor(sampler, loopTestConfig(3600), suspend.NewExecutor(inv), hub, nil)
	m.graceOverride = 10 * time.Millisecond
	m.Start()
	defer m.Stop()

	awaitEvent(t, sub, events.AlertNotify)
	awaitEvent(t, sub, events.GraceBegin)
	ev := awaitEvent(t, sub, events.Suspend)

	payload, err := events.DecodeAs[events.SuspendEvent](ev)
	if err != nil {
		t.Fatalf("decode suspend event: %v", err)
	}
	if payload.Method != suspend.Systemd.String() {
		t.Fatalf("unexpected suspend method %q", payload.Method)
	}
	if inv.count() == 0 {
		t.Fatalf("suspend invoker was never called")
	}
}

func TestMonitorGraceAbortedByCharger(t *testing.T) {
	sampler := &mutableSampler{r: battery.Reading{Present: true, Percentage: 5, Status: "Discharging"}}
	inv := &recordingInvoker{}
	hub := events.NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	m := NewMonitor(sampler, loopTestConfig(3600), suspend.NewExecutor(inv), hub, nil)
	m.graceOverride = 300 * time.Millisecond
	m.Start()
	defer m.Stop()

	awaitEvent(t, sub, events.GraceBegin)
	// Charger plugged in before the grace window closes: the re-check
	// sees a charging battery and aborts.
	sampler.set(battery.Reading{Present: true, Percentage: 5, Charging: true, Status: "Charging"})

	expectNoEvent(t, sub, events.Suspend, 600*time.Millisecond)
	if inv.count() != 0 {
		t.Fatalf("suspend must not fire after the charger was plugged in")
	}
}

func TestMonitorSuspendFailurePublishes(t *testing.T) {
	sampler := &mutableSampler{r: battery.Reading{Present: true, Percentage: 5, Status: "Discharging"}}
	inv := &recordingInvoker{fail: true}
	hub := events.NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	m := NewMonitor(sampler, loopTestConfig(3600), suspend.NewExecutor(inv), hub, nil)
	m.graceOverride = 10 * time.Millisecond
	m.Start()
	defer m.Stop()

	ev := awaitEvent(t, sub, events.SuspendFailed)
	payload, err := events.DecodeAs[events.SuspendEvent](ev)
	if err != nil {
		t.Fatalf("decode suspend event: %v", err)
	}
	if payload.Error == "" {
		t.Fatalf("suspend-failed event should carry the error")
	}
	if inv.count() != len(suspend.Methods) {
		t.Fatalf("expected the whole fallback chain to run, got %d calls", inv.count())
	}
}

func TestMonitorCheckNow(t *testing.T) {
	sampler := &mutableSampler{r: battery.Reading{Present: true, Percentage: 80, Status: "Discharging"}}
	hub := events.NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	m := NewMonitor(sampler, loopTestConfig(3600), suspend.NewExecutor(&recordingInvoker{}), hub, nil)
	m.Start()
	defer m.Stop()

	awaitEvent(t, sub, events.DisplayUpdate)

	sampler.set(battery.Reading{Present: true, Percentage: 15, Status: "Discharging"})
	m.CheckNow()

	ev := awaitEvent(t, sub, events.AlertNotify)
	payload, err := events.DecodeAs[events.AlertEvent](ev)
	if err != nil {
		t.Fatalf("decode alert event: %v", err)
	}
	if payload.Band != "warning" || payload.Percentage != 15 {
		t.Fatalf("unexpected alert payload %+v", payload)
	}
}

func TestMonitorReschedule(t *testing.T) {
	sampler := &mutableSampler{r: battery.Reading{Present: true, Percentage: 80, Status: "Discharging"}}
	hub := events.NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	m := NewMonitor(sampler, loopTestConfig(3600), suspend.NewExecutor(&recordingInvoker{}), hub, nil)
	m.Start()
	defer m.Stop()

	awaitEvent(t, sub, events.DisplayUpdate)

	// Shrink the interval far below the configured hour and expect ticks
	// to start arriving.
	m.Reschedule(20 * time.Millisecond)
	awaitEvent(t, sub, events.DisplayUpdate)
	awaitEvent(t, sub, events.DisplayUpdate)
}

func TestMonitorStopWithoutStart(t *testing.T) {
	sampler := &mutableSampler{}
	m := NewMonitor(sampler, loopTestConfig(3600), suspend.NewExecutor(&recordingInvoker{}), events.NewHub(), nil)

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Stop without Start must not block")
	}
}
