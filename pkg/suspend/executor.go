package suspend

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Invoker executes a single suspend mechanism and reports whether it
// succeeded. Implementations are expected to be idempotent and free of
// lasting side effects on failure.
type Invoker interface {
	Invoke(m Method) error
}

// Attempt records the outcome of one suspend invocation.
type Attempt struct {
	Method Method
	Err    error
}

// AllMethodsFailedError is returned when every method in the fallback
// chain failed.
type AllMethodsFailedError struct {
	Attempts []Attempt
}

func (e *AllMethodsFailedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Method, a.Err))
	}
	return "all suspend methods failed: " + strings.Join(parts, "; ")
}

// Executor runs suspend attempts against an ordered method table.
type Executor struct {
	invoker Invoker
	order   []Method
}

// NewExecutor returns an executor over the default method table using the
// given invoker. A nil invoker means real OS commands.
func NewExecutor(invoker Invoker) *Executor {
	if invoker == nil {
		invoker = &CommandInvoker{}
	}
	return &Executor{invoker: invoker, order: Methods}
}

// NewExecutorWithOrder returns an executor over a custom method table.
// Used in tests.
func NewExecutorWithOrder(invoker Invoker, order []Method) *Executor {
	e := NewExecutor(invoker)
	e.order = order
	return e
}

// Suspend tries the configured method first, then every remaining method
// in table order, stopping at the first success. When everything fails it
// returns an *AllMethodsFailedError listing the attempts.
func (e *Executor) Suspend(configured Method) error {
	var attempts []Attempt

	tried := make(map[Method]bool, len(e.order))
	try := func(m Method) bool {
		tried[m] = true
		logrus.WithField("method", m.String()).Info("attempting system suspend")
		err := e.invoker.Invoke(m)
		if err == nil {
			return true
		}
		logrus.WithField("method", m.String()).Warnf("suspend attempt failed: %v", err)
		attempts = append(attempts, Attempt{Method: m, Err: err})
		return false
	}

	if Known(configured) {
		if try(configured) {
			return nil
		}
	} else {
		logrus.Warnf("unknown suspend method %d, trying fallback chain", configured)
	}

	for _, m := range e.order {
		if tried[m] {
			continue
		}
		if try(m) {
			return nil
		}
	}

	if len(attempts) == 0 {
		return pkgerrors.New("no suspend methods available")
	}
	return &AllMethodsFailedError{Attempts: attempts}
}

// Test runs only the configured method, once, immediately. It is the
// operator-verification entry point and bypasses the fallback chain.
func (e *Executor) Test(configured Method) error {
	if !Known(configured) {
		return pkgerrors.Errorf("unknown suspend method %d", configured)
	}
	logrus.WithField("method", configured.String()).Info("testing suspend method")
	return pkgerrors.Wrapf(e.invoker.Invoke(configured), "suspend method %s", configured)
}

// CommandInvoker runs the real OS suspend commands.
type CommandInvoker struct{}

func (i *CommandInvoker) Invoke(m Method) error {
	switch m {
	case Systemd:
		return runCommand("systemctl", "suspend")
	case PmUtils:
		return runCommand("pm-suspend")
	case DBus:
		return runCommand("dbus-send", "--system", "--print-reply",
			"--dest=org.freedesktop.login1", "/org/freedesktop/login1",
			"org.freedesktop.login1.Manager.Suspend", "boolean:true")
	case Kernel:
		// No command involved: write the sleep state to the kernel
		// power interface directly.
		return pkgerrors.Wrap(os.WriteFile("/sys/power/state", []byte("mem"), 0200), "write /sys/power/state")
	default:
		return pkgerrors.Errorf("unknown suspend method %d", m)
	}
}

func runCommand(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return pkgerrors.Wrapf(err, "%s: %s", name, strings.TrimSpace(string(out)))
	}
	return nil
}
