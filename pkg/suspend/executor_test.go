package suspend

import (
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInvoker records invocation order and fails every method not listed
// in succeed.
type fakeInvoker struct {
	succeed map[Method]bool
	calls   []Method
}

func (f *fakeInvoker) Invoke(m Method) error {
	f.calls = append(f.calls, m)
	if f.succeed[m] {
		return nil
	}
	return pkgerrors.Errorf("%s unavailable", m)
}

func TestSuspendConfiguredMethodSucceeds(t *testing.T) {
	inv := &fakeInvoker{succeed: map[Method]bool{PmUtils: true}}
	e := NewExecutor(inv)

	require.NoError(t, e.Suspend(PmUtils))
	assert.Equal(t, []Method{PmUtils}, inv.calls, "no fallback after a success")
}

func TestSuspendFallsBackInTableOrder(t *testing.T) {
	inv := &fakeInvoker{succeed: map[Method]bool{Kernel: true}}
	e := NewExecutor(inv)

	require.NoError(t, e.Suspend(DBus))
	// Configured method first, then the remaining table entries in order,
	// without retrying the configured one.
	assert.Equal(t, []Method{DBus, Systemd, PmUtils, Kernel}, inv.calls)
}

func TestSuspendAllMethodsFail(t *testing.T) {
	inv := &fakeInvoker{}
	e := NewExecutor(inv)

	err := e.Suspend(Systemd)
	require.Error(t, err)

	var amf *AllMethodsFailedError
	require.ErrorAs(t, err, &amf)
	assert.Len(t, amf.Attempts, len(Methods))
	assert.Contains(t, err.Error(), "all suspend methods failed")
}

func TestSuspendUnknownConfiguredMethodUsesChain(t *testing.T) {
	inv := &fakeInvoker{succeed: map[Method]bool{Systemd: true}}
	e := NewExecutor(inv)

	require.NoError(t, e.Suspend(Method(42)))
	assert.Equal(t, []Method{Systemd}, inv.calls)
}

func TestSuspendSingleFailingMethod(t *testing.T) {
	inv := &fakeInvoker{}
	e := NewExecutorWithOrder(inv, []Method{Systemd})

	err := e.Suspend(Systemd)
	var amf *AllMethodsFailedError
	require.ErrorAs(t, err, &amf)
	assert.Len(t, amf.Attempts, 1)
}

func TestSuspendCustomOrder(t *testing.T) {
	inv := &fakeInvoker{succeed: map[Method]bool{PmUtils: true}}
	e := NewExecutorWithOrder(inv, []Method{Kernel, PmUtils})

	require.NoError(t, e.Suspend(Kernel))
	assert.Equal(t, []Method{Kernel, PmUtils}, inv.calls)
}

func TestTestRunsOnlyConfiguredMethod(t *testing.T) {
	inv := &fakeInvoker{}
	e := NewExecutor(inv)

	err := e.Test(DBus)
	require.Error(t, err)
	assert.Equal(t, []Method{DBus}, inv.calls, "test must not fall back")

	inv = &fakeInvoker{succeed: map[Method]bool{DBus: true}}
	e = NewExecutor(inv)
	require.NoError(t, e.Test(DBus))
}

func TestTestRejectsUnknownMethod(t *testing.T) {
	inv := &fakeInvoker{}
	e := NewExecutor(inv)

	require.Error(t, e.Test(Method(7)))
	assert.Empty(t, inv.calls)
}

func TestMethodString(t *testing.T) {
	tests := []struct {
		m    Method
		want string
	}{
		{Systemd, "systemctl suspend"},
		{PmUtils, "pm-suspend"},
		{DBus, "dbus"},
		{Kernel, "kernel"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.m.String())
	}
	assert.False(t, Known(Method(9)))
	assert.True(t, Known(Kernel))
}
