package suspend

// Method selects the OS-level mechanism used to suspend the machine.
//
// The integer values are part of the on-disk config format
// (suspend_method=0..3), so they must not be reordered.
type Method int

const (
	// Systemd asks the systemd service manager to suspend.
	Systemd Method = iota
	// PmUtils uses the legacy pm-suspend utility.
	PmUtils
	// DBus sends a Suspend call to the login1 session manager.
	DBus
	// Kernel writes to the kernel power-state interface directly.
	Kernel
)

// Methods is the fixed fallback order. The configured method is tried
// first; the remaining ones follow in this order.
var Methods = []Method{Systemd, PmUtils, DBus, Kernel}

// Known reports whether m is one of the defined suspend methods.
func Known(m Method) bool {
	return m >= Systemd && m <= Kernel
}

func (m Method) String() string {
	switch m {
	case Systemd:
		return "systemctl suspend"
	case PmUtils:
		return "pm-suspend"
	case DBus:
		return "dbus"
	case Kernel:
		return "kernel"
	default:
		return "unknown"
	}
}
