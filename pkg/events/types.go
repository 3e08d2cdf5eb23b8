package events

import "encoding/json"

// Event name constants
const (
	DisplayUpdate   = "display.update"
	AlertNotify     = "alert.notify"
	AlertImpossible = "alert.impossible"
	AlertDismiss    = "alert.dismiss"
	GraceBegin      = "grace.begin"
	GraceCancel     = "grace.cancel"
	Suspend         = "power.suspend"
	SuspendFailed   = "power.suspend-failed"
)

// Event is a generic SSE event from the watchdog daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// DisplayEvent is the typed payload for display.update.
type DisplayEvent struct {
	Band       string `json:"band"`
	Percentage int    `json:"percentage"`
	Icon       string `json:"icon"`
	Tooltip    string `json:"tooltip"`
	Ts         int64  `json:"ts"`
}

// AlertEvent is the typed payload for alert.notify and alert.impossible.
type AlertEvent struct {
	Band           string `json:"band"`
	Percentage     int    `json:"percentage"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	Urgency        string `json:"urgency,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds,omitempty"`
	Ts             int64  `json:"ts"`
}

// SuspendEvent is the typed payload for power.suspend and
// power.suspend-failed.
type SuspendEvent struct {
	Method     string `json:"method"`
	Percentage int    `json:"percentage"`
	Error      string `json:"error,omitempty"`
	Ts         int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is
// empty, it returns the zero value of T with a nil error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
