package notify

import (
	"os/exec"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Alert is a notification to be delivered to the user.
type Alert struct {
	Title          string
	Message        string
	Urgency        string // "normal" or "critical"
	TimeoutSeconds int
	Icon           string
}

// Notifier delivers alerts. Implementations are presenters: the core
// never calls them directly, the daemon loop dispatches emitted actions
// to them.
type Notifier interface {
	// Notify delivers an alert.
	Notify(alert Alert) error
	// Name returns the name of the notifier.
	Name() string
	// Available checks if the notifier can be used in the current
	// environment.
	Available() bool
}

// SendNotifier shells out to notify-send.
type SendNotifier struct{}

func NewSendNotifier() *SendNotifier { return &SendNotifier{} }

func (n *SendNotifier) Name() string { return "notify-send" }

func (n *SendNotifier) Available() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}

func (n *SendNotifier) Notify(alert Alert) error {
	args := []string{}

	urgency := alert.Urgency
	if urgency == "" {
		urgency = "normal"
	}
	args = append(args, "-u", urgency)

	if alert.TimeoutSeconds > 0 {
		args = append(args, "-t", strconv.Itoa(alert.TimeoutSeconds*1000))
	}
	if alert.Icon != "" {
		args = append(args, "-i", alert.Icon)
	}
	args = append(args, alert.Title, alert.Message)

	out, err := exec.Command("notify-send", args...).CombinedOutput()
	if err != nil {
		return pkgerrors.Wrapf(err, "notify-send: %s", strings.TrimSpace(string(out)))
	}
	return nil
}
