package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wowitsjack/cool-little-battery/pkg/client"
	"github.com/wowitsjack/cool-little-battery/pkg/config"
)

var (
	logLevel       = "info"
	unixSocketPath = client.DefaultSocketPath()
	configPath     = config.DefaultPath()
)

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
	}
)

var apiClient = client.NewClient(client.DefaultSocketPath())

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: the battery monitor daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'coolbattery daemon'")
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - The daemon socket belongs to another user; run as the same user that started the daemon")
	}
}

func main() {
	// The watchdog does not need many CPUs.
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(2)
	}

	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coolbattery",
		Short: "coolbattery is a battery watchdog that forces you to take care of your battery",
		Long: `coolbattery is a battery watchdog: it samples the battery level, alerts you
when it gets low, and as a last resort force-suspends the system before the
battery dies.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			apiClient = client.NewClient(unixSocketPath)
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "watchdog daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewStatusCommand(),
		NewWarningLevelCommand(),
		NewCriticalLevelCommand(),
		NewCheckIntervalCommand(),
		NewAlertTimeoutCommand(),
		NewForceSuspendCommand(),
		NewImpossibleAlertsCommand(),
		NewSuspendMethodCommand(),
		NewCheckNowCommand(),
		NewTestSuspendCommand(),
	)

	return cmd
}
