package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wowitsjack/cool-little-battery/pkg/suspend"
	"github.com/wowitsjack/cool-little-battery/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s\n", version.Version)
			if daemonVersion, err := apiClient.GetVersion(); err == nil && daemonVersion != version.Version {
				cmd.Printf("daemon: %s\n", daemonVersion)
			}
		},
	}
}

func NewWarningLevelCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "warning-level [percentage]",
		Short:   "Set the warning battery level",
		GroupID: gBasic,
		Long: `Set the warning battery level.

Below this percentage (and while not charging) the watchdog shows repeated
low-battery alerts. Must stay above the critical level.`,
		RunE: func(_ *cobra.Command, args []string) error {
			level, err := parseIntArg(args, "warning level")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetWarningLevel(level)
			if err != nil {
				return fmt.Errorf("failed to set warning level: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set warning level to %d%%", level)

			return nil
		},
	}
}

func NewCriticalLevelCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "critical-level [percentage]",
		Short:   "Set the critical battery level",
		GroupID: gBasic,
		Long: `Set the critical battery level.

At or below this percentage (and while not charging) the watchdog alerts and,
if force suspend is enabled, suspends the system after a short grace window.
Must stay below the warning level.`,
		RunE: func(_ *cobra.Command, args []string) error {
			level, err := parseIntArg(args, "critical level")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetCriticalLevel(level)
			if err != nil {
				return fmt.Errorf("failed to set critical level: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set critical level to %d%%", level)

			return nil
		},
	}
}

func NewCheckIntervalCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "check-interval [seconds]",
		Short:   "Set how often the battery is checked",
		GroupID: gBasic,
		Long: `Set how often the battery is checked, in seconds.

The poll timer is restarted with the new interval immediately; escalation
state is preserved.`,
		RunE: func(_ *cobra.Command, args []string) error {
			secs, err := parseIntArg(args, "check interval")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetCheckInterval(secs)
			if err != nil {
				return fmt.Errorf("failed to set check interval: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set check interval to %d seconds", secs)

			return nil
		},
	}
}

func NewAlertTimeoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "alert-timeout [seconds]",
		Short:   "Set how long critical notifications stay on screen",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, args []string) error {
			secs, err := parseIntArg(args, "alert timeout")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetAlertTimeout(secs)
			if err != nil {
				return fmt.Errorf("failed to set alert timeout: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set alert timeout to %d seconds", secs)

			return nil
		},
	}
}

func NewForceSuspendCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "force-suspend [true|false]",
		Short:   "Enable or disable forced suspend at the critical level",
		GroupID: gBasic,
		Long: `Enable or disable forced suspend at the critical level.

When enabled, a critical reading gives you a short grace window to plug in a
charger; if the battery is still critical afterwards, the system suspends.`,
		RunE: func(_ *cobra.Command, args []string) error {
			enabled, err := parseBoolArg(args, "force suspend flag")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetForceSuspend(enabled)
			if err != nil {
				return fmt.Errorf("failed to set force suspend: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set force suspend to %t", enabled)

			return nil
		},
	}
}

func NewImpossibleAlertsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "impossible-alerts [true|false]",
		Short:   "Enable or disable hard-to-dismiss alert dialogs",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, args []string) error {
			enabled, err := parseBoolArg(args, "impossible alerts flag")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetImpossibleAlerts(enabled)
			if err != nil {
				return fmt.Errorf("failed to set impossible alerts: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set impossible alerts to %t", enabled)

			return nil
		},
	}
}

func NewSuspendMethodCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "suspend-method [0-3]",
		Short:   "Select the suspend method",
		GroupID: gAdvanced,
		Long: `Select the suspend method.

  0: systemctl suspend (systemd)
  1: pm-suspend (pm-utils)
  2: D-Bus call to the login manager
  3: direct kernel interface (/sys/power/state)

If the selected method fails when a suspend is needed, the remaining methods
are tried in the order above.`,
		RunE: func(_ *cobra.Command, args []string) error {
			m, err := parseIntArg(args, "suspend method")
			if err != nil {
				return err
			}
			if !suspend.Known(suspend.Method(m)) {
				return fmt.Errorf("suspend method must be between 0 and 3, got %d", m)
			}

			ret, err := apiClient.SetSuspendMethod(m)
			if err != nil {
				return fmt.Errorf("failed to set suspend method: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set suspend method to %s", suspend.Method(m))

			return nil
		},
	}
}

func NewCheckNowCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "check-now",
		Short:   "Run one battery evaluation immediately",
		GroupID: gBasic,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := apiClient.CheckNow(); err != nil {
				return fmt.Errorf("failed to trigger check: %v", err)
			}

			logrus.Info("battery check completed")

			return nil
		},
	}
}
