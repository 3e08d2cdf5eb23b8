package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wowitsjack/cool-little-battery/pkg/config"
	"github.com/wowitsjack/cool-little-battery/pkg/suspend"
)

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current battery and watchdog status",
		Long:    `Get the current battery reading, its severity band, and the watchdog configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := apiClient.GetStatus()
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}

			conf := config.NewFileFromConfig(st.Config, "")

			cmd.Println(bold("Battery status:"))
			if !st.Reading.Present {
				cmd.Println("  " + color.New(color.Bold, color.FgRed).Sprint("No battery detected!"))
			} else {
				cmd.Printf("  Current charge: %s\n", bold("%d%%", st.Reading.Percentage))
				state := st.Reading.Status
				switch st.Band {
				case "charging":
					state = color.GreenString(state)
				case "warning":
					state = color.YellowString(state)
				case "critical":
					state = color.RedString(state)
				}
				cmd.Printf("  State: %s\n", bold("%s", state))
				cmd.Printf("  Band: %s\n", bold("%s", st.Band))
			}

			cmd.Println()

			cmd.Println(bold("Watchdog configuration:"))
			cmd.Printf("  Warning level: %s\n", bold("%d%%", conf.WarningLevel()))
			cmd.Printf("  Critical level: %s\n", bold("%d%%", conf.CriticalLevel()))
			cmd.Printf("  Check interval: %s\n", bold("%d seconds", conf.CheckIntervalSeconds()))
			cmd.Printf("  Alert timeout: %s\n", bold("%d seconds", conf.AlertTimeoutSeconds()))
			cmd.Printf("  Force suspend at critical level: %s\n", bool2Text(conf.ForceSuspend()))
			cmd.Printf("  Impossible alerts: %s\n", bool2Text(conf.ImpossibleAlerts()))
			cmd.Printf("  Suspend method: %s\n", bold("%s", conf.SuspendMethod()))
			if conf.ForceSuspend() {
				cmd.Printf("    The system will force suspend at %d%% to protect your data.\n", conf.CriticalLevel())
				if conf.SuspendMethod() == suspend.Kernel {
					cmd.Println("    The kernel method needs write access to /sys/power/state.")
				}
			}

			return nil
		},
	}
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
