package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewTestSuspendCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "test-suspend",
		Short:   "Test the configured suspend method",
		GroupID: gAdvanced,
		Long: `Test the configured suspend method.

This runs only the configured method, once, immediately, bypassing all
escalation logic. Your system will suspend if the method works!`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				cmd.Print("This will suspend your system immediately! Proceed? [y/N] ")
				reader := bufio.NewReader(os.Stdin)
				answer, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read answer: %v", err)
				}
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					cmd.Println("Aborted.")
					return nil
				}
			}

			ret, err := apiClient.TestSuspend()
			if err != nil {
				return fmt.Errorf("test suspend failed: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}
