package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wowitsjack/cool-little-battery/pkg/daemon"
	"github.com/wowitsjack/cool-little-battery/pkg/version"
)

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "daemon",
		Short:   "Run the battery watchdog daemon in the foreground",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
			}).Info("battery watchdog daemon starting")
			return daemon.Run(configPath, unixSocketPath)
		},
	}
}
