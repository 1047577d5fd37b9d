package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "nuiprogress",
		Short: "A progress bar overlay driven by host messages",
		Long: `nuiprogress shows a single progress bar whenever the host posts a
"progress" message, hides it on "progressCancel" or when the duration has
elapsed, and reports "progressComplete" back once it is gone.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (YAML); theme changes are applied live")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newSendCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of nuiprogress",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
