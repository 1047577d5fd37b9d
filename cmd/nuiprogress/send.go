package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"nuiprogress/internal/config"
	"nuiprogress/internal/nui"
	"nuiprogress/internal/progress"
)

func newSendCmd(opts *rootOptions) *cobra.Command {
	var (
		addr     string
		label    string
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "send <progress|cancel>",
		Short: "Post a host message to a running overlay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := buildMessage(args[0], label, duration)
			if err != nil {
				return err
			}
			if addr == "" {
				cfg, err := config.Load(opts.configPath)
				if err != nil {
					return err
				}
				addr = cfg.Bridge.ListenAddr
			}
			client := &http.Client{Timeout: nui.DefaultTimeout}
			if err := nui.PostMessage(cmd.Context(), client, "http://"+addr, msg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s\n", msg.Action)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "bridge address (default bridge.listen_addr)")
	cmd.Flags().StringVar(&label, "label", "Loading", "progress label")
	cmd.Flags().DurationVar(&duration, "duration", 3*time.Second, "progress duration")
	return cmd
}

func buildMessage(kind, label string, duration time.Duration) (nui.Message, error) {
	switch kind {
	case "progress":
		return nui.Message{
			Action: progress.EventStart,
			Data: map[string]any{
				"label":    label,
				"duration": duration.Milliseconds(),
			},
		}, nil
	case "cancel", progress.EventCancel:
		return nui.Message{Action: progress.EventCancel}, nil
	default:
		return nui.Message{}, fmt.Errorf("unknown message %q (want progress or cancel)", kind)
	}
}
