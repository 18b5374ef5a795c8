package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/learnmap-backend/internal/app"
	"github.com/yungbote/learnmap-backend/internal/events"
	"github.com/yungbote/learnmap-backend/internal/platform/shutdown"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print map events published by running servers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := shutdown.NotifyContext(cmd.Context())
		defer stop()

		a, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, nop := a.Services.Bus.(events.NopBus); nop {
			return errors.New("REDIS_ADDR is not configured; nothing to watch")
		}
		out := cmd.OutOrStdout()
		if err := a.Services.Bus.StartForwarder(ctx, func(ev events.Event) {
			if err := writeJSON(out, ev); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
		}); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	},
}
