package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/learnmap-backend/internal/app"
	"github.com/yungbote/learnmap-backend/internal/platform/shutdown"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := shutdown.NotifyContext(cmd.Context())
		defer stop()

		a, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Run(ctx)
	},
}
