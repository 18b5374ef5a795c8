package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/learnmap-backend/internal/app"
	"github.com/yungbote/learnmap-backend/internal/learnmap"
	"github.com/yungbote/learnmap-backend/internal/platform/shutdown"
)

var (
	genTopic    string
	genLevel    string
	genNoVerify bool
)

func init() {
	generateCmd.Flags().StringVarP(&genTopic, "topic", "t", "", "Topic to map")
	generateCmd.Flags().StringVarP(&genLevel, "level", "l", "beginner", "beginner, intermediate or advanced")
	generateCmd.Flags().BoolVar(&genNoVerify, "no-verify", false, "Skip link verification")
	_ = generateCmd.MarkFlagRequired("topic")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one learning map and print it as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := shutdown.NotifyContext(cmd.Context())
		defer stop()

		a, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		req := learnmap.GenerateRequest{Topic: genTopic, Level: genLevel}
		if cmd.Flags().Changed("no-verify") {
			verify := !genNoVerify
			req.VerifyURLs = &verify
		}
		resp, err := a.Services.Maps.Generate(ctx, req)
		if err != nil {
			return writeError(cmd.OutOrStdout(), err)
		}
		return writeJSON(cmd.OutOrStdout(), resp)
	},
}
