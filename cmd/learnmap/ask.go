package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/learnmap-backend/internal/app"
	"github.com/yungbote/learnmap-backend/internal/chat"
	"github.com/yungbote/learnmap-backend/internal/platform/shutdown"
)

var (
	askTopic       string
	askQuestion    string
	askContextFile string
)

func init() {
	askCmd.Flags().StringVarP(&askTopic, "topic", "t", "", "Topic the question is about")
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "Question to ask")
	askCmd.Flags().StringVar(&askContextFile, "context-file", "", "File holding the learning map context")
	_ = askCmd.MarkFlagRequired("topic")
	_ = askCmd.MarkFlagRequired("question")
}

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a follow-up question about a topic",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := chat.AskRequest{Topic: askTopic, Question: askQuestion}
		if askContextFile != "" {
			b, err := os.ReadFile(askContextFile)
			if err != nil {
				return fmt.Errorf("read context file: %w", err)
			}
			req.LearningMapContext = string(b)
		}

		ctx, stop := shutdown.NotifyContext(cmd.Context())
		defer stop()

		a, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		ans, err := a.Services.Chat.Ask(ctx, req)
		if err != nil {
			return writeError(cmd.OutOrStdout(), err)
		}
		return writeJSON(cmd.OutOrStdout(), ans)
	},
}
