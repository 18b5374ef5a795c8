package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/learnmap-backend/internal/http/response"
	"github.com/yungbote/learnmap-backend/internal/platform/apierr"
)

var rootCmd = &cobra.Command{
	Use:           "learnmap",
	Short:         "Learning map generation service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, generateCmd, askCmd, watchCmd)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeError prints the same envelope the HTTP API returns and hands back an
// error so the process exits non-zero.
func writeError(w io.Writer, err error) error {
	env := response.ErrorEnvelope{Error: "Internal server error", Details: err.Error()}
	if ae, ok := apierr.As(err); ok {
		env = response.ErrorEnvelope{Error: ae.Message, Details: ae.Details}
	}
	_ = writeJSON(w, env)
	return err
}
