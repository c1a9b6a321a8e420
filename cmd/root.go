package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/signalnine/streamcheck/internal/ctxlog"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "streamcheck",
		Short: "Streaming performance checks for USRP software-defined radios",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := ctxlog.New(logLevel, logFormat, os.Stderr)
			slog.SetDefault(logger)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(ctxlog.WithLogger(ctx, logger))
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "streamcheck.yaml", "config file path")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newValidateCmd())
	return root
}
