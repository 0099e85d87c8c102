package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ethiostartup.com/advisor/internal/config"
	"ethiostartup.com/advisor/internal/logging"
	"ethiostartup.com/advisor/internal/remote"
	"ethiostartup.com/advisor/internal/session"
	"ethiostartup.com/advisor/internal/tui"
)

var (
	apiURL  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Terminal client for the Ethio Startup Advisor",
	Long: `Ask questions about Ethiopian business registration, licensing and
investment law against a running advisor service.

Keys:
  ctrl+b  toggle the sidebar      ctrl+p  process documents
  ctrl+x  close the sidebar       ctrl+r  reprocess documents
  enter   ask the question        ctrl+l  clear chat history
  pgup/pgdown, wheel  scroll      ctrl+c  quit`,
	SilenceUsage: true,
	RunE:         runAdvisor,
}

func init() {
	rootCmd.Flags().StringVar(&apiURL, "api-url", "", "advisor service base URL (overrides ADVISOR_API_URL)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "write debug logs")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAdvisor(cmd *cobra.Command, args []string) error {
	foundDotEnv := config.LoadConfig()
	cfg := config.AppConfig
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	if verbose {
		cfg.LogLevel = "DEBUG"
	}

	logger := logging.New(logging.Options{FilePath: cfg.LogFile, Level: cfg.LogLevel})
	defer func() { _ = logger.Sync() }()

	logger.Info("advisor starting",
		zap.String("api_url", cfg.APIBaseURL),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Bool("dotenv", foundDotEnv),
	)

	client := remote.NewClient(cfg.APIBaseURL,
		remote.WithTimeout(cfg.RequestTimeout),
		remote.WithLogger(logger),
	)
	sess := session.New(client, logger)

	if err := tui.Run(sess, tui.Options{CellWidthPx: cfg.CellWidthPx, Logger: logger}); err != nil {
		logger.Error("terminal ui exited with error", zap.Error(err))
		return err
	}
	logger.Info("advisor stopped")
	return nil
}
