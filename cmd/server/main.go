package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ethiostartup.com/advisor/internal/api"
	"ethiostartup.com/advisor/internal/config"
	"ethiostartup.com/advisor/internal/core"
	"ethiostartup.com/advisor/internal/logging"
	"ethiostartup.com/advisor/internal/store"
)

var (
	port       string
	dataDir    string
	verbose    bool
	ingestOnly bool
)

var rootCmd = &cobra.Command{
	Use:          "server",
	Short:        "Ethio Startup Advisor API",
	Long:         "Serves the advisor API used by the terminal client: readiness, document processing, questions and chat history.",
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().StringVar(&port, "port", "", "HTTP port (overrides HTTP_PORT)")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "folder of .md/.txt legal documents (overrides DATA_DIR)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.Flags().BoolVar(&ingestOnly, "ingest", false, "ingest the data folder and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	foundDotEnv := config.LoadConfig()
	cfg := config.AppConfig
	if port != "" {
		cfg.HTTPPort = port
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if verbose {
		cfg.LogLevel = "DEBUG"
	}

	logger := logging.New(logging.Options{FilePath: cfg.ServerLogFile, Level: cfg.LogLevel, Console: true})
	defer func() { _ = logger.Sync() }()
	if !foundDotEnv {
		logger.Debug("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbStore.Close()

	if ingestOnly {
		logger.Info("starting data ingestion", zap.String("data_dir", cfg.DataDir))
		summary, err := dbStore.IngestDataFromDir(ctx, cfg.DataDir)
		if err != nil {
			return fmt.Errorf("data ingestion failed: %w", err)
		}
		logger.Info("data ingestion complete",
			zap.Int("documents", summary.Documents),
			zap.Int("chunks", summary.Chunks),
		)
		return nil
	}

	answerer, err := newAnswerer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := answerer.Close(); err != nil {
			logger.Warn("closing answerer", zap.Error(err))
		}
	}()

	advisor := core.NewAdvisorService(dbStore, answerer, cfg.DataDir, cfg.HistoryLimit, logger)
	apiHandler := api.NewAPIHandler(advisor, logger)
	router := api.NewRouter(apiHandler, logger)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", serverAddr), zap.String("data_dir", cfg.DataDir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("could not listen on %s: %w", serverAddr, err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exiting gracefully")
	return nil
}

func newAnswerer(ctx context.Context, cfg config.Config, logger *zap.Logger) (core.Answerer, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, answering offline")
		return core.OfflineAnswerer{}, nil
	}
	llm, err := core.NewLLMService(ctx, cfg.GeminiAPIKey, logger)
	if err != nil {
		return nil, err
	}
	return llm, nil
}
