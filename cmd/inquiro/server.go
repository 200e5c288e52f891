package inquiro

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/inquiro"
	"github.com/soundprediction/inquiro/pkg/alert"
	"github.com/soundprediction/inquiro/pkg/config"
	"github.com/soundprediction/inquiro/pkg/errtrack"
	inquiroLogger "github.com/soundprediction/inquiro/pkg/logger"
	"github.com/soundprediction/inquiro/pkg/search"
	"github.com/soundprediction/inquiro/pkg/server"
	"github.com/soundprediction/inquiro/pkg/server/handlers"
	"github.com/soundprediction/inquiro/pkg/storage"
	"github.com/soundprediction/inquiro/pkg/synthesis"
	"github.com/soundprediction/inquiro/pkg/telemetry"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Inquiro HTTP server",
	Long: `Start the Inquiro HTTP server to provide REST API access to the research pipeline.

The server provides endpoints for:
- Running research queries
- Retrieving stored research reports
- Synthesizing answers from stored reports
- Error statistics
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// Search provider flags
	serverCmd.Flags().String("search-api-key", "", "Search provider API key")
	serverCmd.Flags().String("search-base-url", "", "Search provider base URL")

	// Research flags
	serverCmd.Flags().Int("max-urls", 0, "Maximum sources per report")
	serverCmd.Flags().Int("rate-limit", 0, "Maximum concurrent provider calls")

	// Storage flags
	serverCmd.Flags().String("storage-type", "", "Storage backend (local, badger)")
	serverCmd.Flags().String("storage-path", "", "Storage data directory")

	// Synthesis flags
	serverCmd.Flags().String("synthesis-api-key", "", "Synthesis API key")
	serverCmd.Flags().String("synthesis-model", "", "Synthesis model")

	// Telemetry flags
	serverCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for error telemetry")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	overrideConfigWithFlags(cmd, cfg)

	// Validate configuration
	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize the application
	fmt.Println("Initializing Inquiro...")
	app, err := initializeApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize Inquiro: %w", err)
	}
	defer app.close()

	// Create and setup server
	srv := server.New(cfg, server.Deps{
		Researcher:  app.agent,
		Reporter:    app.agent,
		Store:       app.store,
		Synthesizer: app.synthesizer,
	})
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)

		// Create shutdown context with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Shutdown server
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	// Server flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	// Search provider flags
	if cmd.Flags().Changed("search-api-key") {
		cfg.Search.APIKey, _ = cmd.Flags().GetString("search-api-key")
	}
	if cmd.Flags().Changed("search-base-url") {
		cfg.Search.BaseURL, _ = cmd.Flags().GetString("search-base-url")
	}

	// Research flags
	if cmd.Flags().Changed("max-urls") {
		cfg.Research.MaxURLs, _ = cmd.Flags().GetInt("max-urls")
	}
	if cmd.Flags().Changed("rate-limit") {
		cfg.Research.RateLimit, _ = cmd.Flags().GetInt("rate-limit")
	}

	// Storage flags
	if cmd.Flags().Changed("storage-type") {
		cfg.Storage.Type, _ = cmd.Flags().GetString("storage-type")
	}
	if cmd.Flags().Changed("storage-path") {
		cfg.Storage.Path, _ = cmd.Flags().GetString("storage-path")
	}

	// Synthesis flags
	if cmd.Flags().Changed("synthesis-api-key") {
		cfg.Synthesis.APIKey, _ = cmd.Flags().GetString("synthesis-api-key")
	}
	if cmd.Flags().Changed("synthesis-model") {
		cfg.Synthesis.Model, _ = cmd.Flags().GetString("synthesis-model")
	}

	// Telemetry flags
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	if cfg.Search.APIKey == "" {
		return fmt.Errorf("search API key is required (set TAVILY_API_KEY or --search-api-key)")
	}
	return nil
}

// app bundles the initialized collaborators so the command can close them on exit.
type app struct {
	agent       *inquiro.Agent
	store       storage.Store
	synthesizer handlers.Synthesizer
	telemetry   *telemetry.ParquetHandler
}

func (a *app) close() {
	if a.telemetry != nil {
		if err := a.telemetry.Flush(); err != nil {
			fmt.Printf("Warning: failed to flush telemetry: %v\n", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			fmt.Printf("Warning: failed to close storage: %v\n", err)
		}
	}
}

func initializeApp(cfg *config.Config) (*app, error) {
	logger := slog.New(inquiroLogger.NewColorHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	a := &app{}

	// Error telemetry using Parquet
	trackingPath := cfg.Telemetry.ParquetPath
	if trackingPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		trackingPath = filepath.Join(homeDir, ".inquiro", "telemetry")
	}
	parquetHandler, err := telemetry.NewParquetHandler(logger.Handler(), trackingPath)
	if err != nil {
		fmt.Printf("Warning: Failed to initialize error telemetry: %v\n", err)
	} else {
		logger = slog.New(parquetHandler)
		a.telemetry = parquetHandler
		fmt.Printf("Error telemetry enabled at: %s\n", trackingPath)
	}

	// Search provider with circuit breaker
	tavilyOpts := []search.TavilyOption{search.WithLogger(logger)}
	if cfg.Search.BaseURL != "" {
		tavilyOpts = append(tavilyOpts, search.WithBaseURL(cfg.Search.BaseURL))
	}
	tavily, err := search.NewTavilyClient(cfg.Search.APIKey, tavilyOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}

	var provider search.Provider = tavily
	if cfg.CircuitBreaker.Enabled {
		var alerter alert.Alerter = &alert.NoOpAlerter{}
		if cfg.Alert.Enabled {
			alerter = alert.NewEmailAlerter(cfg.Alert)
		}
		provider = search.NewCircuitBreakerProvider(tavily, search.BreakerSettings{
			Name:             "tavily",
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			Timeout:          time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, alerter)
	}

	// Error ledger
	tracker := errtrack.NewTracker("error_stats.json", logger)

	// Research agent
	a.agent = inquiro.NewAgent(provider, tracker, inquiro.AgentConfig{
		MaxURLs:     cfg.Research.MaxURLs,
		RateLimit:   cfg.Research.RateLimit,
		CacheExpiry: time.Duration(cfg.Research.CacheExpiryMinutes) * time.Minute,
	}, logger)

	// Storage
	a.store, err = storage.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Synthesis is optional: without an API key the endpoint reports 503.
	if cfg.Synthesis.APIKey != "" {
		synth, err := synthesis.NewAgent(cfg.Synthesis, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create synthesis agent: %w", err)
		}
		a.synthesizer = synth
		fmt.Printf("Synthesis enabled with model: %s\n", cfg.Synthesis.Model)
	}

	fmt.Printf("Inquiro initialized with storage backend: %s\n", cfg.Storage.Type)
	return a, nil
}
