package inquiro

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/inquiro/pkg/config"
	"github.com/soundprediction/inquiro/pkg/errtrack"
)

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Run a single research query",
	Long: `Run a single research query against the search provider and print the
resulting report as JSON. Useful for scripting and quick checks without
starting the HTTP server.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

var (
	researchDepth   int
	researchTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(researchCmd)

	researchCmd.Flags().IntVar(&researchDepth, "depth", 3, "Research depth (1-5)")
	researchCmd.Flags().DurationVar(&researchTimeout, "timeout", 2*time.Minute, "Overall timeout")
	researchCmd.Flags().String("search-api-key", "", "Search provider API key")
}

func runResearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("search-api-key") {
		cfg.Search.APIKey, _ = cmd.Flags().GetString("search-api-key")
	}
	if cfg.Search.APIKey == "" {
		return fmt.Errorf("search API key is required (set TAVILY_API_KEY or --search-api-key)")
	}

	app, err := initializeApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize Inquiro: %w", err)
	}
	defer app.close()

	ctx, cancel := context.WithTimeout(context.Background(), researchTimeout)
	defer cancel()

	query := strings.Join(args, " ")
	report, err := app.agent.SearchAndAnalyze(ctx, query, researchDepth)
	if err != nil {
		// Print the structured envelope so scripted callers can parse failures too.
		envelope := errtrack.FormatError(err)
		raw, _ := json.MarshalIndent(envelope, "", "  ")
		fmt.Fprintln(os.Stderr, string(raw))
		return err
	}

	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	fmt.Println(string(raw))
	return nil
}
