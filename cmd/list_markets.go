package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/brabsmit/sportsbook-arb/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var listMarketsCmd = &cobra.Command{
	Use:   "list-markets",
	Short: "List open exchange markets for the configured series",
	Long:  `Fetches and displays open markets from the exchange for debugging purposes.`,
	RunE:  runListMarkets,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(listMarketsCmd)
	listMarketsCmd.Flags().StringP("status", "t", "open", "Market status filter: open, closed, settled")
}

func runListMarkets(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	status, _ := cmd.Flags().GetString("status")

	client, err := newExchangeClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	markets, err := client.GetMarkets(ctx, cfg.ExchangeSeriesTicker, status)
	if err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}

	if len(markets) == 0 {
		fmt.Println("No markets found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tTITLE\tYES BID/ASK\tNO BID/ASK\tVOLUME")
	for _, m := range markets {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%d/%d\t%d\n",
			m.Ticker, truncateTitle(m.Title, 50), m.YesBid, m.YesAsk, m.NoBid, m.NoAsk, m.Volume)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d markets\n", len(markets))
	return nil
}

// truncateTitle shortens title to max bytes, replacing the tail with an
// ellipsis so it still fits a terminal's tabwriter column.
func truncateTitle(title string, max int) string {
	if len(title) <= max {
		return title
	}
	return title[:max-3] + "..."
}
