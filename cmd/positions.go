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
var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "List currently held exchange positions",
	Long:  `Fetches and displays every ticker the account currently holds a position in.`,
	RunE:  runPositions,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(positionsCmd)
}

func runPositions(cmd *cobra.Command, args []string) error {
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

	client, err := newExchangeClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	positions, err := client.GetPositions(ctx, "")
	if err != nil {
		return fmt.Errorf("get positions: %w", err)
	}

	held := make([]int, 0, len(positions))
	for i, p := range positions {
		if p.Position != 0 {
			held = append(held, i)
		}
	}
	if len(held) == 0 {
		fmt.Println("No open positions.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tQUANTITY\tMARKET EXPOSURE\tREALIZED PNL")
	for _, i := range held {
		p := positions[i]
		fmt.Fprintf(w, "%s\t%d\t$%.2f\t$%.2f\n",
			p.Ticker, p.Position, float64(p.MarketExposure)/100, float64(p.RealizedPnl)/100)
	}
	return w.Flush()
}
