package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/brabsmit/sportsbook-arb/internal/errkind"
	"github.com/brabsmit/sportsbook-arb/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var cancelOrdersCmd = &cobra.Command{
	Use:   "cancel-orders <order-id>...",
	Short: "Cancel one or more resting orders on the exchange",
	Long: `Cancels each given order ID on the exchange. A 404 (the order has
already filled or been cancelled) is treated as success.

Example:
  sportsbook-arb cancel-orders abc123 def456`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCancelOrders,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(cancelOrdersCmd)
}

func runCancelOrders(cmd *cobra.Command, args []string) error {
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

	var failed int
	for _, orderID := range args {
		if err := client.CancelOrder(ctx, orderID); err != nil {
			if status, ok := errkind.StatusOf(err); ok && status == 404 {
				fmt.Printf("cancelled %s (already gone)\n", orderID)
				continue
			}
			fmt.Printf("FAILED %s: %v\n", orderID, err)
			failed++
			continue
		}
		fmt.Printf("cancelled %s\n", orderID)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d cancellations failed", failed, len(args))
	}
	return nil
}
