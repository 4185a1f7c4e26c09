package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brabsmit/sportsbook-arb/internal/kalshi"
	"github.com/brabsmit/sportsbook-arb/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Check the exchange account balance",
	Long:  `Fetches and displays the current exchange account balance.`,
	RunE:  runBalance,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
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

	bal, err := client.GetBalance(ctx)
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}

	fmt.Printf("Balance: $%.2f\n", float64(bal.Balance)/100)

	return nil
}

// newExchangeClient builds a kalshi.Client from cfg for the standalone
// inspection commands (balance, positions, list-markets, cancel-orders), which need
// the exchange's signed REST surface but not the rest of the engine.
func newExchangeClient(cfg *config.Config, logger *zap.Logger) (*kalshi.Client, error) {
	privKey, err := kalshi.LoadPrivateKey(cfg.ExchangePrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load exchange private key: %w", err)
	}
	return kalshi.NewClient(kalshi.Config{
		BaseURL:    cfg.ExchangeBaseURL,
		APIKeyID:   cfg.ExchangeAPIKeyID,
		PrivateKey: privKey,
		Logger:     logger,
	})
}
