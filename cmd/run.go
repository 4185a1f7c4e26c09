package cmd

import (
	"fmt"

	"github.com/brabsmit/sportsbook-arb/internal/app"
	"github.com/brabsmit/sportsbook-arb/pkg/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the engine",
	Long: `Starts the engine, which will:
1. Match sportsbook games against the exchange's listed markets
2. Stream live order book updates over the exchange's WebSocket feed
3. Evaluate the strategy against every matched market on each tick
4. Manage resting exits and emergency bailouts on held positions

--single-ticker is logged at startup; it does not restrict which markets
are tracked.`,
	RunE: runEngine,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("single-ticker", "s", "", "Exchange ticker to log at startup (does not restrict tracking)")
}

func runEngine(cmd *cobra.Command, args []string) error {
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

	singleTicker, _ := cmd.Flags().GetString("single-ticker")

	opts := &app.Options{
		SingleTicker: singleTicker,
	}

	application, err := app.New(cfg, logger, opts)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	if err := application.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
