package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "sportsbook-arb",
	Short: "Sports-market arbitrage engine",
	Long: `Matches sportsbook odds against a prediction-market exchange, computes a
vig-free fair value for each matched game, and trades the edge between
fair value and the exchange's own order book.

The engine polls a sportsbook odds feed and the exchange's market list,
builds a matchup index between the two, and streams live order book
updates over the exchange's WebSocket feed while it trades.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	// Flags can be added here if needed
}
