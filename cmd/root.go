package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/lisabeyy/loofta-pay-public-sub001/config"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/client"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "loofta",
	Short: "Private withdrawal fee planning and swap status tracking",
	Long: `loofta plans privacy pool withdrawals so the recipient receives an exact
amount after pool fees, and tracks NEAR Intents 1Click swaps by deposit address.

Examples:
  loofta withdraw-plan 100 USDC
  loofta withdraw-plan 100 USDC --recipient-pays-fees
  loofta status <deposit-address> --watch
  loofta list-tokens --chain sol
  loofta serve`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

// loadConfig loads configuration, exiting on failure
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	return cfg
}

// cliLogger logs to stderr so JSON output on stdout stays clean.
// Without --verbose only warnings and errors are shown.
func cliLogger(cmd *cobra.Command) *slog.Logger {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return logger.New(config.EnvLocal, os.Stderr)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func newClient(cfg *config.Config) *client.OneClickClient {
	return client.NewOneClickClient(cfg.JWTToken, cfg.BaseURL, &http.Client{Timeout: cfg.RequestTimeout})
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
