package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lisabeyy/loofta-pay-public-sub001/config"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/address"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/fees"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/parser"
)

var (
	recipientPaysFees bool
	planChain         string
	planRecipient     string
	planDecimals      int
)

var withdrawPlanCmd = &cobra.Command{
	Use:     "withdraw-plan <amount> <asset>",
	Aliases: []string{"withdraw"},
	Short:   "Compute the gross amount to withdraw from the privacy pool",
	Long: `Compute how much to withdraw from the privacy pool so the recipient receives
the requested amount after pool fees. With --recipient-pays-fees the amount is
withdrawn as-is and the fee comes out of what the recipient receives.

When --decimals is not given, the asset's precision is looked up in the 1Click
token catalogue, falling back to fees.decimals from the configuration.

Examples:
  loofta withdraw-plan 100 USDC
  loofta withdraw-plan withdraw 2.5 SOL --chain sol --recipient <solana-addr>
  loofta withdraw-plan 100 USDC --recipient-pays-fees
  loofta withdraw-plan 100 USDC --decimals 6 --json`,
	Args: cobra.MinimumNArgs(1),
	Run:  runWithdrawPlan,
}

func init() {
	rootCmd.AddCommand(withdrawPlanCmd)

	withdrawPlanCmd.Flags().BoolVar(&recipientPaysFees, "recipient-pays-fees", false, "Deduct pool fees from the recipient instead of grossing up")
	withdrawPlanCmd.Flags().StringVar(&planChain, "chain", "", "Chain the asset is withdrawn on (optional)")
	withdrawPlanCmd.Flags().StringVar(&planRecipient, "recipient", "", "Recipient address, validated for --chain (optional)")
	withdrawPlanCmd.Flags().IntVar(&planDecimals, "decimals", -1, "Asset decimals (skips the token catalogue lookup)")
}

func runWithdrawPlan(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Parse the command
	req, err := parser.ParseWithdrawCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if planRecipient != "" {
		if err := address.Validate(planChain, planRecipient); err != nil {
			printError(err)
			os.Exit(1)
		}
	}

	cfg := loadConfig()
	schedule, err := cfg.FeeSchedule()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	decimals := resolveDecimals(cmd, cfg, req.Asset, jsonOutput)

	mode := fees.SenderPaysFees
	if recipientPaysFees {
		mode = fees.RecipientPaysFees
	}

	plan, err := fees.Compute(mode, req.Amount, schedule, decimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(map[string]any{
			"asset":             req.Asset,
			"chain":             planChain,
			"recipient":         planRecipient,
			"mode":              plan.Mode,
			"requestedAmount":   plan.RequestedAmount,
			"grossAmount":       plan.GrossAmount,
			"grossBaseUnits":    plan.GrossBaseUnits.String(),
			"impliedFee":        plan.ImpliedFee,
			"recipientReceives": plan.RecipientReceives,
			"decimals":          plan.Decimals,
			"schedule":          schedule,
		})
		return
	}

	displayPlan(plan, req.Asset, schedule)
}

// resolveDecimals picks the asset precision: --decimals, then the token catalogue, then config
func resolveDecimals(cmd *cobra.Command, cfg *config.Config, asset string, quiet bool) int32 {
	decimals, set, err := flagDecimals(planDecimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if set {
		return decimals
	}
	if cfg.RequireJWT() != nil {
		return cfg.Fees.Decimals
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !quiet {
		s.Suffix = " Looking up asset decimals..."
		s.Start()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()
	decimals, err = newClient(cfg).AssetDecimals(ctx, asset, planChain)
	if !quiet {
		s.Stop()
	}

	if err != nil {
		cliLogger(cmd).Warn("token lookup failed, using configured decimals",
			"asset", asset,
			"decimals", cfg.Fees.Decimals,
			"error", err,
		)
		return cfg.Fees.Decimals
	}
	return decimals
}

// flagDecimals range-checks --decimals before narrowing it; set is false for the -1 default
func flagDecimals(n int) (decimals int32, set bool, err error) {
	if n < 0 {
		return 0, false, nil
	}
	if n > fees.MaxDecimals {
		return 0, false, fmt.Errorf("%w: --decimals must be at most %d, got %d", fees.ErrInvalidInput, fees.MaxDecimals, n)
	}
	return int32(n), true, nil
}

func displayPlan(plan *fees.WithdrawalPlan, asset string, schedule fees.FeeSchedule) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                      WITHDRAWAL PLAN")
	fmt.Println(strings.Repeat("=", 70))

	modeLabel := "sender pays fees"
	if plan.Mode == fees.RecipientPaysFees {
		modeLabel = "recipient pays fees"
	}

	fmt.Printf("\n  Mode:               %s\n", color.CyanString(modeLabel))
	fmt.Printf("  Requested:          %s %s\n", plan.RequestedAmount, asset)
	fmt.Printf("  Withdraw (gross):   %s %s\n", color.YellowString(plan.GrossAmount.String()), asset)
	fmt.Printf("  Base units:         %s (%d decimals)\n", plan.GrossBaseUnits, plan.Decimals)
	fmt.Printf("  Fee:                %s %s\n", plan.ImpliedFee.StringFixed(plan.Decimals), asset)
	fmt.Printf("  Recipient receives: %s %s\n", color.GreenString(plan.RecipientReceives.StringFixed(plan.Decimals)), asset)

	fmt.Println(color.HiBlackString("\n  Pool fee: %s%% + %s (minimum %s)",
		schedule.ProportionalRate.Shift(2), schedule.FixedFee, schedule.MinimumNet))

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}
