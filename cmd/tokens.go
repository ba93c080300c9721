package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	oneclick "github.com/defuse-protocol/one-click-sdk-go"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/address"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/fees"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/parser"
)

var (
	filterChain  string
	filterSymbol string
	sampleAmount string
)

var tokensCmd = &cobra.Command{
	Use:     "list-tokens",
	Aliases: []string{"tokens", "ls"},
	Short:   "List supported tokens and their withdrawal unit scale",
	Long: `List the tokens of the NEAR Intents 1Click catalogue with the decimals and
smallest unit that withdraw-plan uses to convert amounts to base units.

With --amount, every row also shows the gross a sender-pays withdrawal of that
amount needs at the token's precision.

Examples:
  loofta list-tokens
  loofta list-tokens --chain sol
  loofta list-tokens --symbol USDC --amount 100`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterChain, "chain", "", "Filter by blockchain")
	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
	tokensCmd.Flags().StringVar(&sampleAmount, "amount", "", "Show the sender-pays gross for this amount per token")
}

// tokenScale is one catalogue entry seen through the fee calculator
type tokenScale struct {
	Symbol         string           `json:"symbol"`
	Chain          string           `json:"chain"`
	Family         address.Family   `json:"addressFamily"`
	Decimals       int32            `json:"decimals"`
	UnitSize       decimal.Decimal  `json:"unitSize"`
	Contract       string           `json:"contractAddress,omitempty"`
	GrossAmount    *decimal.Decimal `json:"grossAmount,omitempty"`
	GrossBaseUnits string           `json:"grossBaseUnits,omitempty"`
	PlanError      string           `json:"planError,omitempty"`
}

func runListTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := loadConfig()
	if err := cfg.RequireJWT(); err != nil {
		printError(err)
		os.Exit(1)
	}

	var amount *decimal.Decimal
	if sampleAmount != "" {
		a, err := parser.ParseAmount(sampleAmount)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		amount = &a
	}

	schedule, err := cfg.FeeSchedule()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching supported tokens..."
		s.Start()
	}

	tokens, err := newClient(cfg).GetSupportedTokens(cmd.Context())
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	scales := tokenScales(filterTokens(tokens, filterChain, filterSymbol), schedule, amount)

	if jsonOutput {
		printJSON(scales)
		return
	}
	displayTokens(scales, amount)
}

// filterTokens keeps tokens on chain (exact, case-insensitive) whose symbol contains symbol
func filterTokens(tokens []oneclick.TokenResponse, chain, symbol string) []oneclick.TokenResponse {
	var filtered []oneclick.TokenResponse
	for _, token := range tokens {
		if chain != "" && !strings.EqualFold(token.GetBlockchain(), chain) {
			continue
		}
		if symbol != "" && !strings.Contains(strings.ToUpper(token.GetSymbol()), strings.ToUpper(symbol)) {
			continue
		}
		filtered = append(filtered, token)
	}
	return filtered
}

// tokenScales sorts tokens by chain then symbol and attaches unit scale and,
// when amount is set, the sender-pays plan at each token's precision.
func tokenScales(tokens []oneclick.TokenResponse, schedule fees.FeeSchedule, amount *decimal.Decimal) []tokenScale {
	out := make([]tokenScale, 0, len(tokens))
	for _, token := range tokens {
		decimals := int32(token.GetDecimals())
		row := tokenScale{
			Symbol:   token.GetSymbol(),
			Chain:    token.GetBlockchain(),
			Family:   address.FamilyOf(token.GetBlockchain()),
			Decimals: decimals,
			UnitSize: fees.UnitSize(decimals),
			Contract: token.GetContractAddress(),
		}

		if amount != nil {
			plan, err := fees.ComputeSenderPaysFees(*amount, schedule, decimals)
			if err != nil {
				row.PlanError = err.Error()
			} else {
				row.GrossAmount = &plan.GrossAmount
				row.GrossBaseUnits = plan.GrossBaseUnits.String()
			}
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !strings.EqualFold(out[i].Chain, out[j].Chain) {
			return strings.ToLower(out[i].Chain) < strings.ToLower(out[j].Chain)
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

func displayTokens(scales []tokenScale, amount *decimal.Decimal) {
	if len(scales) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                        SUPPORTED TOKENS / UNIT SCALE")
	fmt.Println(strings.Repeat("=", 90))
	if amount != nil {
		fmt.Printf("  Gross shown for a sender-pays withdrawal of %s\n", color.CyanString(amount.String()))
	}

	chains := 0
	prevChain := ""
	for _, row := range scales {
		if !strings.EqualFold(row.Chain, prevChain) || chains == 0 {
			chains++
			prevChain = row.Chain
			color.Cyan("\n%s  %s", strings.ToUpper(row.Chain), color.HiBlackString("(%s addresses)", row.Family))
			fmt.Println(strings.Repeat("-", 90))
		}

		line := fmt.Sprintf("  %-10s  %2d decimals  unit %-22s", color.YellowString(row.Symbol), row.Decimals, row.UnitSize.String())
		switch {
		case row.PlanError != "":
			line += color.RedString(row.PlanError)
		case row.GrossAmount != nil:
			line += fmt.Sprintf("gross %s (%s base units)", row.GrossAmount, row.GrossBaseUnits)
		}
		fmt.Println(line)
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens across %d blockchains\n\n", len(scales), chains)
}
