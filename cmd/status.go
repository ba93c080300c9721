package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/repository"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/status"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/watcher"
)

var (
	watchStatus   bool
	watchInterval int
	recordStatus  bool
)

var statusCmd = &cobra.Command{
	Use:   "status <deposit-address>",
	Short: "Check the status of a swap",
	Long: `Check the execution status of a cross-chain swap by its deposit address.
The upstream payload is normalized into a fixed shape before display.

Examples:
  loofta status 0x1234...abcd
  loofta status 0x1234...abcd --json
  loofta status 0x1234...abcd --watch --interval 10
  loofta status 0x1234...abcd --watch --record`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates until the swap settles")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 0, "Polling interval in seconds (when watching, defaults to watch.interval)")
	statusCmd.Flags().BoolVar(&recordStatus, "record", false, "Record every status snapshot in the local database")
}

func runStatus(cmd *cobra.Command, args []string) {
	depositAddress := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := loadConfig()
	log := cliLogger(cmd)

	var recorder status.SnapshotRecorder
	if recordStatus {
		db, err := repository.InitDB(cfg.DBPath)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		defer db.Close()
		recorder = repository.NewSnapshotRepo(db)
	}

	svc := status.NewService(newClient(cfg), recorder, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchStatus {
		interval := cfg.Watch.Interval
		if watchInterval > 0 {
			interval = time.Duration(watchInterval) * time.Second
		}
		w := watcher.New(svc, interval, cfg.Watch.MaxBackoff, log)
		watchSwapStatus(ctx, w, depositAddress, interval, jsonOutput)
		return
	}

	checkSwapStatus(ctx, svc, depositAddress, jsonOutput)
}

func checkSwapStatus(ctx context.Context, svc *status.Service, depositAddress string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking swap status..."
		s.Start()
	}

	st, err := svc.Get(ctx, depositAddress)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(st)
	} else {
		displayStatus(st, depositAddress)
	}
}

func watchSwapStatus(ctx context.Context, w *watcher.Watcher, depositAddress string, interval time.Duration, jsonOutput bool) {
	if !jsonOutput {
		fmt.Printf("\nWatching swap status (Deposit Address: %s)\n", color.CyanString(depositAddress))
		fmt.Printf("Checking every %s. Press Ctrl+C to stop.\n\n", interval)
	}

	final, err := w.Watch(ctx, depositAddress, func(st *status.NormalizedExecutionStatus) {
		if jsonOutput {
			line, _ := json.Marshal(st)
			fmt.Println(string(line))
			return
		}
		displayStatus(st, depositAddress)
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		printError(err)
		os.Exit(1)
	}

	if !jsonOutput {
		printSuccess(fmt.Sprintf("Swap settled with status %s", getColoredStatus(final.Status)))
	}
}

func displayStatus(st *status.NormalizedExecutionStatus, depositAddress string) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        SWAP STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Deposit Address: %s\n", color.CyanString(depositAddress))
	fmt.Printf("  Status:          %s\n", getColoredStatus(st.Status))
	fmt.Printf("  Last Updated:    %s\n", st.UpdatedAt)

	if st.OriginAsset != nil {
		fmt.Printf("  Origin Asset:    %s\n", *st.OriginAsset)
	}
	if st.DestinationAsset != nil {
		fmt.Printf("  Dest Asset:      %s\n", *st.DestinationAsset)
	}

	sd := st.SwapDetails

	// Display origin chain transactions (deposits)
	for _, hash := range txHashes(sd.OriginChainTxHashes) {
		fmt.Printf("  Deposit Tx:      %s\n", color.HiBlackString(hash))
	}

	// Display destination chain transactions (withdrawals)
	for _, hash := range txHashes(sd.DestinationChainTxHashes) {
		fmt.Printf("  Withdrawal Tx:   %s\n", color.HiBlackString(hash))
	}

	if sd.AmountInFormatted != nil {
		fmt.Printf("  Amount In:       %v\n", sd.AmountInFormatted)
	}
	if sd.AmountOutFormatted != nil {
		fmt.Printf("  Amount Out:      %v\n", sd.AmountOutFormatted)
	}
	if refunded := fmt.Sprint(sd.RefundedAmountFormatted); refunded != "0" {
		fmt.Printf("  Refunded:        %s\n", color.RedString(refunded))
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

// txHashes pulls printable hashes out of upstream entries, which are either
// plain strings or {"hash": ...} objects.
func txHashes(entries []any) []string {
	var out []string
	for _, e := range entries {
		switch v := e.(type) {
		case string:
			if v != "" {
				out = append(out, v)
			}
		case map[string]any:
			if h, ok := v["hash"].(string); ok && h != "" {
				out = append(out, h)
			}
		}
	}
	return out
}

func getColoredStatus(s string) string {
	s = strings.ToUpper(s)

	switch s {
	case status.StatusSuccess:
		return color.GreenString(s)
	case status.StatusKnownDepositTx, status.StatusPendingDeposit, status.StatusProcessing:
		return color.YellowString(s)
	case status.StatusFailed, status.StatusRefunded:
		return color.RedString(s)
	case status.StatusIncompleteDeposit:
		return color.MagentaString(s)
	default:
		return s
	}
}

func printJSON(v any) {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(jsonData))
}
