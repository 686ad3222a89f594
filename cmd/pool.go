package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/frahmantamala/revolv-ledger/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var poolCmd = &cobra.Command{
	Use:   "pool [user-id]",
	Short: "Print reinvestment pools",
	Long:  `Print the reinvestment pool of one user, or of every user when no id is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPool,
}

func runPool(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || userID <= 0 {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		pool, err := app.Ledger.ReinvestPool(ctx, userID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "user %d: %s\n", userID, pool.StringFixed(ledger.Scale))
		return nil
	}

	pools, err := app.Ledger.ReinvestPools(ctx)
	if err != nil {
		return err
	}
	return printPools(cmd, pools)
}

func printPools(cmd *cobra.Command, pools map[int64]decimal.Decimal) error {
	out := cmd.OutOrStdout()
	if len(pools) == 0 {
		fmt.Fprintln(out, "no reinvestment pools")
		return nil
	}
	total := decimal.Zero
	for _, userID := range ledger.SortedUserIDs(pools) {
		fmt.Fprintf(out, "user %d: %s\n", userID, pools[userID].StringFixed(ledger.Scale))
		total = total.Add(pools[userID])
	}
	fmt.Fprintf(out, "total: %s\n", total.StringFixed(ledger.Scale))
	return nil
}
