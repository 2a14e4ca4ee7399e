package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityPool/internal/amm"
)

func newFundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Issue an external asset to an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			asset, err := addressFlag(cmd, "asset")
			if err != nil {
				return err
			}
			to, err := addressFlag(cmd, "to")
			if err != nil {
				return err
			}
			amount, _ := cmd.Flags().GetUint64("amount")
			return withRuntime(cmd, true, func(_ context.Context, rt *runtime) error {
				if err := rt.ledger.Fund(asset, to, amount); err != nil {
					return err
				}
				rt.logger.Info("account funded",
					zap.String("asset", asset.Hex()),
					zap.String("to", to.Hex()),
					zap.Uint64("amount", amount),
				)
				return printJSON(cmd.OutOrStdout(), map[string]uint64{"balance": rt.ledger.Balance(asset, to)})
			})
		},
	}
	cmd.Flags().String("asset", "", "asset address")
	cmd.Flags().String("to", "", "recipient address")
	cmd.Flags().Uint64("amount", 0, "amount in base units")
	return cmd
}

func newDepositCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Add liquidity for an exact LP amount",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := addressFlag(cmd, "pool")
			if err != nil {
				return err
			}
			who, err := addressFlag(cmd, "from")
			if err != nil {
				return err
			}
			lp, _ := cmd.Flags().GetUint64("lp-amount")
			maxX, _ := cmd.Flags().GetUint64("max-x")
			maxY, _ := cmd.Flags().GetUint64("max-y")
			rawExp, _ := cmd.Flags().GetString("expiration")

			return withRuntime(cmd, true, func(ctx context.Context, rt *runtime) error {
				exp, err := rt.expiration(ctx, rawExp)
				if err != nil {
					return err
				}
				res, err := rt.engine.Deposit(ctx, amm.DepositRequest{
					Pool: pool, Depositor: who, LPAmount: lp, MaxX: maxX, MaxY: maxY, Expiration: exp,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().String("pool", "", "pool address")
	cmd.Flags().String("from", "", "depositor address")
	cmd.Flags().Uint64("lp-amount", 0, "LP tokens to mint")
	cmd.Flags().Uint64("max-x", 0, "maximum X to contribute")
	cmd.Flags().Uint64("max-y", 0, "maximum Y to contribute")
	cmd.Flags().String("expiration", "", "deadline (unix seconds or RFC3339); defaults to now + deadline-ttl")
	return cmd
}

func newWithdrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Burn LP tokens for a share of the reserves",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := addressFlag(cmd, "pool")
			if err != nil {
				return err
			}
			who, err := addressFlag(cmd, "from")
			if err != nil {
				return err
			}
			lp, _ := cmd.Flags().GetUint64("lp-amount")
			minX, _ := cmd.Flags().GetUint64("min-x")
			minY, _ := cmd.Flags().GetUint64("min-y")
			rawExp, _ := cmd.Flags().GetString("expiration")

			return withRuntime(cmd, true, func(ctx context.Context, rt *runtime) error {
				exp, err := rt.expiration(ctx, rawExp)
				if err != nil {
					return err
				}
				res, err := rt.engine.Withdraw(ctx, amm.WithdrawRequest{
					Pool: pool, Withdrawer: who, LPAmount: lp, MinX: minX, MinY: minY, Expiration: exp,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().String("pool", "", "pool address")
	cmd.Flags().String("from", "", "withdrawer address")
	cmd.Flags().Uint64("lp-amount", 0, "LP tokens to burn")
	cmd.Flags().Uint64("min-x", 0, "minimum X to receive")
	cmd.Flags().Uint64("min-y", 0, "minimum Y to receive")
	cmd.Flags().String("expiration", "", "deadline (unix seconds or RFC3339); defaults to now + deadline-ttl")
	return cmd
}

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Trade one pool asset for the other",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := addressFlag(cmd, "pool")
			if err != nil {
				return err
			}
			who, err := addressFlag(cmd, "from")
			if err != nil {
				return err
			}
			xToY, _ := cmd.Flags().GetBool("x-to-y")
			amount, _ := cmd.Flags().GetUint64("amount-in")
			minOut, _ := cmd.Flags().GetUint64("min-out")
			rawExp, _ := cmd.Flags().GetString("expiration")

			return withRuntime(cmd, true, func(ctx context.Context, rt *runtime) error {
				exp, err := rt.expiration(ctx, rawExp)
				if err != nil {
					return err
				}
				res, err := rt.engine.Swap(ctx, amm.SwapRequest{
					Pool: pool, Trader: who, XToY: xToY, AmountIn: amount, MinOut: minOut, Expiration: exp,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().String("pool", "", "pool address")
	cmd.Flags().String("from", "", "trader address")
	cmd.Flags().Bool("x-to-y", true, "swap direction; false trades Y for X")
	cmd.Flags().Uint64("amount-in", 0, "input amount")
	cmd.Flags().Uint64("min-out", 0, "minimum output")
	cmd.Flags().String("expiration", "", "deadline (unix seconds or RFC3339); defaults to now + deadline-ttl")
	return cmd
}
