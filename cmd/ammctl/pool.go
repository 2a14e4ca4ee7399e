package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityPool/internal/amm"
	"liquidityPool/internal/model"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a pool for an asset pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			initializer, err := addressFlag(cmd, "initializer")
			if err != nil {
				return err
			}
			assetX, err := addressFlag(cmd, "asset-x")
			if err != nil {
				return err
			}
			assetY, err := addressFlag(cmd, "asset-y")
			if err != nil {
				return err
			}
			rawAuthority, _ := cmd.Flags().GetString("authority")
			authority, err := model.ParseOptionalAddress(rawAuthority)
			if err != nil {
				return fmt.Errorf("authority: %w", err)
			}
			seed, _ := cmd.Flags().GetUint64("seed")
			fee, _ := cmd.Flags().GetUint16("fee-bps")

			return withRuntime(cmd, true, func(ctx context.Context, rt *runtime) error {
				cfg, err := rt.engine.Initialize(ctx, amm.InitializeRequest{
					Initializer: initializer,
					AssetX:      assetX,
					AssetY:      assetY,
					Seed:        seed,
					FeeBps:      fee,
					Authority:   authority,
				})
				if err != nil {
					return err
				}
				rt.logger.Info("pool initialized", zap.String("pool", cfg.Address.Hex()), zap.Uint16("fee_bps", cfg.FeeBps))
				return printJSON(cmd.OutOrStdout(), cfg)
			})
		},
	}
	cmd.Flags().String("initializer", "", "initializer address")
	cmd.Flags().String("asset-x", "", "first asset address")
	cmd.Flags().String("asset-y", "", "second asset address")
	cmd.Flags().Uint64("seed", 0, "pool seed, disambiguates pools of the same pair")
	cmd.Flags().Uint16("fee-bps", 30, "swap fee in basis points (0-10000)")
	cmd.Flags().String("authority", "", "optional lock authority address")
	return cmd
}

func newLockCmd(locked bool) *cobra.Command {
	use, short := "unlock", "Allow trading on a pool"
	if locked {
		use, short = "lock", "Halt trading on a pool"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := addressFlag(cmd, "pool")
			if err != nil {
				return err
			}
			caller, err := addressFlag(cmd, "caller")
			if err != nil {
				return err
			}
			return withRuntime(cmd, true, func(ctx context.Context, rt *runtime) error {
				cfg, err := rt.engine.SetLocked(ctx, pool, caller, locked)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), cfg)
			})
		},
	}
	cmd.Flags().String("pool", "", "pool address")
	cmd.Flags().String("caller", "", "authority address")
	return cmd
}

type poolView struct {
	model.PoolConfig
	Reserves model.ReserveState `json:"reserves"`
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print pool records and reserves",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _ := cmd.Flags().GetString("pool")
			return withRuntime(cmd, false, func(_ context.Context, rt *runtime) error {
				var pools []model.PoolConfig
				if raw != "" {
					addr, err := model.ParseAddress(raw)
					if err != nil {
						return fmt.Errorf("pool: %w", err)
					}
					cfg, err := rt.engine.Pool(addr)
					if err != nil {
						return err
					}
					pools = append(pools, cfg)
				} else {
					pools = rt.engine.Pools()
				}

				views := make([]poolView, 0, len(pools))
				for _, cfg := range pools {
					state, err := rt.engine.Reserves(cfg.Address)
					if err != nil {
						return err
					}
					views = append(views, poolView{PoolConfig: cfg, Reserves: state})
				}
				return printJSON(cmd.OutOrStdout(), views)
			})
		},
	}
	cmd.Flags().String("pool", "", "pool address; all pools when empty")
	return cmd
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a swap without executing it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := addressFlag(cmd, "pool")
			if err != nil {
				return err
			}
			xToY, _ := cmd.Flags().GetBool("x-to-y")
			amount, _ := cmd.Flags().GetUint64("amount-in")
			return withRuntime(cmd, false, func(ctx context.Context, rt *runtime) error {
				quote, err := rt.engine.QuoteSwap(ctx, pool, xToY, amount)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), quote)
			})
		},
	}
	cmd.Flags().String("pool", "", "pool address")
	cmd.Flags().Bool("x-to-y", true, "swap direction; false trades Y for X")
	cmd.Flags().Uint64("amount-in", 0, "input amount")
	return cmd
}

func addressFlag(cmd *cobra.Command, name string) (common.Address, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return common.Address{}, fmt.Errorf("--%s is required", name)
	}
	addr, err := model.ParseAddress(raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", name, err)
	}
	return addr, nil
}
