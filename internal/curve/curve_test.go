package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"liquidityPool/internal/model"
)

func TestSwapOutputReferenceScenario(t *testing.T) {
	// floor(100*9970/10000) = 99, floor(1000*99/1099) = 90
	quote, err := SwapOutput(1000, 1000, 100, 30)
	require.NoError(t, err)
	require.Equal(t, uint64(99), quote.AmountInAfterFee)
	require.Equal(t, uint64(1), quote.Fee)
	require.Equal(t, uint64(90), quote.AmountOut)
}

func TestSwapOutputZeroFee(t *testing.T) {
	quote, err := SwapOutput(1_000_000, 2_000_000, 1_000, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), quote.AmountInAfterFee)
	require.Equal(t, uint64(0), quote.Fee)
	// 2_000_000 * 1_000 / 1_001_000
	require.Equal(t, uint64(1998), quote.AmountOut)
}

func TestSwapOutputFullFeeYieldsNothing(t *testing.T) {
	quote, err := SwapOutput(1000, 1000, 500, model.MaxFeeBps)
	require.NoError(t, err)
	require.Zero(t, quote.AmountInAfterFee)
	require.Zero(t, quote.AmountOut)
	require.Equal(t, uint64(500), quote.Fee)
}

func TestSwapOutputRejectsBadFee(t *testing.T) {
	_, err := SwapOutput(1000, 1000, 100, model.MaxFeeBps+1)
	require.ErrorIs(t, err, model.ErrFeeOutOfRange)
}

func TestSwapOutputHandlesMaxValues(t *testing.T) {
	quote, err := SwapOutput(math.MaxUint64/2, math.MaxUint64, math.MaxUint64/2, 0)
	require.NoError(t, err)
	require.Less(t, quote.AmountOut, uint64(math.MaxUint64))

	_, err = SwapOutput(math.MaxUint64, math.MaxUint64, math.MaxUint64, 0)
	require.ErrorIs(t, err, model.ErrArithmetic)
}

func TestSwapOutputEmptyPool(t *testing.T) {
	_, err := SwapOutput(0, 0, 0, 30)
	require.ErrorIs(t, err, model.ErrArithmetic)
}

func TestDepositAmountsFirstDeposit(t *testing.T) {
	quote, err := DepositAmounts(0, 0, 0, 1000, 500, 500)
	require.NoError(t, err)
	require.Equal(t, DepositQuote{AmountX: 500, AmountY: 500, LPMinted: 1000}, quote)
}

func TestDepositAmountsRoundsUp(t *testing.T) {
	// 1000*333/1000 = 333 exactly, 501*333/1000 = 166.833 -> 167
	quote, err := DepositAmounts(1000, 501, 1000, 333, math.MaxUint64, math.MaxUint64)
	require.NoError(t, err)
	require.Equal(t, uint64(333), quote.AmountX)
	require.Equal(t, uint64(167), quote.AmountY)
	require.Equal(t, uint64(333), quote.LPMinted)

	minted, err := LiquidityForAmounts(1000, 501, 1000, quote.AmountX, quote.AmountY)
	require.NoError(t, err)
	require.GreaterOrEqual(t, minted, quote.LPMinted)
}

func TestLiquidityForAmountsUsesLimitingAsset(t *testing.T) {
	got, err := LiquidityForAmounts(1000, 2000, 100, 100, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(5), got)
}

func TestWithdrawAmounts(t *testing.T) {
	quote, err := WithdrawAmounts(1000, 2001, 300, 100)
	require.NoError(t, err)
	require.Equal(t, WithdrawQuote{AmountX: 333, AmountY: 667}, quote)

	full, err := WithdrawAmounts(1000, 2001, 300, 300)
	require.NoError(t, err)
	require.Equal(t, WithdrawQuote{AmountX: 1000, AmountY: 2001}, full)

	_, err = WithdrawAmounts(1000, 2001, 300, 301)
	require.ErrorIs(t, err, model.ErrArithmetic)

	_, err = WithdrawAmounts(0, 0, 0, 0)
	require.ErrorIs(t, err, model.ErrArithmetic)
}

func TestCheckedAddSub(t *testing.T) {
	_, err := Add(math.MaxUint64, 1)
	require.ErrorIs(t, err, model.ErrArithmetic)

	_, err = Sub(1, 2)
	require.ErrorIs(t, err, model.ErrArithmetic)

	v, err := Sub(5, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(3), v)
}
