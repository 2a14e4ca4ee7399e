// Package curve holds the constant-product pool arithmetic.
//
// All inputs and outputs are uint64 amounts. Products are formed in 256-bit
// intermediates, and every narrowing back to uint64 is checked. Rounding
// always favors the pool: payouts round down, contributions round up.
// Failures wrap model.ErrArithmetic.
package curve

import (
	"github.com/holiman/uint256"

	"liquidityPool/internal/model"
)

// SwapQuote is the result of pricing one swap.
type SwapQuote struct {
	AmountIn         uint64
	AmountInAfterFee uint64
	Fee              uint64
	AmountOut        uint64
}

// DepositQuote is the result of pricing one deposit.
type DepositQuote struct {
	AmountX  uint64
	AmountY  uint64
	LPMinted uint64
}

// WithdrawQuote is the result of pricing one withdrawal.
type WithdrawQuote struct {
	AmountX uint64
	AmountY uint64
}

// ApplyFee returns the input left after the fee, truncated toward zero.
func ApplyFee(amountIn uint64, feeBps uint16) (uint64, error) {
	if feeBps > model.MaxFeeBps {
		return 0, model.ErrFeeOutOfRange.Wrapf("fee %d bps", feeBps)
	}
	return mulDiv(amountIn, uint64(model.MaxFeeBps-feeBps), model.MaxFeeBps)
}

// SwapOutput prices a swap of amountIn against (reserveIn, reserveOut).
func SwapOutput(reserveIn, reserveOut, amountIn uint64, feeBps uint16) (SwapQuote, error) {
	afterFee, err := ApplyFee(amountIn, feeBps)
	if err != nil {
		return SwapQuote{}, err
	}

	denominator, err := add(reserveIn, afterFee)
	if err != nil {
		return SwapQuote{}, err
	}
	out, err := mulDiv(reserveOut, afterFee, denominator)
	if err != nil {
		return SwapQuote{}, err
	}

	return SwapQuote{
		AmountIn:         amountIn,
		AmountInAfterFee: afterFee,
		Fee:              amountIn - afterFee,
		AmountOut:        out,
	}, nil
}

// DepositAmounts prices a deposit that mints desired LP tokens.
// An empty pool takes maxX and maxY as given and mints desired; this lets the
// first depositor choose the initial exchange rate.
func DepositAmounts(reserveX, reserveY, lpSupply, desired, maxX, maxY uint64) (DepositQuote, error) {
	if lpSupply == 0 {
		return DepositQuote{AmountX: maxX, AmountY: maxY, LPMinted: desired}, nil
	}

	amountX, err := mulDivUp(reserveX, desired, lpSupply)
	if err != nil {
		return DepositQuote{}, err
	}
	amountY, err := mulDivUp(reserveY, desired, lpSupply)
	if err != nil {
		return DepositQuote{}, err
	}
	return DepositQuote{AmountX: amountX, AmountY: amountY, LPMinted: desired}, nil
}

// LiquidityForAmounts is the LP a contribution of (amountX, amountY) is worth,
// taken from the limiting asset and rounded down.
func LiquidityForAmounts(reserveX, reserveY, lpSupply, amountX, amountY uint64) (uint64, error) {
	fromX, err := mulDiv(lpSupply, amountX, reserveX)
	if err != nil {
		return 0, err
	}
	fromY, err := mulDiv(lpSupply, amountY, reserveY)
	if err != nil {
		return 0, err
	}
	return min(fromX, fromY), nil
}

// WithdrawAmounts prices burning lpAmount, rounding both legs down.
func WithdrawAmounts(reserveX, reserveY, lpSupply, lpAmount uint64) (WithdrawQuote, error) {
	if lpAmount > lpSupply {
		return WithdrawQuote{}, model.ErrArithmetic.Wrapf("burn %d exceeds supply %d", lpAmount, lpSupply)
	}
	amountX, err := mulDiv(reserveX, lpAmount, lpSupply)
	if err != nil {
		return WithdrawQuote{}, err
	}
	amountY, err := mulDiv(reserveY, lpAmount, lpSupply)
	if err != nil {
		return WithdrawQuote{}, err
	}
	return WithdrawQuote{AmountX: amountX, AmountY: amountY}, nil
}

// Product returns reserveX * reserveY without overflow.
func Product(reserveX, reserveY uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(reserveX), uint256.NewInt(reserveY))
}

// Add returns a + b or an arithmetic error on overflow.
func Add(a, b uint64) (uint64, error) {
	return add(a, b)
}

// Sub returns a - b or an arithmetic error on underflow.
func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, model.ErrArithmetic.Wrapf("underflow: %d - %d", a, b)
	}
	return a - b, nil
}

func add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, model.ErrArithmetic.Wrapf("overflow: %d + %d", a, b)
	}
	return sum, nil
}

// mulDiv computes floor(a*b/d).
func mulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, model.ErrArithmetic.Wrap("division by zero")
	}
	q := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	q.Div(q, uint256.NewInt(d))
	return narrow(q)
}

// mulDivUp computes ceil(a*b/d).
func mulDivUp(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, model.ErrArithmetic.Wrap("division by zero")
	}
	p := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	q, r := new(uint256.Int), new(uint256.Int)
	q.DivMod(p, uint256.NewInt(d), r)
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return narrow(q)
}

func narrow(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, model.ErrArithmetic.Wrapf("overflow: %s does not fit in 64 bits", v.Dec())
	}
	return v.Uint64(), nil
}
