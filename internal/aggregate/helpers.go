package aggregate

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const ratioScale = 18

var yearSeconds = decimal.NewFromInt(int64(365 * 24 * time.Hour / time.Second))

func formatAmount(value *uint256.Int) string {
	if value == nil {
		return "0"
	}
	return value.Dec()
}

func toDecimal(value *uint256.Int) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value.ToBig(), 0)
}

// computeFeeRate is fee / reserve for one asset side; nil when either is zero.
func computeFeeRate(fee *uint256.Int, reserve uint64) *decimal.Decimal {
	if fee == nil || fee.IsZero() || reserve == 0 {
		return nil
	}
	rate := toDecimal(fee).DivRound(decimal.NewFromUint64(reserve), ratioScale)
	return &rate
}

// computeAPR annualizes the window yield. At the pool's own price both
// reserves are worth the same, so the yield is the mean of the two side rates.
func computeAPR(rateX, rateY *decimal.Decimal, windowSeconds uint64) *string {
	if windowSeconds == 0 || (rateX == nil && rateY == nil) {
		return nil
	}
	total := decimal.Zero
	if rateX != nil {
		total = total.Add(*rateX)
	}
	if rateY != nil {
		total = total.Add(*rateY)
	}
	apr := total.Div(decimal.NewFromInt(2)).
		Mul(yearSeconds).
		DivRound(decimal.NewFromUint64(windowSeconds), ratioScale)
	val := apr.StringFixed(ratioScale)
	return &val
}

func formatRate(rate *decimal.Decimal) *string {
	if rate == nil {
		return nil
	}
	val := rate.StringFixed(ratioScale)
	return &val
}
