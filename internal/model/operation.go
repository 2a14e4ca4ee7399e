package model

import (
	"encoding/json"
	"fmt"
)

// OperationKind names a replayable engine call.
type OperationKind string

const (
	OpInitialize OperationKind = "initialize"
	OpFund       OperationKind = "fund"
	OpDeposit    OperationKind = "deposit"
	OpWithdraw   OperationKind = "withdraw"
	OpSwap       OperationKind = "swap"
	OpLock       OperationKind = "lock"
	OpUnlock     OperationKind = "unlock"
)

// Operation is one line of a replay stream.
// Pool may be omitted when AssetX, AssetY and Seed identify it.
// LimitX/LimitY are maxima for deposits and minima for withdrawals.
type Operation struct {
	Seq        uint64        `json:"seq"`
	Kind       OperationKind `json:"kind"`
	Actor      string        `json:"actor"`
	Pool       string        `json:"pool,omitempty"`
	AssetX     string        `json:"asset_x,omitempty"`
	AssetY     string        `json:"asset_y,omitempty"`
	Seed       uint64        `json:"seed,omitempty"`
	FeeBps     uint16        `json:"fee_bps,omitempty"`
	Authority  string        `json:"authority,omitempty"`
	Asset      string        `json:"asset,omitempty"`
	Amount     uint64        `json:"amount,omitempty"`
	LimitX     uint64        `json:"limit_x,omitempty"`
	LimitY     uint64        `json:"limit_y,omitempty"`
	MinOut     uint64        `json:"min_out,omitempty"`
	XToY       bool          `json:"x_to_y,omitempty"`
	Expiration int64         `json:"expiration,omitempty"`
}

// MarshalJSON ensures Operation is encoded with stable field names.
func (op Operation) MarshalJSON() ([]byte, error) {
	type Alias Operation
	return json.Marshal(Alias(op))
}

// UnmarshalJSON decodes an Operation and rejects unknown kinds.
func (op *Operation) UnmarshalJSON(data []byte) error {
	type Alias Operation
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	switch a.Kind {
	case OpInitialize, OpFund, OpDeposit, OpWithdraw, OpSwap, OpLock, OpUnlock:
	default:
		return fmt.Errorf("unknown operation kind %q", a.Kind)
	}
	*op = Operation(a)
	return nil
}
