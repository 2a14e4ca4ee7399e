package model

import (
	errorsmod "cosmossdk.io/errors"
)

// Codespace namespaces the registered engine errors.
const Codespace = "amm"

// Configuration errors.
var (
	ErrFeeOutOfRange = errorsmod.Register(Codespace, 2, "fee out of range")
	ErrSameAsset     = errorsmod.Register(Codespace, 3, "pool assets must differ")
	ErrAlreadyExists = errorsmod.Register(Codespace, 4, "already exists")
)

// Pool state errors.
var (
	ErrPoolLocked      = errorsmod.Register(Codespace, 10, "pool is locked")
	ErrPoolEmpty       = errorsmod.Register(Codespace, 11, "pool has no liquidity")
	ErrDeadlineExpired = errorsmod.Register(Codespace, 12, "deadline expired")
)

// Request errors.
var (
	ErrInvalidAmount = errorsmod.Register(Codespace, 20, "invalid amount")
	ErrPoolNotFound  = errorsmod.Register(Codespace, 21, "pool not found")
	ErrUnauthorized  = errorsmod.Register(Codespace, 22, "unauthorized")
)

var (
	ErrSlippageExceeded   = errorsmod.Register(Codespace, 30, "slippage exceeded")
	ErrArithmetic         = errorsmod.Register(Codespace, 40, "arithmetic error")
	ErrInvariantViolation = errorsmod.Register(Codespace, 50, "invariant violation")
)

// Ledger errors, surfaced unchanged by the engine.
var (
	ErrInsufficientFunds = errorsmod.Register(Codespace, 60, "insufficient funds")
	ErrUnknownMint       = errorsmod.Register(Codespace, 61, "unknown mint")
	ErrMintAuthority     = errorsmod.Register(Codespace, 62, "mint authority mismatch")
	ErrConflict          = errorsmod.Register(Codespace, 63, "ledger conflict")
)

// ErrorCategory groups registered errors by the check that failed.
type ErrorCategory string

const (
	CategoryNone       ErrorCategory = ""
	CategoryConfig     ErrorCategory = "config"
	CategoryState      ErrorCategory = "state"
	CategoryInput      ErrorCategory = "input"
	CategorySlippage   ErrorCategory = "slippage"
	CategoryArithmetic ErrorCategory = "arithmetic"
	CategoryInvariant  ErrorCategory = "invariant"
	CategoryTransfer   ErrorCategory = "transfer"
	CategoryUnknown    ErrorCategory = "unknown"
)

var categories = []struct {
	category ErrorCategory
	errs     []error
}{
	{CategoryConfig, []error{ErrFeeOutOfRange, ErrSameAsset, ErrAlreadyExists}},
	{CategoryState, []error{ErrPoolLocked, ErrPoolEmpty, ErrDeadlineExpired}},
	{CategoryInput, []error{ErrInvalidAmount, ErrPoolNotFound, ErrUnauthorized}},
	{CategorySlippage, []error{ErrSlippageExceeded}},
	{CategoryArithmetic, []error{ErrArithmetic}},
	{CategoryInvariant, []error{ErrInvariantViolation}},
	{CategoryTransfer, []error{ErrInsufficientFunds, ErrUnknownMint, ErrMintAuthority, ErrConflict}},
}

// CategoryOf classifies err, looking through any wrapping.
func CategoryOf(err error) ErrorCategory {
	if err == nil {
		return CategoryNone
	}
	for _, c := range categories {
		if errorsmod.IsOf(err, c.errs...) {
			return c.category
		}
	}
	return CategoryUnknown
}
