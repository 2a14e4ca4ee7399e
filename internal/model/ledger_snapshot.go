package model

// LedgerSnapshot is the persisted form of ledger balances and registered mints.
type LedgerSnapshot struct {
	Mints    []MintRecord    `json:"mints"`
	Balances []BalanceRecord `json:"balances"`
	Supplies []SupplyRecord  `json:"supplies"`
}

// MintRecord registers an asset whose supply only its authority may change.
type MintRecord struct {
	Asset     string `json:"asset"`
	Authority string `json:"authority"`
}

// BalanceRecord is one non-zero (asset, owner) balance.
type BalanceRecord struct {
	Asset  string `json:"asset"`
	Owner  string `json:"owner"`
	Amount uint64 `json:"amount"`
}

// SupplyRecord is the outstanding supply of one asset.
type SupplyRecord struct {
	Asset  string `json:"asset"`
	Amount uint64 `json:"amount"`
}
