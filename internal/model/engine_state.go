package model

// EngineState is the persisted form of a whole engine: pool records plus
// the ledger holding their reserves and LP supplies. ReplaySeq is the last
// replayed operation already reflected in the state.
type EngineState struct {
	Pools     []PoolConfig   `json:"pools"`
	Ledger    LedgerSnapshot `json:"ledger"`
	ReplaySeq uint64         `json:"replay_seq,omitempty"`
	UpdatedAt string         `json:"updated_at,omitempty"`
}
