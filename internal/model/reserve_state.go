package model

// ReserveState is a consistent read of a pool's two vault balances and its LP supply.
type ReserveState struct {
	ReserveX uint64 `json:"reserve_x"`
	ReserveY uint64 `json:"reserve_y"`
	LPSupply uint64 `json:"lp_supply"`
}

// Empty reports whether no LP tokens are outstanding. Vault balances of an
// empty pool belong to nobody and are absorbed by the next first deposit.
func (s ReserveState) Empty() bool {
	return s.LPSupply == 0
}

// Validate checks that outstanding LP tokens are backed by both assets.
func (s ReserveState) Validate() error {
	if s.LPSupply > 0 && (s.ReserveX == 0 || s.ReserveY == 0) {
		return ErrInvariantViolation.Wrapf("partially funded pool: reserve_x=%d reserve_y=%d lp_supply=%d",
			s.ReserveX, s.ReserveY, s.LPSupply)
	}
	return nil
}

// Oriented returns (reserveIn, reserveOut) for a swap direction.
func (s ReserveState) Oriented(xToY bool) (uint64, uint64) {
	if xToY {
		return s.ReserveX, s.ReserveY
	}
	return s.ReserveY, s.ReserveX
}
