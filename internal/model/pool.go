package model

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// MaxFeeBps is the basis-point denominator; a fee equal to it takes the whole input.
const MaxFeeBps = 10_000

// PoolConfig is the stored record for one pool instance.
// Reserves and LP supply live in the ledger and are never duplicated here.
type PoolConfig struct {
	Address   common.Address  `json:"address"`
	Seed      uint64          `json:"seed"`
	Authority *common.Address `json:"authority,omitempty"`
	AssetX    common.Address  `json:"asset_x"`
	AssetY    common.Address  `json:"asset_y"`
	FeeBps    uint16          `json:"fee_bps"`
	Locked    bool            `json:"locked"`
	LPMint    common.Address  `json:"lp_mint"`
	Vault     common.Address  `json:"vault"`
}

// NewPoolConfig validates the creation parameters and derives the pool addresses.
func NewPoolConfig(assetX, assetY common.Address, seed uint64, feeBps uint16, authority *common.Address) (PoolConfig, error) {
	if feeBps > MaxFeeBps {
		return PoolConfig{}, ErrFeeOutOfRange.Wrapf("fee %d bps exceeds %d", feeBps, MaxFeeBps)
	}
	if assetX == assetY {
		return PoolConfig{}, ErrSameAsset.Wrapf("asset %s", assetX.Hex())
	}

	var auth *common.Address
	if authority != nil {
		a := *authority
		auth = &a
	}

	pool := DerivePoolAddress(assetX, assetY, seed)
	return PoolConfig{
		Address:   pool,
		Seed:      seed,
		Authority: auth,
		AssetX:    assetX,
		AssetY:    assetY,
		FeeBps:    feeBps,
		LPMint:    DeriveLPMint(pool),
		Vault:     DeriveVault(pool),
	}, nil
}

// Validate checks the invariants a stored record must satisfy.
func (c PoolConfig) Validate() error {
	if c.FeeBps > MaxFeeBps {
		return ErrFeeOutOfRange.Wrapf("fee %d bps exceeds %d", c.FeeBps, MaxFeeBps)
	}
	if c.AssetX == c.AssetY {
		return ErrSameAsset.Wrapf("asset %s", c.AssetX.Hex())
	}
	if c.Address != DerivePoolAddress(c.AssetX, c.AssetY, c.Seed) {
		return ErrInvariantViolation.Wrapf("pool address %s does not match its assets and seed", c.Address.Hex())
	}
	if c.LPMint != DeriveLPMint(c.Address) || c.Vault != DeriveVault(c.Address) {
		return ErrInvariantViolation.Wrapf("derived accounts of pool %s do not match", c.Address.Hex())
	}
	return nil
}

// CanAdminister reports whether caller may toggle the lock flag.
// A pool created without an authority can never be locked.
func (c PoolConfig) CanAdminister(caller common.Address) bool {
	return c.Authority != nil && *c.Authority == caller
}

// Assets returns the input and output asset for a swap direction.
func (c PoolConfig) Assets(xToY bool) (common.Address, common.Address) {
	if xToY {
		return c.AssetX, c.AssetY
	}
	return c.AssetY, c.AssetX
}

// DerivePoolAddress derives the pool address from its identifying triple.
func DerivePoolAddress(assetX, assetY common.Address, seed uint64) common.Address {
	var seedLE [8]byte
	binary.LittleEndian.PutUint64(seedLE[:], seed)
	return common.BytesToAddress(crypto.Keccak256([]byte("config"), assetX.Bytes(), assetY.Bytes(), seedLE[:]))
}

// DeriveLPMint derives the ownership token mint of a pool.
func DeriveLPMint(pool common.Address) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("lp"), pool.Bytes()))
}

// DeriveVault derives the account that holds both reserves of a pool.
func DeriveVault(pool common.Address) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("auth"), pool.Bytes()))
}
