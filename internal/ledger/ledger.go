// Package ledger is an in-memory asset ledger implementing the balance
// transfer and mint/burn collaborators the pool engine depends on.
//
// Mutations are staged in a Transaction and applied all-or-nothing on
// Commit. Commit re-validates staged deltas against the current balances, so
// transactions begun concurrently can never overdraw an account; a stale
// transaction fails with model.ErrConflict and leaves the ledger untouched.
package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"liquidityPool/internal/model"
)

// Transaction stages balance mutations. It is not safe for concurrent use.
type Transaction interface {
	Transfer(asset, from, to common.Address, amount uint64) error
	Mint(asset, authority, to common.Address, amount uint64) error
	Burn(asset, authority, from common.Address, amount uint64) error
	Commit() error
	Rollback()
}

type balanceKey struct {
	asset common.Address
	owner common.Address
}

// Ledger holds balances, supplies and registered mints.
type Ledger struct {
	mu       sync.RWMutex
	balances map[balanceKey]uint64
	supply   map[common.Address]uint64
	mints    map[common.Address]common.Address
}

func New() *Ledger {
	return &Ledger{
		balances: make(map[balanceKey]uint64),
		supply:   make(map[common.Address]uint64),
		mints:    make(map[common.Address]common.Address),
	}
}

// Balance returns the committed balance of owner in asset.
func (l *Ledger) Balance(asset, owner common.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[balanceKey{asset: asset, owner: owner}]
}

// Supply returns the committed outstanding supply of asset.
func (l *Ledger) Supply(asset common.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.supply[asset]
}

// CreateMint registers asset as a mint controlled by authority.
func (l *Ledger) CreateMint(asset, authority common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.mints[asset]; ok {
		return model.ErrAlreadyExists.Wrapf("mint %s", asset.Hex())
	}
	if l.supply[asset] > 0 {
		return model.ErrAlreadyExists.Wrapf("asset %s already has supply", asset.Hex())
	}
	l.mints[asset] = authority
	return nil
}

// MintAuthority returns the authority of a registered mint.
func (l *Ledger) MintAuthority(asset common.Address) (common.Address, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	auth, ok := l.mints[asset]
	return auth, ok
}

// Fund issues an external asset to an account. Registered mints can only be
// issued through a Transaction signed by their authority.
func (l *Ledger) Fund(asset, to common.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.mints[asset]; ok {
		return model.ErrMintAuthority.Wrapf("asset %s is a registered mint", asset.Hex())
	}
	key := balanceKey{asset: asset, owner: to}
	bal, ok := addChecked(l.balances[key], amount)
	if !ok {
		return model.ErrArithmetic.Wrapf("balance overflow funding %s", to.Hex())
	}
	sup, ok := addChecked(l.supply[asset], amount)
	if !ok {
		return model.ErrArithmetic.Wrapf("supply overflow funding %s", asset.Hex())
	}
	l.balances[key] = bal
	l.supply[asset] = sup
	return nil
}

// Begin opens a transaction against the ledger.
func (l *Ledger) Begin() Transaction {
	return &tx{
		ledger:  l,
		credits: make(map[balanceKey]uint64),
		debits:  make(map[balanceKey]uint64),
		minted:  make(map[common.Address]uint64),
		burned:  make(map[common.Address]uint64),
	}
}

// Snapshot exports the committed state in a stable order.
func (l *Ledger) Snapshot() model.LedgerSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := model.LedgerSnapshot{
		Mints:    make([]model.MintRecord, 0, len(l.mints)),
		Balances: make([]model.BalanceRecord, 0, len(l.balances)),
		Supplies: make([]model.SupplyRecord, 0, len(l.supply)),
	}
	for asset, auth := range l.mints {
		snap.Mints = append(snap.Mints, model.MintRecord{Asset: asset.Hex(), Authority: auth.Hex()})
	}
	for key, amount := range l.balances {
		snap.Balances = append(snap.Balances, model.BalanceRecord{Asset: key.asset.Hex(), Owner: key.owner.Hex(), Amount: amount})
	}
	for asset, amount := range l.supply {
		snap.Supplies = append(snap.Supplies, model.SupplyRecord{Asset: asset.Hex(), Amount: amount})
	}

	sort.Slice(snap.Mints, func(i, j int) bool { return snap.Mints[i].Asset < snap.Mints[j].Asset })
	sort.Slice(snap.Balances, func(i, j int) bool {
		if snap.Balances[i].Asset != snap.Balances[j].Asset {
			return snap.Balances[i].Asset < snap.Balances[j].Asset
		}
		return snap.Balances[i].Owner < snap.Balances[j].Owner
	})
	sort.Slice(snap.Supplies, func(i, j int) bool { return snap.Supplies[i].Asset < snap.Supplies[j].Asset })
	return snap
}

// Restore rebuilds a ledger from a snapshot, checking that every supply
// equals the sum of its balances.
func Restore(snap model.LedgerSnapshot) (*Ledger, error) {
	l := New()
	for _, m := range snap.Mints {
		asset, err := model.ParseAddress(m.Asset)
		if err != nil {
			return nil, err
		}
		auth, err := model.ParseAddress(m.Authority)
		if err != nil {
			return nil, err
		}
		l.mints[asset] = auth
	}

	sums := make(map[common.Address]uint64)
	for _, b := range snap.Balances {
		asset, err := model.ParseAddress(b.Asset)
		if err != nil {
			return nil, err
		}
		owner, err := model.ParseAddress(b.Owner)
		if err != nil {
			return nil, err
		}
		if b.Amount == 0 {
			continue
		}
		sum, ok := addChecked(sums[asset], b.Amount)
		if !ok {
			return nil, fmt.Errorf("balances of %s overflow", b.Asset)
		}
		sums[asset] = sum
		l.balances[balanceKey{asset: asset, owner: owner}] = b.Amount
	}

	for _, s := range snap.Supplies {
		asset, err := model.ParseAddress(s.Asset)
		if err != nil {
			return nil, err
		}
		if s.Amount > 0 {
			l.supply[asset] = s.Amount
		}
	}

	for asset, sum := range sums {
		if l.supply[asset] != sum {
			return nil, fmt.Errorf("supply of %s is %d but balances sum to %d", asset.Hex(), l.supply[asset], sum)
		}
	}
	for asset, sup := range l.supply {
		if sums[asset] != sup {
			return nil, fmt.Errorf("supply of %s is %d but balances sum to %d", asset.Hex(), sup, sums[asset])
		}
	}
	return l, nil
}

func addChecked(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum >= a
}
