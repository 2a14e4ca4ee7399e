package ledger

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"liquidityPool/internal/model"
)

var errFinished = errors.New("transaction already finished")

// tx records per-account credits and debits rather than absolute balances,
// so Commit can re-apply them to whatever the ledger holds at that moment.
type tx struct {
	ledger  *Ledger
	credits map[balanceKey]uint64
	debits  map[balanceKey]uint64
	minted  map[common.Address]uint64
	burned  map[common.Address]uint64
	done    bool
}

func (t *tx) Transfer(asset, from, to common.Address, amount uint64) error {
	if t.done {
		return errFinished
	}
	if amount == 0 {
		return nil
	}
	src := balanceKey{asset: asset, owner: from}
	if err := t.debit(src, amount); err != nil {
		return err
	}
	return t.credit(balanceKey{asset: asset, owner: to}, amount)
}

func (t *tx) Mint(asset, authority, to common.Address, amount uint64) error {
	if t.done {
		return errFinished
	}
	if err := t.checkAuthority(asset, authority); err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}

	pending, ok := addChecked(t.minted[asset], amount)
	if !ok {
		return model.ErrArithmetic.Wrapf("mint overflow for %s", asset.Hex())
	}
	if _, ok := addChecked(t.ledger.Supply(asset), pending); !ok {
		return model.ErrArithmetic.Wrapf("supply overflow for %s", asset.Hex())
	}
	if err := t.credit(balanceKey{asset: asset, owner: to}, amount); err != nil {
		return err
	}
	t.minted[asset] = pending
	return nil
}

func (t *tx) Burn(asset, authority, from common.Address, amount uint64) error {
	if t.done {
		return errFinished
	}
	if err := t.checkAuthority(asset, authority); err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}
	if err := t.debit(balanceKey{asset: asset, owner: from}, amount); err != nil {
		return err
	}
	t.burned[asset] += amount
	return nil
}

// Commit applies every staged delta or none of them.
func (t *tx) Commit() error {
	if t.done {
		return errFinished
	}
	t.done = true

	l := t.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	balances := make(map[balanceKey]uint64, len(t.credits)+len(t.debits))
	for key := range t.credits {
		balances[key] = 0
	}
	for key := range t.debits {
		balances[key] = 0
	}
	for key := range balances {
		gross, ok := addChecked(l.balances[key], t.credits[key])
		if !ok {
			return model.ErrArithmetic.Wrapf("balance overflow for %s", key.owner.Hex())
		}
		if gross < t.debits[key] {
			return model.ErrConflict.Wrapf("balance of %s in %s changed: have %d, need %d",
				key.owner.Hex(), key.asset.Hex(), gross, t.debits[key])
		}
		balances[key] = gross - t.debits[key]
	}

	supplies := make(map[common.Address]uint64, len(t.minted)+len(t.burned))
	for asset := range t.minted {
		supplies[asset] = 0
	}
	for asset := range t.burned {
		supplies[asset] = 0
	}
	for asset := range supplies {
		gross, ok := addChecked(l.supply[asset], t.minted[asset])
		if !ok {
			return model.ErrArithmetic.Wrapf("supply overflow for %s", asset.Hex())
		}
		if gross < t.burned[asset] {
			return model.ErrConflict.Wrapf("supply of %s changed", asset.Hex())
		}
		supplies[asset] = gross - t.burned[asset]
	}

	for key, bal := range balances {
		if bal == 0 {
			delete(l.balances, key)
			continue
		}
		l.balances[key] = bal
	}
	for asset, sup := range supplies {
		if sup == 0 {
			delete(l.supply, asset)
			continue
		}
		l.supply[asset] = sup
	}
	return nil
}

// Rollback discards every staged delta.
func (t *tx) Rollback() {
	t.done = true
	t.credits, t.debits = nil, nil
	t.minted, t.burned = nil, nil
}

// available is the committed balance plus this transaction's staged deltas.
func (t *tx) available(key balanceKey) uint64 {
	base := t.ledger.Balance(key.asset, key.owner)
	gross, ok := addChecked(base, t.credits[key])
	if !ok {
		gross = ^uint64(0)
	}
	if gross < t.debits[key] {
		return 0
	}
	return gross - t.debits[key]
}

func (t *tx) debit(key balanceKey, amount uint64) error {
	if have := t.available(key); have < amount {
		return model.ErrInsufficientFunds.Wrapf("%s holds %d of %s, needs %d",
			key.owner.Hex(), have, key.asset.Hex(), amount)
	}
	t.debits[key] += amount
	return nil
}

func (t *tx) credit(key balanceKey, amount uint64) error {
	if _, ok := addChecked(t.available(key), amount); !ok {
		return model.ErrArithmetic.Wrapf("balance overflow for %s", key.owner.Hex())
	}
	next, ok := addChecked(t.credits[key], amount)
	if !ok {
		return model.ErrArithmetic.Wrapf("balance overflow for %s", key.owner.Hex())
	}
	t.credits[key] = next
	return nil
}

func (t *tx) checkAuthority(asset, authority common.Address) error {
	want, ok := t.ledger.MintAuthority(asset)
	if !ok {
		return model.ErrUnknownMint.Wrapf("asset %s", asset.Hex())
	}
	if want != authority {
		return model.ErrMintAuthority.Wrapf("asset %s is controlled by %s", asset.Hex(), want.Hex())
	}
	return nil
}
