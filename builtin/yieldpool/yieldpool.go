// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package yieldpool implements a share-based deposit pool over one underlying asset.
package yieldpool

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/builtin/solidity"
	"github.com/vechain/pledge/log"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/state"
)

// Kind is the contract kind recorded in state for yield pools.
const Kind = "yieldpool"

var logger = log.WithContext("pkg", "yieldpool")

var (
	slotAsset       = solidity.Slot("asset")
	slotManager     = solidity.Slot("manager")
	slotTotalShares = solidity.Slot("total-shares")
	slotShares      = solidity.Slot("shares")
)

// Asset is the subset of the token interface the pool consumes.
type Asset interface {
	BalanceOf(holder pledge.Address) (*big.Int, error)
	Transfer(from, to pledge.Address, amount *big.Int) error
	TransferFrom(spender, from, to pledge.Address, amount *big.Int) error
}

// AssetBinder resolves the asset contract at addr.
type AssetBinder func(addr pledge.Address) Asset

// Pool is a view of the yield pool deployed at addr.
type Pool struct {
	addr        pledge.Address
	state       *state.State
	bind        AssetBinder
	asset       *solidity.Address
	manager     *solidity.Address
	totalShares *solidity.Uint256
	shares      *solidity.Mapping[pledge.Address, *big.Int]
}

// New binds the pool at addr to the given state.
func New(addr pledge.Address, state *state.State, bind AssetBinder) *Pool {
	ctx := solidity.NewContext(addr, state)
	return &Pool{
		addr:        addr,
		state:       state,
		bind:        bind,
		asset:       solidity.NewAddress(ctx, slotAsset),
		manager:     solidity.NewAddress(ctx, slotManager),
		totalShares: solidity.NewUint256(ctx, slotTotalShares),
		shares:      solidity.NewMapping[pledge.Address, *big.Int](ctx, slotShares),
	}
}

// Address returns the contract address.
func (p *Pool) Address() pledge.Address {
	return p.addr
}

// Initialize deploys the pool over the given underlying asset.
func (p *Pool) Initialize(asset, manager pledge.Address) error {
	if asset.IsZero() || manager.IsZero() {
		return reverts.ErrInvalidAddress
	}
	p.asset.Set(&asset)
	p.manager.Set(&manager)
	p.state.SetKind(p.addr, Kind)
	return nil
}

// Asset returns the underlying asset address.
func (p *Pool) Asset() (pledge.Address, error) {
	return p.asset.Get()
}

// Manager returns the address allowed to harvest and realize.
func (p *Pool) Manager() (pledge.Address, error) {
	return p.manager.Get()
}

func (p *Pool) underlying() (Asset, error) {
	addr, err := p.asset.Get()
	if err != nil {
		return nil, err
	}
	return p.bind(addr), nil
}

// TotalAssets returns the underlying balance held by the pool.
func (p *Pool) TotalAssets() (*big.Int, error) {
	asset, err := p.underlying()
	if err != nil {
		return nil, err
	}
	return asset.BalanceOf(p.addr)
}

// TotalShares returns the number of outstanding shares.
func (p *Pool) TotalShares() (*big.Int, error) {
	return p.totalShares.Get()
}

// SharesOf returns the shares owned by holder.
func (p *Pool) SharesOf(holder pledge.Address) (*big.Int, error) {
	return p.shares.Get(holder)
}

// ConvertToShares returns amount*(S+1)/(A+1), rounded down.
func (p *Pool) ConvertToShares(amount *big.Int) (*big.Int, error) {
	assets, shares, err := p.totals()
	if err != nil {
		return nil, err
	}
	return mulDiv(amount, shares, assets)
}

// ConvertToAssets returns shares*(A+1)/(S+1), rounded down.
func (p *Pool) ConvertToAssets(shares *big.Int) (*big.Int, error) {
	assets, total, err := p.totals()
	if err != nil {
		return nil, err
	}
	return mulDiv(shares, assets, total)
}

// totals returns the virtual totals A+1 and S+1.
func (p *Pool) totals() (*big.Int, *big.Int, error) {
	assets, err := p.TotalAssets()
	if err != nil {
		return nil, nil, err
	}
	shares, err := p.totalShares.Get()
	if err != nil {
		return nil, nil, err
	}
	one := big.NewInt(1)
	return new(big.Int).Add(assets, one), new(big.Int).Add(shares, one), nil
}

// Deposit pulls amount of the asset from caller and issues shares to beneficiary.
// The caller must have approved the pool beforehand.
func (p *Pool) Deposit(caller pledge.Address, amount *big.Int, beneficiary pledge.Address) (*big.Int, error) {
	if amount.Sign() <= 0 {
		return nil, reverts.ErrNoAssetsToDeposit
	}
	if beneficiary.IsZero() {
		return nil, reverts.ErrInvalidAddress
	}
	shares, err := p.ConvertToShares(amount)
	if err != nil {
		return nil, err
	}
	asset, err := p.underlying()
	if err != nil {
		return nil, err
	}
	if err := asset.TransferFrom(p.addr, caller, p.addr, amount); err != nil {
		return nil, err
	}
	if err := p.mintShares(beneficiary, shares); err != nil {
		return nil, err
	}

	p.state.AddEvent(&pledge.Event{
		Address: p.addr,
		Name:    "Deposit",
		Subject: beneficiary,
		Amount:  new(big.Int).Set(amount),
		Data:    map[string]string{"sender": caller.String(), "shares": shares.String()},
	})
	logger.Debug("deposit", "pool", p.addr, "beneficiary", beneficiary, "amount", amount, "shares", shares)
	return shares, nil
}

// Redeem burns shares of owner and sends the assets they are worth to receiver.
// The returned amount may be less than what was deposited.
func (p *Pool) Redeem(caller pledge.Address, shares *big.Int, receiver, owner pledge.Address) (*big.Int, error) {
	if caller != owner {
		return nil, reverts.ErrUnauthorized.Withf("owner only")
	}
	if receiver.IsZero() {
		return nil, reverts.ErrInvalidAddress
	}
	held, err := p.shares.Get(owner)
	if err != nil {
		return nil, err
	}
	if shares.Sign() < 0 || held.Cmp(shares) < 0 {
		return nil, reverts.ErrInsufficientShares.Withf("held %v, required %v", held, shares)
	}
	amount, err := p.ConvertToAssets(shares)
	if err != nil {
		return nil, err
	}

	// burn before transfer
	if err := p.shares.Set(owner, new(big.Int).Sub(held, shares)); err != nil {
		return nil, err
	}
	if err := p.totalShares.Sub(shares); err != nil {
		return nil, err
	}
	asset, err := p.underlying()
	if err != nil {
		return nil, err
	}
	if amount.Sign() > 0 {
		if err := asset.Transfer(p.addr, receiver, amount); err != nil {
			return nil, err
		}
	}

	p.state.AddEvent(&pledge.Event{
		Address: p.addr,
		Name:    "Withdraw",
		Subject: owner,
		Amount:  new(big.Int).Set(amount),
		Data:    map[string]string{"receiver": receiver.String(), "shares": shares.String()},
	})
	logger.Debug("redeem", "pool", p.addr, "owner", owner, "shares", shares, "amount", amount)
	return amount, nil
}

// Harvest moves amount of the asset from the manager into the pool, raising the share price.
func (p *Pool) Harvest(caller pledge.Address, amount *big.Int) error {
	if err := p.onlyManager(caller); err != nil {
		return err
	}
	asset, err := p.underlying()
	if err != nil {
		return err
	}
	if err := asset.Transfer(caller, p.addr, amount); err != nil {
		return err
	}
	p.state.AddEvent(&pledge.Event{Address: p.addr, Name: "Harvest", Subject: caller, Amount: new(big.Int).Set(amount)})
	return nil
}

// Realize moves amount of the asset out of the pool, lowering the share price.
func (p *Pool) Realize(caller, to pledge.Address, amount *big.Int) error {
	if err := p.onlyManager(caller); err != nil {
		return err
	}
	asset, err := p.underlying()
	if err != nil {
		return err
	}
	if err := asset.Transfer(p.addr, to, amount); err != nil {
		return err
	}
	p.state.AddEvent(&pledge.Event{Address: p.addr, Name: "Realize", Subject: to, Amount: new(big.Int).Set(amount)})
	return nil
}

func (p *Pool) onlyManager(caller pledge.Address) error {
	manager, err := p.manager.Get()
	if err != nil {
		return err
	}
	if caller != manager {
		return reverts.ErrUnauthorized.Withf("manager only")
	}
	return nil
}

func (p *Pool) mintShares(to pledge.Address, shares *big.Int) error {
	held, err := p.shares.Get(to)
	if err != nil {
		return err
	}
	if err := p.shares.Set(to, new(big.Int).Add(held, shares)); err != nil {
		return err
	}
	return p.totalShares.Add(shares)
}

// mulDiv computes floor(x*y/d) in 256-bit arithmetic.
func mulDiv(x, y, d *big.Int) (*big.Int, error) {
	ux, o1 := uint256.FromBig(x)
	uy, o2 := uint256.FromBig(y)
	ud, o3 := uint256.FromBig(d)
	if o1 || o2 || o3 || x.Sign() < 0 {
		return nil, reverts.ErrInvalidArgs.Withf("amount out of range")
	}
	z, overflow := new(uint256.Int).MulDivOverflow(ux, uy, ud)
	if overflow {
		return nil, reverts.ErrInvalidArgs.Withf("amount out of range")
	}
	return z.ToBig(), nil
}
