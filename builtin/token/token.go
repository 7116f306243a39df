// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements a fungible asset ledger kept in contract storage.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/builtin/solidity"
	"github.com/vechain/pledge/log"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/state"
)

// Kind is the contract kind recorded in state for token contracts.
const Kind = "token"

var logger = log.WithContext("pkg", "token")

var (
	slotMetadata    = solidity.Slot("metadata")
	slotTotalSupply = solidity.Slot("total-supply")
	slotBalances    = solidity.Slot("balances")
	slotAllowances  = solidity.Slot("allowances")
)

// Metadata describes a token. It is fixed at initialization.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
	Minter   pledge.Address
}

type allowanceKey struct {
	owner   pledge.Address
	spender pledge.Address
}

func (k allowanceKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

// Token is a view of the token contract deployed at addr.
type Token struct {
	addr        pledge.Address
	state       *state.State
	hooks       *Hooks
	totalSupply *solidity.Uint256
	balances    *solidity.Mapping[pledge.Address, *big.Int]
	allowances  *solidity.Mapping[allowanceKey, *big.Int]
}

// New binds the token at addr to the given state. hooks may be nil.
func New(addr pledge.Address, state *state.State, hooks *Hooks) *Token {
	ctx := solidity.NewContext(addr, state)
	return &Token{
		addr:        addr,
		state:       state,
		hooks:       hooks,
		totalSupply: solidity.NewUint256(ctx, slotTotalSupply),
		balances:    solidity.NewMapping[pledge.Address, *big.Int](ctx, slotBalances),
		allowances:  solidity.NewMapping[allowanceKey, *big.Int](ctx, slotAllowances),
	}
}

// Address returns the contract address.
func (t *Token) Address() pledge.Address {
	return t.addr
}

// Initialize deploys the token metadata.
func (t *Token) Initialize(meta *Metadata) error {
	if err := t.state.EncodeStorage(t.addr, slotMetadata, func() ([]byte, error) {
		return rlp.EncodeToBytes(meta)
	}); err != nil {
		return err
	}
	t.state.SetKind(t.addr, Kind)
	return nil
}

// Metadata returns the token metadata.
func (t *Token) Metadata() (*Metadata, error) {
	var meta Metadata
	if err := t.state.DecodeStorage(t.addr, slotMetadata, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &meta)
	}); err != nil {
		return nil, err
	}
	return &meta, nil
}

// TotalSupply returns the amount ever minted.
func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

// BalanceOf returns the balance of holder.
func (t *Token) BalanceOf(holder pledge.Address) (*big.Int, error) {
	bal, err := t.balances.Get(holder)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return new(big.Int), nil
	}
	return bal, nil
}

// Allowance returns the amount spender may move on behalf of owner.
func (t *Token) Allowance(owner, spender pledge.Address) (*big.Int, error) {
	v, err := t.allowances.Get(allowanceKey{owner, spender})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// Transfer moves amount from the caller to recipient.
func (t *Token) Transfer(from, to pledge.Address, amount *big.Int) error {
	if to.IsZero() {
		return reverts.ErrInvalidAddress.Withf("transfer to zero address")
	}
	if amount.Sign() < 0 {
		return reverts.ErrInsufficientBalance.Withf("negative amount")
	}
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return reverts.ErrInsufficientBalance.Withf("balance %v, required %v", fromBal, amount)
	}
	if err := t.balances.Set(from, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.balances.Set(to, new(big.Int).Add(toBal, amount)); err != nil {
		return err
	}

	t.state.AddEvent(&pledge.Event{
		Address: t.addr,
		Name:    "Transfer",
		Subject: from,
		Amount:  new(big.Int).Set(amount),
		Data:    map[string]string{"to": to.String()},
	})
	logger.Trace("transfer", "token", t.addr, "from", from, "to", to, "amount", amount)

	return t.hooks.notify(t.addr, from, to, amount)
}

// TransferFrom moves amount from owner to recipient using the allowance granted to spender.
func (t *Token) TransferFrom(spender, from, to pledge.Address, amount *big.Int) error {
	allowance, err := t.Allowance(from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return reverts.ErrInsufficientAllowance.Withf("allowance %v, required %v", allowance, amount)
	}
	if err := t.allowances.Set(allowanceKey{from, spender}, new(big.Int).Sub(allowance, amount)); err != nil {
		return err
	}
	return t.Transfer(from, to, amount)
}

// Approve sets the allowance of spender over owner's balance.
func (t *Token) Approve(owner, spender pledge.Address, amount *big.Int) error {
	if spender.IsZero() {
		return reverts.ErrInvalidAddress.Withf("approve zero address")
	}
	if amount.Sign() < 0 {
		return reverts.ErrInsufficientAllowance.Withf("negative amount")
	}
	if err := t.allowances.Set(allowanceKey{owner, spender}, new(big.Int).Set(amount)); err != nil {
		return err
	}
	t.state.AddEvent(&pledge.Event{
		Address: t.addr,
		Name:    "Approval",
		Subject: owner,
		Amount:  new(big.Int).Set(amount),
		Data:    map[string]string{"spender": spender.String()},
	})
	return nil
}

// Mint creates amount new tokens for the recipient. Only the minter may mint.
func (t *Token) Mint(caller, to pledge.Address, amount *big.Int) error {
	meta, err := t.Metadata()
	if err != nil {
		return err
	}
	if caller != meta.Minter {
		return reverts.ErrUnauthorized.Withf("minter only")
	}
	return t.mint(to, amount)
}

func (t *Token) mint(to pledge.Address, amount *big.Int) error {
	if to.IsZero() {
		return reverts.ErrInvalidAddress.Withf("mint to zero address")
	}
	if amount.Sign() < 0 {
		return reverts.ErrInvalidArgs.Withf("negative amount")
	}
	bal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.balances.Set(to, new(big.Int).Add(bal, amount)); err != nil {
		return err
	}
	if err := t.totalSupply.Add(amount); err != nil {
		return err
	}
	t.state.AddEvent(&pledge.Event{
		Address: t.addr,
		Name:    "Transfer",
		Subject: pledge.Address{},
		Amount:  new(big.Int).Set(amount),
		Data:    map[string]string{"to": to.String()},
	})
	return nil
}

// Allocate credits genesis allocations without the minter check.
func (t *Token) Allocate(to pledge.Address, amount *big.Int) error {
	return t.mint(to, amount)
}
