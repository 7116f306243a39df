// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vault implements the commitment vault: participants stake a fixed deposit,
// the authority verifies attendance, and at settlement the pooled funds plus any
// yield are split between verified participants and the protocol treasury.
package vault

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/builtin/solidity"
	"github.com/vechain/pledge/log"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/state"
)

// Kind is the contract kind recorded in state for vaults.
const Kind = "vault"

var logger = log.WithContext("pkg", "vault")

var (
	slotParams          = solidity.Slot("params")
	slotPhase           = solidity.Slot("phase")
	slotEntered         = solidity.Slot("entered")
	slotEventStarted    = solidity.Slot("event-started")
	slotTotalStaked     = solidity.Slot("total-staked")
	slotVerifiedCount   = solidity.Slot("verified-count")
	slotYieldEarned     = solidity.Slot("total-yield-earned")
	slotProtocolFees    = solidity.Slot("total-protocol-fees")
	slotSharesHeld      = solidity.Slot("shares-held")
	slotDepositedAmount = solidity.Slot("deposited-amount")
	slotParticipants    = solidity.Slot("participants")
	slotRoster          = solidity.Slot("roster")
)

// Asset is the fungible asset interface the vault consumes.
type Asset interface {
	BalanceOf(holder pledge.Address) (*big.Int, error)
	Transfer(from, to pledge.Address, amount *big.Int) error
	TransferFrom(spender, from, to pledge.Address, amount *big.Int) error
	Approve(owner, spender pledge.Address, amount *big.Int) error
}

// YieldSource is the deposit/redeem interface the vault consumes.
type YieldSource interface {
	Asset() (pledge.Address, error)
	Deposit(caller pledge.Address, amount *big.Int, beneficiary pledge.Address) (*big.Int, error)
	Redeem(caller pledge.Address, shares *big.Int, receiver, owner pledge.Address) (*big.Int, error)
	ConvertToAssets(shares *big.Int) (*big.Int, error)
}

// Binder resolves the external contracts a vault talks to.
type Binder interface {
	Asset(addr pledge.Address) Asset
	YieldSource(addr pledge.Address) YieldSource
}

// Vault is a view of the vault deployed at addr.
// It is not safe for concurrent use; callers serialize access to the state.
type Vault struct {
	addr   pledge.Address
	state  *state.State
	binder Binder

	phase           *solidity.Uint256
	entered         *solidity.Bool
	eventStarted    *solidity.Bool
	totalStaked     *solidity.Uint256
	verifiedCount   *solidity.Uint256
	yieldEarned     *solidity.Uint256
	protocolFees    *solidity.Uint256
	sharesHeld      *solidity.Uint256
	depositedAmount *solidity.Uint256
	participants    *solidity.Mapping[pledge.Address, *Participant]
	roster          *solidity.List[pledge.Address]
}

// New binds the vault at addr to the given state.
func New(addr pledge.Address, state *state.State, binder Binder) *Vault {
	ctx := solidity.NewContext(addr, state)
	return &Vault{
		addr:            addr,
		state:           state,
		binder:          binder,
		phase:           solidity.NewUint256(ctx, slotPhase),
		entered:         solidity.NewBool(ctx, slotEntered),
		eventStarted:    solidity.NewBool(ctx, slotEventStarted),
		totalStaked:     solidity.NewUint256(ctx, slotTotalStaked),
		verifiedCount:   solidity.NewUint256(ctx, slotVerifiedCount),
		yieldEarned:     solidity.NewUint256(ctx, slotYieldEarned),
		protocolFees:    solidity.NewUint256(ctx, slotProtocolFees),
		sharesHeld:      solidity.NewUint256(ctx, slotSharesHeld),
		depositedAmount: solidity.NewUint256(ctx, slotDepositedAmount),
		participants:    solidity.NewMapping[pledge.Address, *Participant](ctx, slotParticipants),
		roster:          solidity.NewList[pledge.Address](ctx, slotRoster),
	}
}

// Address returns the contract address.
func (v *Vault) Address() pledge.Address {
	return v.addr
}

// Initialize deploys the vault with its immutable parameters. Registration opens immediately.
func (v *Vault) Initialize(params *Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if kind, err := v.state.GetKind(v.addr); err != nil {
		return err
	} else if kind != "" {
		return reverts.ErrInvalidAddress.Withf("address in use by %s", kind)
	}
	if src, ok := params.Yield.Source(); ok {
		underlying, err := v.binder.YieldSource(src).Asset()
		if err != nil {
			return err
		}
		if underlying != params.Asset {
			return reverts.ErrInvalidYieldSource.Withf("underlying %v, want %v", underlying, params.Asset)
		}
	}
	if err := v.state.EncodeStorage(v.addr, slotParams, func() ([]byte, error) {
		return rlp.EncodeToBytes(params)
	}); err != nil {
		return err
	}
	v.setPhase(PhaseStaking)
	v.state.SetKind(v.addr, Kind)

	logger.Debug("vault initialized", "vault", v.addr, "asset", params.Asset, "stake", params.StakeAmount, "max", params.MaxParticipants)
	return nil
}

// Params returns the immutable parameters.
func (v *Vault) Params() (*Params, error) {
	raw, err := v.state.GetRawStorage(v.addr, slotParams)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, reverts.ErrUnknownContract.Withf("vault not deployed")
	}
	var params Params
	if err := rlp.DecodeBytes(raw, &params); err != nil {
		return nil, errors.Wrap(err, "decode vault params")
	}
	return &params, nil
}

// Phase returns the current lifecycle phase.
func (v *Vault) Phase() (Phase, error) {
	p, err := v.phase.Get()
	if err != nil {
		return PhaseNone, err
	}
	return Phase(p.Uint64()), nil
}

func (v *Vault) setPhase(p Phase) {
	v.phase.Set(new(big.Int).SetUint64(uint64(p)))
}

// StakingOpen reports whether registration is open.
func (v *Vault) StakingOpen() (bool, error) {
	p, err := v.Phase()
	return p == PhaseStaking, err
}

// EventStarted reports whether depositToYield ever ran.
func (v *Vault) EventStarted() (bool, error) {
	return v.eventStarted.Get()
}

// Settled reports whether the vault reached its terminal phase.
func (v *Vault) Settled() (bool, error) {
	p, err := v.Phase()
	return p == PhaseSettled, err
}

// Participant returns the record of addr. Unknown addresses yield an empty record.
func (v *Vault) Participant(addr pledge.Address) (*Participant, error) {
	return v.participants.Get(addr)
}

// ParticipantStatus returns the public status of addr.
func (v *Vault) ParticipantStatus(addr pledge.Address) (Status, error) {
	p, err := v.participants.Get(addr)
	if err != nil {
		return StatusNotStaked, err
	}
	return p.Status(), nil
}

// Claimable returns the amount addr may still claim.
func (v *Vault) Claimable(addr pledge.Address) (*big.Int, error) {
	p, err := v.participants.Get(addr)
	if err != nil {
		return nil, err
	}
	return p.ClaimableAmount(), nil
}

// ParticipantCount returns the roster length.
func (v *Vault) ParticipantCount() (uint64, error) {
	return v.roster.Len()
}

// VerifiedCount returns the number of verified participants.
func (v *Vault) VerifiedCount() (uint64, error) {
	n, err := v.verifiedCount.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Roster returns stakers in insertion order.
func (v *Vault) Roster(offset, limit uint64) ([]pledge.Address, error) {
	return v.roster.Range(offset, limit)
}

// Totals are the aggregate amounts of a vault.
type Totals struct {
	TotalStaked       *big.Int
	TotalYieldEarned  *big.Int
	TotalProtocolFees *big.Int
	SharesHeld        *big.Int
	DepositedAmount   *big.Int
}

// Totals returns the aggregate amounts.
func (v *Vault) Totals() (*Totals, error) {
	var (
		t   Totals
		err error
	)
	for _, f := range []struct {
		dst **big.Int
		src *solidity.Uint256
	}{
		{&t.TotalStaked, v.totalStaked},
		{&t.TotalYieldEarned, v.yieldEarned},
		{&t.TotalProtocolFees, v.protocolFees},
		{&t.SharesHeld, v.sharesHeld},
		{&t.DepositedAmount, v.depositedAmount},
	} {
		if *f.dst, err = f.src.Get(); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// CurrentBalance returns the asset held by the vault plus the value of its yield position.
func (v *Vault) CurrentBalance() (*big.Int, error) {
	params, err := v.Params()
	if err != nil {
		return nil, err
	}
	bal, err := v.binder.Asset(params.Asset).BalanceOf(v.addr)
	if err != nil {
		return nil, err
	}
	current, err := v.yieldPosition(params)
	if err != nil {
		return nil, err
	}
	return bal.Add(bal, current), nil
}

// yieldPosition returns convertToAssets(sharesHeld), zero without a position.
func (v *Vault) yieldPosition(params *Params) (*big.Int, error) {
	src, ok := params.Yield.Source()
	if !ok {
		return new(big.Int), nil
	}
	shares, err := v.sharesHeld.Get()
	if err != nil {
		return nil, err
	}
	if shares.Sign() == 0 {
		return new(big.Int), nil
	}
	return v.binder.YieldSource(src).ConvertToAssets(shares)
}

// YieldInfo summarizes the yield position.
type YieldInfo struct {
	Active    bool     // a yield source is configured and holds vault shares
	Current   *big.Int // present value of the held shares
	Deposited *big.Int // principal routed into the source
	Estimated *big.Int // max(current - deposited, 0)
}

// YieldInfo returns the yield summary.
func (v *Vault) YieldInfo() (*YieldInfo, error) {
	params, err := v.Params()
	if err != nil {
		return nil, err
	}
	shares, err := v.sharesHeld.Get()
	if err != nil {
		return nil, err
	}
	deposited, err := v.depositedAmount.Get()
	if err != nil {
		return nil, err
	}
	current, err := v.yieldPosition(params)
	if err != nil {
		return nil, err
	}
	estimated := new(big.Int).Sub(current, deposited)
	if estimated.Sign() < 0 {
		estimated.SetInt64(0)
	}
	return &YieldInfo{
		Active:    params.Yield.Active() && shares.Sign() > 0,
		Current:   current,
		Deposited: deposited,
		Estimated: estimated,
	}, nil
}

// Summary is the full public read surface of a vault.
type Summary struct {
	Address          pledge.Address
	Params           *Params
	Phase            Phase
	StakingOpen      bool
	EventStarted     bool
	Settled          bool
	ParticipantCount uint64
	VerifiedCount    uint64
	Totals           *Totals
	CurrentBalance   *big.Int
	Yield            *YieldInfo
}

// Summary collects the read surface in one pass.
func (v *Vault) Summary() (*Summary, error) {
	var (
		s   = Summary{Address: v.addr}
		err error
	)
	if s.Params, err = v.Params(); err != nil {
		return nil, err
	}
	if s.Phase, err = v.Phase(); err != nil {
		return nil, err
	}
	s.StakingOpen = s.Phase == PhaseStaking
	s.Settled = s.Phase == PhaseSettled
	if s.EventStarted, err = v.EventStarted(); err != nil {
		return nil, err
	}
	if s.ParticipantCount, err = v.ParticipantCount(); err != nil {
		return nil, err
	}
	if s.VerifiedCount, err = v.VerifiedCount(); err != nil {
		return nil, err
	}
	if s.Totals, err = v.Totals(); err != nil {
		return nil, err
	}
	if s.CurrentBalance, err = v.CurrentBalance(); err != nil {
		return nil, err
	}
	if s.Yield, err = v.YieldInfo(); err != nil {
		return nil, err
	}
	return &s, nil
}
