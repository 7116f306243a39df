// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry implements the vault factory: asset whitelist, fee defaults,
// vault creation and an append-only vault index.
package registry

import (
	"math/big"

	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/builtin/solidity"
	"github.com/vechain/pledge/builtin/token"
	"github.com/vechain/pledge/builtin/vault"
	"github.com/vechain/pledge/log"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/state"
)

// Kind is the contract kind recorded in state for the registry.
const Kind = "registry"

var logger = log.WithContext("pkg", "registry")

var (
	slotOwner         = solidity.Slot("owner")
	slotForfeitFeeBps = solidity.Slot("forfeit-fee-bps")
	slotYieldFeeBps   = solidity.Slot("yield-fee-bps")
	slotWhitelist     = solidity.Slot("whitelist")
	slotVaults        = solidity.Slot("vaults")
	slotIsVault       = solidity.Slot("is-vault")
	slotCreatorNonces = solidity.Slot("creator-nonces")
)

// VaultFactory binds vault contracts to the registry's state.
type VaultFactory interface {
	Vault(addr pledge.Address) *vault.Vault
}

// VaultRequest describes a vault to create. Nil fee rates take the registry defaults.
type VaultRequest struct {
	Asset           pledge.Address
	StakeAmount     *big.Int
	MaxParticipants uint64
	Treasury        pledge.Address
	Authority       pledge.Address
	Yield           vault.YieldConfig
	ForfeitFeeBps   *uint64
	YieldFeeBps     *uint64
}

// Registry is a view of the registry contract deployed at addr.
type Registry struct {
	addr          pledge.Address
	state         *state.State
	factory       VaultFactory
	owner         *solidity.Address
	forfeitFeeBps *solidity.Uint256
	yieldFeeBps   *solidity.Uint256
	whitelist     *solidity.Mapping[pledge.Address, bool]
	vaults        *solidity.List[pledge.Address]
	isVault       *solidity.Mapping[pledge.Address, bool]
	nonces        *solidity.Mapping[pledge.Address, uint64]
}

// New binds the registry at addr to the given state.
func New(addr pledge.Address, state *state.State, factory VaultFactory) *Registry {
	ctx := solidity.NewContext(addr, state)
	return &Registry{
		addr:          addr,
		state:         state,
		factory:       factory,
		owner:         solidity.NewAddress(ctx, slotOwner),
		forfeitFeeBps: solidity.NewUint256(ctx, slotForfeitFeeBps),
		yieldFeeBps:   solidity.NewUint256(ctx, slotYieldFeeBps),
		whitelist:     solidity.NewMapping[pledge.Address, bool](ctx, slotWhitelist),
		vaults:        solidity.NewList[pledge.Address](ctx, slotVaults),
		isVault:       solidity.NewMapping[pledge.Address, bool](ctx, slotIsVault),
		nonces:        solidity.NewMapping[pledge.Address, uint64](ctx, slotCreatorNonces),
	}
}

// Address returns the contract address.
func (r *Registry) Address() pledge.Address {
	return r.addr
}

// Initialize deploys the registry with its owner and the default fee rates.
func (r *Registry) Initialize(owner pledge.Address, forfeitFeeBps, yieldFeeBps uint64) error {
	if owner.IsZero() {
		return reverts.ErrInvalidAddress.Withf("owner")
	}
	if err := checkFees(forfeitFeeBps, yieldFeeBps); err != nil {
		return err
	}
	r.owner.Set(&owner)
	r.forfeitFeeBps.Set(new(big.Int).SetUint64(forfeitFeeBps))
	r.yieldFeeBps.Set(new(big.Int).SetUint64(yieldFeeBps))
	r.state.SetKind(r.addr, Kind)
	return nil
}

// Owner returns the registry owner.
func (r *Registry) Owner() (pledge.Address, error) {
	return r.owner.Get()
}

func (r *Registry) onlyOwner(caller pledge.Address) error {
	owner, err := r.owner.Get()
	if err != nil {
		return err
	}
	if caller != owner {
		return reverts.ErrUnauthorized.Withf("owner only")
	}
	return nil
}

func checkFees(forfeitFeeBps, yieldFeeBps uint64) error {
	if forfeitFeeBps > pledge.BasisPoints || yieldFeeBps > pledge.BasisPoints {
		return reverts.ErrInvalidFeeRate.Withf("forfeit %d, yield %d", forfeitFeeBps, yieldFeeBps)
	}
	return nil
}

// DefaultFees returns the fee rates applied to vaults created without explicit rates.
func (r *Registry) DefaultFees() (forfeitFeeBps, yieldFeeBps uint64, err error) {
	f, err := r.forfeitFeeBps.Get()
	if err != nil {
		return 0, 0, err
	}
	y, err := r.yieldFeeBps.Get()
	if err != nil {
		return 0, 0, err
	}
	return f.Uint64(), y.Uint64(), nil
}

// SetDefaultFees changes the default fee rates. Existing vaults keep theirs.
func (r *Registry) SetDefaultFees(caller pledge.Address, forfeitFeeBps, yieldFeeBps uint64) error {
	if err := r.onlyOwner(caller); err != nil {
		return err
	}
	if err := checkFees(forfeitFeeBps, yieldFeeBps); err != nil {
		return err
	}
	r.forfeitFeeBps.Set(new(big.Int).SetUint64(forfeitFeeBps))
	r.yieldFeeBps.Set(new(big.Int).SetUint64(yieldFeeBps))
	r.state.AddEvent(&pledge.Event{
		Address: r.addr,
		Name:    "DefaultFeesChanged",
		Subject: caller,
		Amount:  new(big.Int),
		Data: map[string]string{
			"forfeitFeeBps": new(big.Int).SetUint64(forfeitFeeBps).String(),
			"yieldFeeBps":   new(big.Int).SetUint64(yieldFeeBps).String(),
		},
	})
	return nil
}

// WhitelistAsset allows vaults over the given asset.
func (r *Registry) WhitelistAsset(caller, asset pledge.Address) error {
	if err := r.onlyOwner(caller); err != nil {
		return err
	}
	kind, err := r.state.GetKind(asset)
	if err != nil {
		return err
	}
	if kind != token.Kind {
		return reverts.ErrInvalidAddress.Withf("%v is not a token", asset)
	}
	return r.setWhitelisted(caller, asset, true)
}

// DelistAsset forbids new vaults over the given asset. Existing vaults are unaffected.
func (r *Registry) DelistAsset(caller, asset pledge.Address) error {
	if err := r.onlyOwner(caller); err != nil {
		return err
	}
	return r.setWhitelisted(caller, asset, false)
}

func (r *Registry) setWhitelisted(caller, asset pledge.Address, allowed bool) error {
	if err := r.whitelist.Set(asset, allowed); err != nil {
		return err
	}
	name := "AssetDelisted"
	if allowed {
		name = "AssetWhitelisted"
	}
	r.state.AddEvent(&pledge.Event{Address: r.addr, Name: name, Subject: asset, Amount: new(big.Int), Data: map[string]string{"by": caller.String()}})
	return nil
}

// IsWhitelisted reports whether vaults may be created over asset.
func (r *Registry) IsWhitelisted(asset pledge.Address) (bool, error) {
	return r.whitelist.Get(asset)
}

// CreateVault validates the request, deploys a new vault and indexes it.
// The vault address is keccak256(rlp(registry, creator, nonce))[12:].
func (r *Registry) CreateVault(creator pledge.Address, req *VaultRequest) (addr pledge.Address, err error) {
	params := vault.Params{
		Asset:           req.Asset,
		StakeAmount:     req.StakeAmount,
		MaxParticipants: req.MaxParticipants,
		Treasury:        req.Treasury,
		Authority:       req.Authority,
		Yield:           req.Yield,
	}
	if params.ForfeitFeeBps, params.YieldFeeBps, err = r.DefaultFees(); err != nil {
		return
	}
	if req.ForfeitFeeBps != nil {
		params.ForfeitFeeBps = *req.ForfeitFeeBps
	}
	if req.YieldFeeBps != nil {
		params.YieldFeeBps = *req.YieldFeeBps
	}
	if err = params.Validate(); err != nil {
		return
	}
	whitelisted, err := r.whitelist.Get(params.Asset)
	if err != nil {
		return
	}
	if !whitelisted {
		err = reverts.ErrAssetNotWhitelisted.Withf("%v", params.Asset)
		return
	}

	rev := r.state.NewCheckpoint()
	defer func() {
		if err != nil {
			r.state.RevertTo(rev)
		}
	}()

	nonce, err := r.nonces.Get(creator)
	if err != nil {
		return
	}
	addr = pledge.CreateContractAddress(r.addr, creator, nonce)
	if err = r.nonces.Set(creator, nonce+1); err != nil {
		return
	}
	if err = r.factory.Vault(addr).Initialize(&params); err != nil {
		return
	}
	if _, err = r.vaults.Push(addr); err != nil {
		return
	}
	if err = r.isVault.Set(addr, true); err != nil {
		return
	}
	r.state.AddEvent(&pledge.Event{
		Address: r.addr,
		Name:    "VaultCreated",
		Subject: addr,
		Amount:  new(big.Int).Set(params.StakeAmount),
		Data: map[string]string{
			"creator":   creator.String(),
			"asset":     params.Asset.String(),
			"authority": params.Authority.String(),
		},
	})

	logger.Info("vault created", "vault", addr, "creator", creator, "asset", params.Asset, "stake", params.StakeAmount, "max", params.MaxParticipants)
	return addr, nil
}

// VaultCount returns the number of vaults ever created.
func (r *Registry) VaultCount() (uint64, error) {
	return r.vaults.Len()
}

// VaultAt returns the i-th created vault.
func (r *Registry) VaultAt(i uint64) (pledge.Address, error) {
	return r.vaults.Get(i)
}

// Vaults returns created vaults in creation order.
func (r *Registry) Vaults(offset, limit uint64) ([]pledge.Address, error) {
	return r.vaults.Range(offset, limit)
}

// IsVault reports whether addr was created by this registry.
func (r *Registry) IsVault(addr pledge.Address) (bool, error) {
	return r.isVault.Get(addr)
}
