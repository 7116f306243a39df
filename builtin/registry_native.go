// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/pledge/builtin/registry"
	"github.com/vechain/pledge/builtin/vault"
	"github.com/vechain/pledge/pledge"
)

// CreateVaultArgs are the arguments of registry.createVault.
type CreateVaultArgs struct {
	Asset           pledge.Address        `json:"asset"`
	StakeAmount     *math.HexOrDecimal256 `json:"stakeAmount"`
	MaxParticipants uint64                `json:"maxParticipants"`
	Treasury        pledge.Address        `json:"treasury"`
	Authority       pledge.Address        `json:"authority"`
	YieldSource     vault.YieldConfig     `json:"yieldSource"`
	ForfeitFeeBps   *uint64               `json:"forfeitFeeBps"`
	YieldFeeBps     *uint64               `json:"yieldFeeBps"`
}

// DefaultFees is the JSON view of the registry fee defaults.
type DefaultFees struct {
	ForfeitFeeBps uint64 `json:"forfeitFeeBps"`
	YieldFeeBps   uint64 `json:"yieldFeeBps"`
}

type assetArgs struct {
	Asset pledge.Address `json:"asset"`
}

func initRegistryMethods() {
	register(registry.Kind, []*nativeMethod{
		{"whitelistAsset", false, func(env *Env, inv *Invocation) (any, error) {
			var args assetArgs
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			return nil, env.Registry().WhitelistAsset(inv.Caller, args.Asset)
		}},
		{"delistAsset", false, func(env *Env, inv *Invocation) (any, error) {
			var args assetArgs
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			return nil, env.Registry().DelistAsset(inv.Caller, args.Asset)
		}},
		{"setDefaultFees", false, func(env *Env, inv *Invocation) (any, error) {
			var args DefaultFees
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			return nil, env.Registry().SetDefaultFees(inv.Caller, args.ForfeitFeeBps, args.YieldFeeBps)
		}},
		{"createVault", false, func(env *Env, inv *Invocation) (any, error) {
			var args CreateVaultArgs
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			req := &registry.VaultRequest{
				Asset:           args.Asset,
				MaxParticipants: args.MaxParticipants,
				Treasury:        args.Treasury,
				Authority:       args.Authority,
				Yield:           args.YieldSource,
				ForfeitFeeBps:   args.ForfeitFeeBps,
				YieldFeeBps:     args.YieldFeeBps,
			}
			if args.StakeAmount != nil {
				stake, err := amount(args.StakeAmount)
				if err != nil {
					return nil, err
				}
				req.StakeAmount = stake
			}
			return env.Registry().CreateVault(inv.Caller, req)
		}},

		{"owner", true, func(env *Env, inv *Invocation) (any, error) {
			return env.Registry().Owner()
		}},
		{"defaultFees", true, func(env *Env, inv *Invocation) (any, error) {
			f, y, err := env.Registry().DefaultFees()
			if err != nil {
				return nil, err
			}
			return &DefaultFees{f, y}, nil
		}},
		{"isWhitelisted", true, func(env *Env, inv *Invocation) (any, error) {
			var args assetArgs
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			return env.Registry().IsWhitelisted(args.Asset)
		}},
		{"vaultCount", true, func(env *Env, inv *Invocation) (any, error) {
			return env.Registry().VaultCount()
		}},
		{"vaultAt", true, func(env *Env, inv *Invocation) (any, error) {
			var args struct {
				Index uint64 `json:"index"`
			}
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			return env.Registry().VaultAt(args.Index)
		}},
		{"vaults", true, func(env *Env, inv *Invocation) (any, error) {
			var args pageArgs
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			return env.Registry().Vaults(args.Offset, args.limit())
		}},
		{"isVault", true, func(env *Env, inv *Invocation) (any, error) {
			var args struct {
				Address pledge.Address `json:"address"`
			}
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			return env.Registry().IsVault(args.Address)
		}},
	})
}
