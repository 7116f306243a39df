// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/pledge/builtin/yieldpool"
	"github.com/vechain/pledge/pledge"
)

// YieldPoolInfo is the JSON view of a yield pool.
type YieldPoolInfo struct {
	Asset       pledge.Address        `json:"asset"`
	Manager     pledge.Address        `json:"manager"`
	TotalAssets *math.HexOrDecimal256 `json:"totalAssets"`
	TotalShares *math.HexOrDecimal256 `json:"totalShares"`
}

func initYieldPoolMethods() {
	register(yieldpool.Kind, []*nativeMethod{
		{"info", true, func(env *Env, inv *Invocation) (any, error) {
			p := env.YieldPool(inv.Target)
			asset, err := p.Asset()
			if err != nil {
				return nil, err
			}
			manager, err := p.Manager()
			if err != nil {
				return nil, err
			}
			assets, err := p.TotalAssets()
			if err != nil {
				return nil, err
			}
			shares, err := p.TotalShares()
			if err != nil {
				return nil, err
			}
			return &YieldPoolInfo{asset, manager, hexAmount(assets), hexAmount(shares)}, nil
		}},
		{"sharesOf", true, func(env *Env, inv *Invocation) (any, error) {
			var args struct {
				Holder pledge.Address `json:"holder"`
			}
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			v, err := env.YieldPool(inv.Target).SharesOf(args.Holder)
			if err != nil {
				return nil, err
			}
			return hexAmount(v), nil
		}},
		{"convertToShares", true, func(env *Env, inv *Invocation) (any, error) {
			var args struct {
				Amount *math.HexOrDecimal256 `json:"amount"`
			}
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			a, err := amount(args.Amount)
			if err != nil {
				return nil, err
			}
			v, err := env.YieldPool(inv.Target).ConvertToShares(a)
			if err != nil {
				return nil, err
			}
			return hexAmount(v), nil
		}},
		{"convertToAssets", true, func(env *Env, inv *Invocation) (any, error) {
			var args struct {
				Shares *math.HexOrDecimal256 `json:"shares"`
			}
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			s, err := amount(args.Shares)
			if err != nil {
				return nil, err
			}
			v, err := env.YieldPool(inv.Target).ConvertToAssets(s)
			if err != nil {
				return nil, err
			}
			return hexAmount(v), nil
		}},
		{"deposit", false, func(env *Env, inv *Invocation) (any, error) {
			var args struct {
				Amount      *math.HexOrDecimal256 `json:"amount"`
				Beneficiary pledge.Address        `json:"beneficiary"`
			}
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			a, err := amount(args.Amount)
			if err != nil {
				return nil, err
			}
			shares, err := env.YieldPool(inv.Target).Deposit(inv.Caller, a, args.Beneficiary)
			if err != nil {
				return nil, err
			}
			return hexAmount(shares), nil
		}},
		{"redeem", false, func(env *Env, inv *Invocation) (any, error) {
			var args struct {
				Shares   *math.HexOrDecimal256 `json:"shares"`
				Receiver pledge.Address        `json:"receiver"`
				Owner    pledge.Address        `json:"owner"`
			}
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			s, err := amount(args.Shares)
			if err != nil {
				return nil, err
			}
			v, err := env.YieldPool(inv.Target).Redeem(inv.Caller, s, args.Receiver, args.Owner)
			if err != nil {
				return nil, err
			}
			return hexAmount(v), nil
		}},
		{"harvest", false, func(env *Env, inv *Invocation) (any, error) {
			var args struct {
				Amount *math.HexOrDecimal256 `json:"amount"`
			}
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			a, err := amount(args.Amount)
			if err != nil {
				return nil, err
			}
			return nil, env.YieldPool(inv.Target).Harvest(inv.Caller, a)
		}},
		{"realize", false, func(env *Env, inv *Invocation) (any, error) {
			var args struct {
				To     pledge.Address        `json:"to"`
				Amount *math.HexOrDecimal256 `json:"amount"`
			}
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			a, err := amount(args.Amount)
			if err != nil {
				return nil, err
			}
			return nil, env.YieldPool(inv.Target).Realize(inv.Caller, args.To, a)
		}},
	})
}
