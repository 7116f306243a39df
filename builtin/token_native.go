// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/pledge/builtin/token"
	"github.com/vechain/pledge/pledge"
)

// TokenMetadata is the JSON view of token metadata.
type TokenMetadata struct {
	Name        string                `json:"name"`
	Symbol      string                `json:"symbol"`
	Decimals    uint8                 `json:"decimals"`
	Minter      pledge.Address        `json:"minter"`
	TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
}

func initTokenMethods() {
	register(token.Kind, []*nativeMethod{
		{"metadata", true, func(env *Env, inv *Invocation) (any, error) {
			t := env.Token(inv.Target)
			meta, err := t.Metadata()
			if err != nil {
				return nil, err
			}
			supply, err := t.TotalSupply()
			if err != nil {
				return nil, err
			}
			return &TokenMetadata{meta.Name, meta.Symbol, meta.Decimals, meta.Minter, hexAmount(supply)}, nil
		}},
		{"balanceOf", true, func(env *Env, inv *Invocation) (any, error) {
			var args struct {
				Holder pledge.Address `json:"holder"`
			}
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			bal, err := env.Token(inv.Target).BalanceOf(args.Holder)
			if err != nil {
				return nil, err
			}
			return hexAmount(bal), nil
		}},
		{"allowance", true, func(env *Env, inv *Invocation) (any, error) {
			var args struct {
				Owner   pledge.Address `json:"owner"`
				Spender pledge.Address `json:"spender"`
			}
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			v, err := env.Token(inv.Target).Allowance(args.Owner, args.Spender)
			if err != nil {
				return nil, err
			}
			return hexAmount(v), nil
		}},
		{"transfer", false, func(env *Env, inv *Invocation) (any, error) {
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
			return nil, env.Token(inv.Target).Transfer(inv.Caller, args.To, a)
		}},
		{"transferFrom", false, func(env *Env, inv *Invocation) (any, error) {
			var args struct {
				From   pledge.Address        `json:"from"`
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
			return nil, env.Token(inv.Target).TransferFrom(inv.Caller, args.From, args.To, a)
		}},
		{"approve", false, func(env *Env, inv *Invocation) (any, error) {
			var args struct {
				Spender pledge.Address        `json:"spender"`
				Amount  *math.HexOrDecimal256 `json:"amount"`
			}
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			a, err := amount(args.Amount)
			if err != nil {
				return nil, err
			}
			return nil, env.Token(inv.Target).Approve(inv.Caller, args.Spender, a)
		}},
		{"mint", false, func(env *Env, inv *Invocation) (any, error) {
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
			return nil, env.Token(inv.Target).Mint(inv.Caller, args.To, a)
		}},
	})
}
