// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin binds the native contracts to a state and exposes their
// callable methods by contract kind.
package builtin

import (
	"github.com/vechain/pledge/builtin/registry"
	"github.com/vechain/pledge/builtin/token"
	"github.com/vechain/pledge/builtin/vault"
	"github.com/vechain/pledge/builtin/yieldpool"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/state"
)

// Env binds every native contract to one state, so a single checkpoint covers
// the writes of all contracts touched by an operation.
type Env struct {
	state *state.State
	hooks *token.Hooks
}

// NewEnv creates an Env. hooks may be nil.
func NewEnv(state *state.State, hooks *token.Hooks) *Env {
	return &Env{state: state, hooks: hooks}
}

// State returns the bound state.
func (e *Env) State() *state.State {
	return e.state
}

// Token binds the token at addr.
func (e *Env) Token(addr pledge.Address) *token.Token {
	return token.New(addr, e.state, e.hooks)
}

// YieldPool binds the yield pool at addr.
func (e *Env) YieldPool(addr pledge.Address) *yieldpool.Pool {
	return yieldpool.New(addr, e.state, func(asset pledge.Address) yieldpool.Asset {
		return e.Token(asset)
	})
}

// Vault binds the vault at addr.
func (e *Env) Vault(addr pledge.Address) *vault.Vault {
	return vault.New(addr, e.state, e)
}

// Registry binds the registry at its well-known address.
func (e *Env) Registry() *registry.Registry {
	return registry.New(pledge.RegistryAddress, e.state, e)
}

// Asset implements vault.Binder.
func (e *Env) Asset(addr pledge.Address) vault.Asset {
	return e.Token(addr)
}

// YieldSource implements vault.Binder.
func (e *Env) YieldSource(addr pledge.Address) vault.YieldSource {
	return e.YieldPool(addr)
}
