// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/algorand/go-deadlock"

	"github.com/vechain/pledge/pledge"
)

// ReceiveHook is invoked after a recipient's balance has been credited.
// An error aborts the transfer.
type ReceiveHook func(token, from pledge.Address, amount *big.Int) error

// Hooks holds in-process receive hooks by recipient address.
// A nil *Hooks has no hooks.
type Hooks struct {
	lock  deadlock.RWMutex
	hooks map[pledge.Address]ReceiveHook
}

func NewHooks() *Hooks {
	return &Hooks{hooks: make(map[pledge.Address]ReceiveHook)}
}

// Register sets the hook of recipient. A nil hook removes it.
func (h *Hooks) Register(recipient pledge.Address, hook ReceiveHook) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if hook == nil {
		delete(h.hooks, recipient)
		return
	}
	h.hooks[recipient] = hook
}

func (h *Hooks) notify(token, from, to pledge.Address, amount *big.Int) error {
	if h == nil {
		return nil
	}
	h.lock.RLock()
	hook := h.hooks[to]
	h.lock.RUnlock()

	if hook == nil {
		return nil
	}
	return hook(token, from, new(big.Int).Set(amount))
}
