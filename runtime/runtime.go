// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes signed calls against the native contracts, one at a time.
package runtime

import (
	"encoding/json"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/algorand/go-deadlock"
	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/pledge/builtin"
	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/builtin/solidity"
	"github.com/vechain/pledge/builtin/token"
	"github.com/vechain/pledge/call"
	"github.com/vechain/pledge/log"
	"github.com/vechain/pledge/logdb"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/state"
)

var logger = log.WithContext("pkg", "runtime")

var (
	slotNonces    = solidity.Slot("nonces")
	slotCallCount = solidity.Slot("call-count")
)

// Committed is sent to subscribers after every committed call.
type Committed struct {
	Call   logdb.CallInfo
	Events []*pledge.Event
}

// Runtime is the single writer of the contract state.
type Runtime struct {
	mu     deadlock.Mutex
	state  *state.State
	hooks  *token.Hooks
	env    *builtin.Env
	signer *call.Signer
	logDB  *logdb.LogDB

	nonces    *solidity.Mapping[pledge.Address, uint64]
	callCount *solidity.Uint256

	head  atomic.Uint32
	feed  event.Feed
	scope event.SubscriptionScope
	now   func() time.Time
}

// New creates a runtime over st. logDB may be nil.
func New(st *state.State, logDB *logdb.LogDB) *Runtime {
	hooks := token.NewHooks()
	ctx := solidity.NewContext(pledge.RuntimeAddress, st)
	rt := &Runtime{
		state:     st,
		hooks:     hooks,
		env:       builtin.NewEnv(st, hooks),
		signer:    call.NewSigner(),
		logDB:     logDB,
		nonces:    solidity.NewMapping[pledge.Address, uint64](ctx, slotNonces),
		callCount: solidity.NewUint256(ctx, slotCallCount),
		now:       time.Now,
	}
	if n, err := rt.callCount.Get(); err != nil {
		logger.Warn("failed to load call count", "err", err)
	} else {
		rt.head.Store(uint32(n.Uint64()))
	}
	return rt
}

// Head returns the number of the last committed call.
func (rt *Runtime) Head() uint32 {
	return rt.head.Load()
}

// SetClock replaces the wall clock used to timestamp calls.
func (rt *Runtime) SetClock(now func() time.Time) *Runtime {
	rt.now = now
	return rt
}

// Hooks returns the in-process receive hooks of asset transfers.
func (rt *Runtime) Hooks() *token.Hooks {
	return rt.hooks
}

// SubscribeCommitted delivers every committed call to ch.
func (rt *Runtime) SubscribeCommitted(ch chan<- *Committed) event.Subscription {
	return rt.scope.Track(rt.feed.Subscribe(ch))
}

// Close ends all subscriptions.
func (rt *Runtime) Close() {
	rt.scope.Close()
}

// Nonce returns the nonce the next call of addr must carry.
func (rt *Runtime) Nonce(addr pledge.Address) (uint64, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return rt.nonces.Get(addr)
}

// View runs fn against the current state. Writes made by fn are dropped.
func (rt *Runtime) View(fn func(env *builtin.Env) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	cp := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(cp)
	return fn(rt.env)
}

// resolve finds the method of the contract deployed at target.
func (rt *Runtime) resolve(target pledge.Address, name string) (builtin.Method, error) {
	kind, err := rt.state.GetKind(target)
	if err != nil {
		return builtin.Method{}, err
	}
	if kind == "" {
		return builtin.Method{}, reverts.ErrUnknownContract.Withf("%v", target)
	}
	m, ok := builtin.LookupMethod(kind, name)
	if !ok {
		return builtin.Method{}, reverts.ErrUnknownMethod.Withf("%s.%s", kind, name)
	}
	return m, nil
}

// Query runs a read-only method as caller without a signature.
func (rt *Runtime) Query(caller, target pledge.Address, method string, args json.RawMessage) (output any, err error) {
	start := time.Now()
	defer func() { observeCall(method, "query", err, start) }()

	err = rt.View(func(env *builtin.Env) error {
		m, err := rt.resolve(target, method)
		if err != nil {
			return err
		}
		if !m.ReadOnly() {
			return reverts.ErrUnknownMethod.Withf("%s is not read-only", method)
		}
		output, err = m.Run(env, &builtin.Invocation{Caller: caller, Target: target, Args: args})
		return err
	})
	if err != nil {
		return nil, err
	}
	return output, nil
}

// Execute runs a signed call and commits its effects.
// Calls with a bad signature or nonce are rejected with an error and leave no trace.
// Once the nonce is consumed, failures of the method itself yield a reverted receipt.
func (rt *Runtime) Execute(c *call.Call) (*Receipt, error) {
	start := time.Now()

	committed, receipt, err := rt.execute(c)
	if err != nil {
		observeCall(c.Method(), "execute", err, start)
		return nil, err
	}
	if receipt.Reverted {
		observeCall(c.Method(), "execute", errors.New(receipt.Reason), start)
	} else {
		observeCall(c.Method(), "execute", nil, start)
	}

	// outside the lock, slow subscribers must not stall writers
	rt.feed.Send(committed)
	return receipt, nil
}

func (rt *Runtime) execute(c *call.Call) (*Committed, *Receipt, error) {
	caller, err := rt.signer.Caller(c)
	if err != nil {
		return nil, nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	nonce, err := rt.nonces.Get(caller)
	if err != nil {
		return nil, nil, err
	}
	if c.Nonce() != nonce {
		return nil, nil, reverts.ErrInvalidNonce.Withf("expected %d, got %d", nonce, c.Nonce())
	}

	number, err := rt.callCount.Get()
	if err != nil {
		return nil, nil, err
	}
	number.Add(number, big.NewInt(1))
	if !number.IsUint64() || number.Uint64() > uint64(^uint32(0)) {
		return nil, nil, errors.New("call number overflow")
	}
	rt.callCount.Set(number)
	if err := rt.nonces.Set(caller, nonce+1); err != nil {
		rt.state.Discard()
		return nil, nil, err
	}

	receipt := &Receipt{
		CallID: c.ID(),
		Number: uint32(number.Uint64()),
		Caller: caller,
	}

	cp := rt.state.NewCheckpoint()
	output, err := rt.run(caller, c)
	if err != nil {
		rt.state.RevertTo(cp)
		if !reverts.IsRevertErr(err) {
			// infrastructure failure, drop the nonce bump too
			rt.state.Discard()
			return nil, nil, errors.WithMessage(err, "execute call")
		}
		receipt.Reverted = true
		receipt.Reason = err.Error()
	} else {
		receipt.Output = output
	}

	events, err := rt.state.Commit()
	if err != nil {
		rt.state.Discard()
		return nil, nil, errors.WithMessage(err, "commit state")
	}
	receipt.Events = events
	rt.head.Store(receipt.Number)

	info := logdb.CallInfo{
		ID:     receipt.CallID,
		Number: receipt.Number,
		Time:   uint64(rt.now().Unix()),
		Caller: caller,
	}
	if rt.logDB != nil {
		if err := rt.logDB.Insert(&info, events); err != nil {
			// the state is committed already, the log falls behind
			logger.Error("failed to write events", "call", info.ID, "err", err)
		}
	}

	logger.Debug("call executed",
		"id", receipt.CallID,
		"number", receipt.Number,
		"caller", caller,
		"target", c.Target(),
		"method", c.Method(),
		"reverted", receipt.Reverted,
		"events", len(events),
	)
	return &Committed{Call: info, Events: events}, receipt, nil
}

func (rt *Runtime) run(caller pledge.Address, c *call.Call) (any, error) {
	m, err := rt.resolve(c.Target(), c.Method())
	if err != nil {
		return nil, err
	}
	return m.Run(rt.env, &builtin.Invocation{Caller: caller, Target: c.Target(), Args: c.Args()})
}
