// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"fmt"

	"github.com/vechain/pledge/builtin/reverts"
)

// Phase is the lifecycle stage of a vault.
type Phase uint8

const (
	PhaseNone      Phase = iota // not deployed
	PhaseStaking                // registration open
	PhaseClosed                 // registration closed, event not started
	PhaseEventLive              // event started, funds possibly in the yield source
	PhaseSettled                // terminal
)

func (p Phase) String() string {
	switch p {
	case PhaseStaking:
		return "staking"
	case PhaseClosed:
		return "closed"
	case PhaseEventLive:
		return "event-live"
	case PhaseSettled:
		return "settled"
	}
	return "none"
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Op is a mutating vault operation.
type Op uint8

const (
	OpOpenStaking Op = iota
	OpCloseStaking
	OpStake
	OpVerify
	OpVerifyBatch
	OpDepositToYield
	OpSettle
	OpClaim
)

var opNames = [...]string{
	OpOpenStaking:    "openStaking",
	OpCloseStaking:   "closeStaking",
	OpStake:          "stake",
	OpVerify:         "verify",
	OpVerifyBatch:    "verifyBatch",
	OpDepositToYield: "depositToYield",
	OpSettle:         "settle",
	OpClaim:          "claim",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", o)
}

// edge is one cell of the transition table. A nil err with a zero next keeps the phase.
type edge struct {
	next Phase
	err  *reverts.ErrRevert
}

var (
	stay = edge{}

	to = func(p Phase) edge { return edge{next: p} }
	no = func(err *reverts.ErrRevert) edge { return edge{err: err} }
)

// transitions is indexed by op, then by phase (Staking, Closed, EventLive, Settled).
var transitions = map[Op][4]edge{
	OpOpenStaking: {
		no(reverts.ErrStakingAlreadyOpen),
		to(PhaseStaking),
		no(reverts.ErrEventAlreadyStarted),
		no(reverts.ErrVaultAlreadySettled),
	},
	OpCloseStaking: {
		to(PhaseClosed),
		no(reverts.ErrStakingClosed),
		no(reverts.ErrStakingClosed),
		no(reverts.ErrVaultAlreadySettled),
	},
	OpStake: {
		stay,
		no(reverts.ErrStakingClosed),
		no(reverts.ErrEventAlreadyStarted),
		no(reverts.ErrStakingClosed),
	},
	OpVerify: {
		stay,
		stay,
		stay,
		no(reverts.ErrVaultAlreadySettled),
	},
	OpVerifyBatch: {
		stay,
		stay,
		stay,
		no(reverts.ErrVaultAlreadySettled),
	},
	OpDepositToYield: {
		to(PhaseEventLive),
		to(PhaseEventLive),
		no(reverts.ErrEventAlreadyStarted),
		no(reverts.ErrVaultAlreadySettled),
	},
	OpSettle: {
		to(PhaseSettled),
		to(PhaseSettled),
		to(PhaseSettled),
		no(reverts.ErrVaultAlreadySettled),
	},
	OpClaim: {
		no(reverts.ErrVaultNotSettled),
		no(reverts.ErrVaultNotSettled),
		no(reverts.ErrVaultNotSettled),
		stay,
	},
}

// Next returns the phase reached by applying op in phase p,
// or the categorical error of an illegal edge.
func (p Phase) Next(op Op) (Phase, error) {
	row, ok := transitions[op]
	if !ok {
		return p, reverts.ErrUnknownMethod.Withf("%v", op)
	}
	if p == PhaseNone || p > PhaseSettled {
		return p, reverts.ErrUnknownContract.Withf("vault not deployed")
	}
	e := row[p-PhaseStaking]
	if e.err != nil {
		return p, e.err
	}
	if e.next == PhaseNone {
		return p, nil
	}
	return e.next, nil
}
