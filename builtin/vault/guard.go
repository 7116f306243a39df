// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/metrics"
	"github.com/vechain/pledge/pledge"
)

var (
	metricOperations = metrics.LazyLoadCounterVec("vault_operations_count", []string{"method", "result"})
	metricSettlement = metrics.LazyLoadCounter("vault_settlements_count")
	metricLastFee    = metrics.LazyLoadGauge("vault_last_settlement_fee")
)

// authorityOnly lists the operations reserved to the vault authority.
var authorityOnly = map[Op]bool{
	OpOpenStaking:    true,
	OpCloseStaking:   true,
	OpVerify:         true,
	OpVerifyBatch:    true,
	OpDepositToYield: true,
	OpSettle:         true,
}

// operation is the body of a mutating entry point. It runs after the phase has
// already been advanced to next.
type operation func(params *Params, next Phase) error

// dispatch is the single entry of every mutating operation. In order it:
// rejects nested entry, checks authority, applies the phase transition table,
// then runs body inside a state checkpoint which is reverted on any error.
func (v *Vault) dispatch(op Op, caller pledge.Address, body operation) (err error) {
	defer func() {
		result := "ok"
		if err != nil {
			result = reverts.KindOf(err)
			if result == "" {
				result = "error"
			}
		}
		metricOperations().AddWithLabel(1, map[string]string{"method": op.String(), "result": result})
	}()

	entered, err := v.entered.Get()
	if err != nil {
		return err
	}
	if entered {
		return reverts.ErrReentrantCall.Withf("%v", op)
	}

	params, err := v.Params()
	if err != nil {
		return err
	}
	if authorityOnly[op] && caller != params.Authority {
		return reverts.ErrUnauthorized.Withf("%v: authority only", op)
	}

	phase, err := v.Phase()
	if err != nil {
		return err
	}
	next, err := phase.Next(op)
	if err != nil {
		return err
	}

	rev := v.state.NewCheckpoint()
	v.entered.Set(true)
	defer func() {
		if err != nil {
			v.state.RevertTo(rev)
			return
		}
		v.entered.Set(false)
	}()

	if next != phase {
		v.setPhase(next)
	}
	if err = body(params, next); err != nil {
		return err
	}
	if next != phase {
		logger.Debug("phase changed", "vault", v.addr, "op", op, "from", phase, "to", next)
	}
	return nil
}
