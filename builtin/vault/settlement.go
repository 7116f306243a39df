// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/pledge/pledge"
)

var errAmountOverflow = errors.New("settlement: amount exceeds 256 bits")

// SettlementInput is everything the distribution depends on.
type SettlementInput struct {
	Pool             *big.Int // total asset amount available at settlement
	YieldEarned      *big.Int // max(redeemed - deposited, 0)
	StakeAmount      *big.Int
	ParticipantCount uint64
	VerifiedCount    uint64
	ForfeitFeeBps    uint64
	YieldFeeBps      uint64
}

// Distribution is the outcome of a settlement.
// Fee + Share*VerifiedCount + Remainder == Pool always holds.
type Distribution struct {
	Pool            *big.Int
	ForfeitedStakes *big.Int
	ForfeitFee      *big.Int
	YieldFee        *big.Int
	Fee             *big.Int // capped at Pool, paid to the treasury
	Available       *big.Int // Pool - Fee
	Share           *big.Int // base share of every verified participant
	Remainder       *big.Int // extra amount of the last verified participant in roster order
	VerifiedCount   uint64
}

// ShareOf returns the payout of the n-th verified participant (1-based) in roster order.
func (d *Distribution) ShareOf(n uint64) *big.Int {
	if n == 0 || n > d.VerifiedCount {
		return new(big.Int)
	}
	share := new(big.Int).Set(d.Share)
	if n == d.VerifiedCount {
		share.Add(share, d.Remainder)
	}
	return share
}

// Distribute computes fees and per-participant payouts.
func Distribute(in *SettlementInput) (*Distribution, error) {
	pool, overflow := uint256.FromBig(in.Pool)
	if overflow || in.Pool.Sign() < 0 {
		return nil, errAmountOverflow
	}
	stake, overflow := uint256.FromBig(in.StakeAmount)
	if overflow {
		return nil, errAmountOverflow
	}
	yield, overflow := uint256.FromBig(in.YieldEarned)
	if overflow {
		return nil, errAmountOverflow
	}
	if in.VerifiedCount > in.ParticipantCount {
		return nil, errors.Errorf("settlement: verified %d > participants %d", in.VerifiedCount, in.ParticipantCount)
	}

	noShow := uint256.NewInt(in.ParticipantCount - in.VerifiedCount)
	forfeited, overflow := new(uint256.Int).MulOverflow(noShow, stake)
	if overflow {
		return nil, errAmountOverflow
	}
	forfeitFee, err := bpsOf(forfeited, in.ForfeitFeeBps)
	if err != nil {
		return nil, err
	}
	yieldFee, err := bpsOf(yield, in.YieldFeeBps)
	if err != nil {
		return nil, err
	}

	fee, overflow := new(uint256.Int).AddOverflow(forfeitFee, yieldFee)
	if overflow || fee.Gt(pool) {
		// never take more than exists
		fee = new(uint256.Int).Set(pool)
	}

	var (
		available = new(uint256.Int)
		share     = new(uint256.Int)
		remainder = new(uint256.Int)
	)
	if in.VerifiedCount == 0 {
		// nobody showed up, the whole pool is forfeited
		fee = new(uint256.Int).Set(pool)
	} else {
		if pool.Gt(fee) {
			available.Sub(pool, fee)
		}
		count := uint256.NewInt(in.VerifiedCount)
		share.Div(available, count)
		remainder.Mod(available, count)
	}

	return &Distribution{
		Pool:            pool.ToBig(),
		ForfeitedStakes: forfeited.ToBig(),
		ForfeitFee:      forfeitFee.ToBig(),
		YieldFee:        yieldFee.ToBig(),
		Fee:             fee.ToBig(),
		Available:       available.ToBig(),
		Share:           share.ToBig(),
		Remainder:       remainder.ToBig(),
		VerifiedCount:   in.VerifiedCount,
	}, nil
}

// bpsOf returns floor(amount * bps / 10000).
func bpsOf(amount *uint256.Int, bps uint64) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulDivOverflow(amount, uint256.NewInt(bps), uint256.NewInt(pledge.BasisPoints))
	if overflow {
		return nil, errAmountOverflow
	}
	return z, nil
}
