// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault_test

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pledge/builtin/vault"
)

func TestDistribute(t *testing.T) {
	tests := []struct {
		name         string
		in           vault.SettlementInput
		fee          int64
		share        int64
		remainder    int64
		forfeitedFee int64
		yieldFee     int64
	}{
		{
			// 3 x S staked, 2 verified: fee 0.1S, 1.45S each
			name:         "one no-show",
			in:           vault.SettlementInput{Pool: big.NewInt(300), StakeAmount: big.NewInt(100), ParticipantCount: 3, VerifiedCount: 2, ForfeitFeeBps: 1000, YieldFeeBps: 1000},
			fee:          10,
			share:        145,
			forfeitedFee: 10,
		},
		{
			// yield loss leaves 29 for 3 verified: 9, 9, 11
			name:      "loss with remainder",
			in:        vault.SettlementInput{Pool: big.NewInt(29), StakeAmount: big.NewInt(10), ParticipantCount: 3, VerifiedCount: 3, ForfeitFeeBps: 1000, YieldFeeBps: 1000},
			share:     9,
			remainder: 2,
		},
		{
			name:         "nobody verified",
			in:           vault.SettlementInput{Pool: big.NewInt(300), StakeAmount: big.NewInt(100), ParticipantCount: 3, ForfeitFeeBps: 1000, YieldFeeBps: 1000},
			fee:          300,
			forfeitedFee: 30,
		},
		{
			name:         "yield fee only on yield",
			in:           vault.SettlementInput{Pool: big.NewInt(249), YieldEarned: big.NewInt(49), StakeAmount: big.NewInt(100), ParticipantCount: 2, VerifiedCount: 1, ForfeitFeeBps: 1000, YieldFeeBps: 1000},
			fee:          14,
			share:        235,
			forfeitedFee: 10,
			yieldFee:     4,
		},
		{
			name:         "fee capped at pool",
			in:           vault.SettlementInput{Pool: big.NewInt(5), StakeAmount: big.NewInt(10), ParticipantCount: 3, VerifiedCount: 1, ForfeitFeeBps: 10000, YieldFeeBps: 0},
			fee:          5,
			forfeitedFee: 20,
		},
		{
			name:  "zero rates",
			in:    vault.SettlementInput{Pool: big.NewInt(300), StakeAmount: big.NewInt(100), ParticipantCount: 3, VerifiedCount: 2},
			share: 150,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			if in.YieldEarned == nil {
				in.YieldEarned = new(big.Int)
			}
			d, err := vault.Distribute(&in)
			require.NoError(t, err)

			assert.Equal(t, tt.fee, d.Fee.Int64(), "fee")
			assert.Equal(t, tt.share, d.Share.Int64(), "share")
			assert.Equal(t, tt.remainder, d.Remainder.Int64(), "remainder")
			assert.Equal(t, tt.forfeitedFee, d.ForfeitFee.Int64(), "forfeit fee")
			assert.Equal(t, tt.yieldFee, d.YieldFee.Int64(), "yield fee")
			assertConserved(t, d)
		})
	}
}

func TestDistributionShareOf(t *testing.T) {
	d, err := vault.Distribute(&vault.SettlementInput{
		Pool:             big.NewInt(29),
		YieldEarned:      new(big.Int),
		StakeAmount:      big.NewInt(10),
		ParticipantCount: 3,
		VerifiedCount:    3,
	})
	require.NoError(t, err)

	var shares []int64
	for n := uint64(0); n <= 4; n++ {
		shares = append(shares, d.ShareOf(n).Int64())
	}
	assert.Equal(t, []int64{0, 9, 9, 11, 0}, shares)
}

func TestDistributeRejectsInconsistentCounts(t *testing.T) {
	_, err := vault.Distribute(&vault.SettlementInput{
		Pool:             big.NewInt(1),
		YieldEarned:      new(big.Int),
		StakeAmount:      big.NewInt(1),
		ParticipantCount: 1,
		VerifiedCount:    2,
	})
	assert.Error(t, err)
}

// assertConserved checks that fee and shares add up to the pool exactly.
func assertConserved(t *testing.T, d *vault.Distribution) {
	t.Helper()

	sum := new(big.Int).Set(d.Fee)
	lo, hi := (*big.Int)(nil), (*big.Int)(nil)
	for n := uint64(1); n <= d.VerifiedCount; n++ {
		s := d.ShareOf(n)
		sum.Add(sum, s)
		if lo == nil || s.Cmp(lo) < 0 {
			lo = s
		}
		if hi == nil || s.Cmp(hi) > 0 {
			hi = s
		}
	}
	assert.Equal(t, 0, sum.Cmp(d.Pool), "fee %v + shares must equal pool %v", d.Fee, d.Pool)
	assert.True(t, d.Fee.Cmp(d.Pool) <= 0, "fee exceeds pool")

	if d.VerifiedCount == 0 {
		assert.Equal(t, 0, d.Fee.Cmp(d.Pool))
		return
	}
	spread := new(big.Int).Sub(hi, lo)
	assert.Equal(t, 0, spread.Cmp(d.Remainder))
	assert.True(t, d.Remainder.Cmp(new(big.Int).SetUint64(d.VerifiedCount)) < 0)
}

func TestDistributeProperties(t *testing.T) {
	f := fuzz.New().NilChance(0)

	for range 2000 {
		var (
			pool, yield, stake   uint64
			participants, verif  uint16
			forfeitBps, yieldBps uint16
		)
		f.Fuzz(&pool)
		f.Fuzz(&yield)
		f.Fuzz(&stake)
		f.Fuzz(&participants)
		f.Fuzz(&verif)
		f.Fuzz(&forfeitBps)
		f.Fuzz(&yieldBps)

		count := uint64(participants%500) + 1
		in := &vault.SettlementInput{
			Pool:             new(big.Int).SetUint64(pool),
			YieldEarned:      new(big.Int).SetUint64(yield % (pool + 1)),
			StakeAmount:      new(big.Int).SetUint64(stake),
			ParticipantCount: count,
			VerifiedCount:    uint64(verif) % (count + 1),
			ForfeitFeeBps:    uint64(forfeitBps) % 10001,
			YieldFeeBps:      uint64(yieldBps) % 10001,
		}
		d, err := vault.Distribute(in)
		require.NoError(t, err)
		assertConserved(t, d)
	}
}
