// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"
	"strconv"

	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/pledge"
)

func (v *Vault) emit(name string, subject pledge.Address, amount *big.Int, data map[string]string) {
	if amount == nil {
		amount = new(big.Int)
	}
	v.state.AddEvent(&pledge.Event{
		Address: v.addr,
		Name:    name,
		Subject: subject,
		Amount:  new(big.Int).Set(amount),
		Data:    data,
	})
}

// OpenStaking reopens registration after it was closed.
func (v *Vault) OpenStaking(caller pledge.Address) error {
	return v.dispatch(OpOpenStaking, caller, func(_ *Params, _ Phase) error {
		v.emit("StakingOpened", caller, nil, nil)
		return nil
	})
}

// CloseStaking closes registration.
func (v *Vault) CloseStaking(caller pledge.Address) error {
	return v.dispatch(OpCloseStaking, caller, func(_ *Params, _ Phase) error {
		v.emit("StakingClosed", caller, nil, nil)
		return nil
	})
}

// Stake registers caller by pulling exactly the stake amount from it.
// The vault must be approved to spend the stake beforehand.
func (v *Vault) Stake(caller pledge.Address) error {
	return v.dispatch(OpStake, caller, func(params *Params, _ Phase) error {
		p, err := v.participants.Get(caller)
		if err != nil {
			return err
		}
		if p.HasStaked {
			return reverts.ErrAlreadyStaked.Withf("%v", caller)
		}
		count, err := v.roster.Len()
		if err != nil {
			return err
		}
		if count >= params.MaxParticipants {
			return reverts.ErrMaxParticipantsReached.Withf("capacity %d", params.MaxParticipants)
		}

		p.HasStaked = true
		if err := v.participants.Set(caller, p); err != nil {
			return err
		}
		if _, err := v.roster.Push(caller); err != nil {
			return err
		}
		if err := v.totalStaked.Add(params.StakeAmount); err != nil {
			return err
		}
		v.emit("Staked", caller, params.StakeAmount, nil)

		if err := v.binder.Asset(params.Asset).TransferFrom(v.addr, caller, v.addr, params.StakeAmount); err != nil {
			return err
		}
		logger.Debug("staked", "vault", v.addr, "participant", caller, "amount", params.StakeAmount)
		return nil
	})
}

// Verify marks a single participant as attended. It rejects non-stakers and repeats.
func (v *Vault) Verify(caller, participant pledge.Address) error {
	return v.dispatch(OpVerify, caller, func(_ *Params, _ Phase) error {
		p, err := v.participants.Get(participant)
		if err != nil {
			return err
		}
		if !p.HasStaked {
			return reverts.ErrNotStaked.Withf("%v", participant)
		}
		if p.IsVerified {
			return reverts.ErrAlreadyVerified.Withf("%v", participant)
		}
		return v.markVerified(participant, p)
	})
}

// VerifyBatch marks every listed participant that staked and is not yet verified.
// Other entries are skipped silently, so overlapping lists may be resubmitted.
// It returns the number of newly verified participants.
func (v *Vault) VerifyBatch(caller pledge.Address, participants []pledge.Address) (uint64, error) {
	var verified uint64
	err := v.dispatch(OpVerifyBatch, caller, func(_ *Params, _ Phase) error {
		for _, addr := range participants {
			p, err := v.participants.Get(addr)
			if err != nil {
				return err
			}
			if !p.HasStaked || p.IsVerified {
				continue
			}
			if err := v.markVerified(addr, p); err != nil {
				return err
			}
			verified++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return verified, nil
}

func (v *Vault) markVerified(addr pledge.Address, p *Participant) error {
	p.IsVerified = true
	if err := v.participants.Set(addr, p); err != nil {
		return err
	}
	if err := v.verifiedCount.Add(big.NewInt(1)); err != nil {
		return err
	}
	v.emit("Verified", addr, nil, nil)
	logger.Debug("verified", "vault", v.addr, "participant", addr)
	return nil
}

// DepositToYield starts the event. With a yield source configured, the whole pooled
// balance is deposited into it; otherwise only the phase changes.
func (v *Vault) DepositToYield(caller pledge.Address) error {
	return v.dispatch(OpDepositToYield, caller, func(params *Params, _ Phase) error {
		staked, err := v.totalStaked.Get()
		if err != nil {
			return err
		}
		if staked.Sign() == 0 {
			return reverts.ErrNoAssetsToDeposit
		}
		v.eventStarted.Set(true)

		src, ok := params.Yield.Source()
		if !ok {
			v.emit("DepositedToYield", v.addr, nil, map[string]string{"shares": "0"})
			return nil
		}

		asset := v.binder.Asset(params.Asset)
		amount, err := asset.BalanceOf(v.addr)
		if err != nil {
			return err
		}
		if amount.Sign() == 0 {
			return reverts.ErrNoAssetsToDeposit
		}
		v.depositedAmount.Set(amount)

		if err := asset.Approve(v.addr, src, amount); err != nil {
			return err
		}
		shares, err := v.binder.YieldSource(src).Deposit(v.addr, amount, v.addr)
		if err != nil {
			return err
		}
		v.sharesHeld.Set(shares)
		v.emit("DepositedToYield", v.addr, amount, map[string]string{"shares": shares.String()})

		logger.Debug("deposited to yield", "vault", v.addr, "source", src, "amount", amount, "shares", shares)
		return nil
	})
}

// Settle unwinds the yield position, computes fees and payouts, and pays the treasury.
// It may succeed only once.
func (v *Vault) Settle(caller pledge.Address) error {
	return v.dispatch(OpSettle, caller, func(params *Params, _ Phase) error {
		participantCount, err := v.roster.Len()
		if err != nil {
			return err
		}
		if participantCount == 0 {
			return reverts.ErrNoParticipants
		}
		verifiedCount, err := v.VerifiedCount()
		if err != nil {
			return err
		}

		pool, yieldEarned, err := v.unwind(params)
		if err != nil {
			return err
		}

		dist, err := Distribute(&SettlementInput{
			Pool:             pool,
			YieldEarned:      yieldEarned,
			StakeAmount:      params.StakeAmount,
			ParticipantCount: participantCount,
			VerifiedCount:    verifiedCount,
			ForfeitFeeBps:    params.ForfeitFeeBps,
			YieldFeeBps:      params.YieldFeeBps,
		})
		if err != nil {
			return err
		}

		if err := v.assignShares(participantCount, dist); err != nil {
			return err
		}
		v.yieldEarned.Set(yieldEarned)
		v.protocolFees.Set(dist.Fee)
		v.emit("Settled", v.addr, pool, map[string]string{
			"fee":           dist.Fee.String(),
			"yield":         yieldEarned.String(),
			"verifiedCount": strconv.FormatUint(verifiedCount, 10),
		})

		if dist.Fee.Sign() > 0 {
			if err := v.binder.Asset(params.Asset).Transfer(v.addr, params.Treasury, dist.Fee); err != nil {
				return err
			}
		}

		metricSettlement().Add(1)
		if dist.Fee.IsInt64() {
			metricLastFee().Set(dist.Fee.Int64())
		}
		logger.Info("vault settled",
			"vault", v.addr,
			"pool", pool,
			"fee", dist.Fee,
			"yield", yieldEarned,
			"participants", participantCount,
			"verified", verifiedCount,
			"share", dist.Share,
			"remainder", dist.Remainder,
		)
		return nil
	})
}

// unwind returns the distributable pool and the earned yield. A held yield position
// is redeemed in full, whatever it is worth.
func (v *Vault) unwind(params *Params) (pool, yieldEarned *big.Int, err error) {
	yieldEarned = new(big.Int)

	deposited, err := v.depositedAmount.Get()
	if err != nil {
		return nil, nil, err
	}
	src, ok := params.Yield.Source()
	if !ok || deposited.Sign() == 0 {
		pool, err = v.totalStaked.Get()
		return pool, yieldEarned, err
	}

	shares, err := v.sharesHeld.Get()
	if err != nil {
		return nil, nil, err
	}
	pool = new(big.Int)
	if shares.Sign() > 0 {
		v.sharesHeld.Set(new(big.Int))
		if pool, err = v.binder.YieldSource(src).Redeem(v.addr, shares, v.addr, v.addr); err != nil {
			return nil, nil, err
		}
	}
	if pool.Cmp(deposited) > 0 {
		yieldEarned.Sub(pool, deposited)
	}
	return pool, yieldEarned, nil
}

// assignShares credits verified participants in roster order; the last one takes the remainder.
func (v *Vault) assignShares(participantCount uint64, dist *Distribution) error {
	if dist.VerifiedCount == 0 {
		return nil
	}
	var seen uint64
	for i := uint64(0); i < participantCount && seen < dist.VerifiedCount; i++ {
		addr, err := v.roster.Get(i)
		if err != nil {
			return err
		}
		p, err := v.participants.Get(addr)
		if err != nil {
			return err
		}
		if !p.IsVerified {
			continue
		}
		seen++
		p.Claimable = dist.ShareOf(seen)
		if err := v.participants.Set(addr, p); err != nil {
			return err
		}
	}
	return nil
}

// Claim pays caller its settled share.
func (v *Vault) Claim(caller pledge.Address) (*big.Int, error) {
	var amount *big.Int
	err := v.dispatch(OpClaim, caller, func(params *Params, _ Phase) error {
		p, err := v.participants.Get(caller)
		if err != nil {
			return err
		}
		switch {
		case !p.HasStaked:
			return reverts.ErrNotStaked.Withf("%v", caller)
		case !p.IsVerified:
			return reverts.ErrNotVerified.Withf("%v", caller)
		case p.HasClaimed:
			return reverts.ErrAlreadyClaimed.Withf("%v", caller)
		}
		amount = p.ClaimableAmount()
		if amount.Sign() == 0 {
			return reverts.ErrNothingToClaim
		}

		// zero before paying out
		p.HasClaimed = true
		p.Claimable = new(big.Int)
		if err := v.participants.Set(caller, p); err != nil {
			return err
		}
		v.emit("Claimed", caller, amount, nil)

		if err := v.binder.Asset(params.Asset).Transfer(v.addr, caller, amount); err != nil {
			return err
		}
		logger.Debug("claimed", "vault", v.addr, "participant", caller, "amount", amount)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}
