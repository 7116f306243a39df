// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/pledge/builtin/vault"
	"github.com/vechain/pledge/pledge"
)

// VaultParams is the JSON view of vault parameters.
type VaultParams struct {
	Asset           pledge.Address        `json:"asset"`
	StakeAmount     *math.HexOrDecimal256 `json:"stakeAmount"`
	MaxParticipants uint64                `json:"maxParticipants"`
	Treasury        pledge.Address        `json:"treasury"`
	Authority       pledge.Address        `json:"authority"`
	YieldSource     vault.YieldConfig     `json:"yieldSource"`
	ForfeitFeeBps   uint64                `json:"forfeitFeeBps"`
	YieldFeeBps     uint64                `json:"yieldFeeBps"`
}

func NewVaultParams(p *vault.Params) *VaultParams {
	return &VaultParams{
		Asset:           p.Asset,
		StakeAmount:     hexAmount(p.StakeAmount),
		MaxParticipants: p.MaxParticipants,
		Treasury:        p.Treasury,
		Authority:       p.Authority,
		YieldSource:     p.Yield,
		ForfeitFeeBps:   p.ForfeitFeeBps,
		YieldFeeBps:     p.YieldFeeBps,
	}
}

// VaultTotals is the JSON view of vault aggregates.
type VaultTotals struct {
	TotalStaked       *math.HexOrDecimal256 `json:"totalStaked"`
	TotalYieldEarned  *math.HexOrDecimal256 `json:"totalYieldEarned"`
	TotalProtocolFees *math.HexOrDecimal256 `json:"totalProtocolFees"`
	SharesHeld        *math.HexOrDecimal256 `json:"sharesHeld"`
	DepositedAmount   *math.HexOrDecimal256 `json:"depositedAmount"`
}

func NewVaultTotals(t *vault.Totals) *VaultTotals {
	return &VaultTotals{
		TotalStaked:       hexAmount(t.TotalStaked),
		TotalYieldEarned:  hexAmount(t.TotalYieldEarned),
		TotalProtocolFees: hexAmount(t.TotalProtocolFees),
		SharesHeld:        hexAmount(t.SharesHeld),
		DepositedAmount:   hexAmount(t.DepositedAmount),
	}
}

// VaultYield is the JSON view of the yield summary.
type VaultYield struct {
	Active    bool                  `json:"active"`
	Current   *math.HexOrDecimal256 `json:"current"`
	Deposited *math.HexOrDecimal256 `json:"deposited"`
	Estimated *math.HexOrDecimal256 `json:"estimated"`
}

func NewVaultYield(y *vault.YieldInfo) *VaultYield {
	return &VaultYield{
		Active:    y.Active,
		Current:   hexAmount(y.Current),
		Deposited: hexAmount(y.Deposited),
		Estimated: hexAmount(y.Estimated),
	}
}

// VaultSummary is the JSON view of the vault read surface.
type VaultSummary struct {
	Address          pledge.Address        `json:"address"`
	Params           *VaultParams          `json:"params"`
	Phase            vault.Phase           `json:"phase"`
	StakingOpen      bool                  `json:"stakingOpen"`
	EventStarted     bool                  `json:"eventStarted"`
	Settled          bool                  `json:"settled"`
	ParticipantCount uint64                `json:"participantCount"`
	VerifiedCount    uint64                `json:"verifiedCount"`
	Totals           *VaultTotals          `json:"totals"`
	CurrentBalance   *math.HexOrDecimal256 `json:"currentBalance"`
	Yield            *VaultYield           `json:"yield"`
}

func NewVaultSummary(s *vault.Summary) *VaultSummary {
	return &VaultSummary{
		Address:          s.Address,
		Params:           NewVaultParams(s.Params),
		Phase:            s.Phase,
		StakingOpen:      s.StakingOpen,
		EventStarted:     s.EventStarted,
		Settled:          s.Settled,
		ParticipantCount: s.ParticipantCount,
		VerifiedCount:    s.VerifiedCount,
		Totals:           NewVaultTotals(s.Totals),
		CurrentBalance:   hexAmount(s.CurrentBalance),
		Yield:            NewVaultYield(s.Yield),
	}
}

// ParticipantInfo is the JSON view of a participant record.
type ParticipantInfo struct {
	Address   pledge.Address        `json:"address"`
	Status    vault.Status          `json:"status"`
	Claimable *math.HexOrDecimal256 `json:"claimable"`
}

func NewParticipantInfo(addr pledge.Address, p *vault.Participant) *ParticipantInfo {
	return &ParticipantInfo{
		Address:   addr,
		Status:    p.Status(),
		Claimable: hexAmount(p.ClaimableAmount()),
	}
}

type participantArgs struct {
	Participant pledge.Address `json:"participant"`
}

type pageArgs struct {
	Offset uint64  `json:"offset"`
	Limit  *uint64 `json:"limit"`
}

// DefaultPageLimit bounds list queries without an explicit limit.
const DefaultPageLimit = 100

func (a *pageArgs) limit() uint64 {
	if a.Limit == nil {
		return DefaultPageLimit
	}
	return *a.Limit
}

func initVaultMethods() {
	register(vault.Kind, []*nativeMethod{
		// mutating
		{"openStaking", false, func(env *Env, inv *Invocation) (any, error) {
			if err := inv.ParseArgs(&struct{}{}); err != nil {
				return nil, err
			}
			return nil, env.Vault(inv.Target).OpenStaking(inv.Caller)
		}},
		{"closeStaking", false, func(env *Env, inv *Invocation) (any, error) {
			if err := inv.ParseArgs(&struct{}{}); err != nil {
				return nil, err
			}
			return nil, env.Vault(inv.Target).CloseStaking(inv.Caller)
		}},
		{"stake", false, func(env *Env, inv *Invocation) (any, error) {
			if err := inv.ParseArgs(&struct{}{}); err != nil {
				return nil, err
			}
			return nil, env.Vault(inv.Target).Stake(inv.Caller)
		}},
		{"verify", false, func(env *Env, inv *Invocation) (any, error) {
			var args participantArgs
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			return nil, env.Vault(inv.Target).Verify(inv.Caller, args.Participant)
		}},
		{"verifyBatch", false, func(env *Env, inv *Invocation) (any, error) {
			var args struct {
				Participants []pledge.Address `json:"participants"`
			}
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			return env.Vault(inv.Target).VerifyBatch(inv.Caller, args.Participants)
		}},
		{"depositToYield", false, func(env *Env, inv *Invocation) (any, error) {
			if err := inv.ParseArgs(&struct{}{}); err != nil {
				return nil, err
			}
			return nil, env.Vault(inv.Target).DepositToYield(inv.Caller)
		}},
		{"settle", false, func(env *Env, inv *Invocation) (any, error) {
			if err := inv.ParseArgs(&struct{}{}); err != nil {
				return nil, err
			}
			return nil, env.Vault(inv.Target).Settle(inv.Caller)
		}},
		{"claim", false, func(env *Env, inv *Invocation) (any, error) {
			if err := inv.ParseArgs(&struct{}{}); err != nil {
				return nil, err
			}
			amount, err := env.Vault(inv.Target).Claim(inv.Caller)
			if err != nil {
				return nil, err
			}
			return hexAmount(amount), nil
		}},

		// read-only
		{"summary", true, func(env *Env, inv *Invocation) (any, error) {
			s, err := env.Vault(inv.Target).Summary()
			if err != nil {
				return nil, err
			}
			return NewVaultSummary(s), nil
		}},
		{"params", true, func(env *Env, inv *Invocation) (any, error) {
			p, err := env.Vault(inv.Target).Params()
			if err != nil {
				return nil, err
			}
			return NewVaultParams(p), nil
		}},
		{"phase", true, func(env *Env, inv *Invocation) (any, error) {
			return env.Vault(inv.Target).Phase()
		}},
		{"participant", true, func(env *Env, inv *Invocation) (any, error) {
			var args participantArgs
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			p, err := env.Vault(inv.Target).Participant(args.Participant)
			if err != nil {
				return nil, err
			}
			return NewParticipantInfo(args.Participant, p), nil
		}},
		{"participantStatus", true, func(env *Env, inv *Invocation) (any, error) {
			var args participantArgs
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			return env.Vault(inv.Target).ParticipantStatus(args.Participant)
		}},
		{"claimable", true, func(env *Env, inv *Invocation) (any, error) {
			var args participantArgs
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			v, err := env.Vault(inv.Target).Claimable(args.Participant)
			if err != nil {
				return nil, err
			}
			return hexAmount(v), nil
		}},
		{"participantCount", true, func(env *Env, inv *Invocation) (any, error) {
			return env.Vault(inv.Target).ParticipantCount()
		}},
		{"verifiedCount", true, func(env *Env, inv *Invocation) (any, error) {
			return env.Vault(inv.Target).VerifiedCount()
		}},
		{"roster", true, func(env *Env, inv *Invocation) (any, error) {
			var args pageArgs
			if err := inv.ParseArgs(&args); err != nil {
				return nil, err
			}
			return env.Vault(inv.Target).Roster(args.Offset, args.limit())
		}},
		{"totals", true, func(env *Env, inv *Invocation) (any, error) {
			t, err := env.Vault(inv.Target).Totals()
			if err != nil {
				return nil, err
			}
			return NewVaultTotals(t), nil
		}},
		{"currentBalance", true, func(env *Env, inv *Invocation) (any, error) {
			v, err := env.Vault(inv.Target).CurrentBalance()
			if err != nil {
				return nil, err
			}
			return hexAmount(v), nil
		}},
		{"yieldInfo", true, func(env *Env, inv *Invocation) (any, error) {
			y, err := env.Vault(inv.Target).YieldInfo()
			if err != nil {
				return nil, err
			}
			return NewVaultYield(y), nil
		}},
	})
}
