// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"
)

// Status is the public lifecycle status of a participant.
type Status uint8

const (
	StatusNotStaked Status = iota
	StatusStaked
	StatusVerified
	StatusClaimed
)

func (s Status) String() string {
	switch s {
	case StatusStaked:
		return "STAKED"
	case StatusVerified:
		return "VERIFIED"
	case StatusClaimed:
		return "CLAIMED"
	}
	return "NOT_STAKED"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Participant is the record kept for every address that ever staked.
// The flags are one-way; Claimable is assigned once at settlement and zeroed once at claim.
type Participant struct {
	HasStaked  bool
	IsVerified bool
	HasClaimed bool
	Claimable  *big.Int
}

// Status derives the public status of the record.
func (p *Participant) Status() Status {
	switch {
	case p.HasClaimed:
		return StatusClaimed
	case p.IsVerified:
		return StatusVerified
	case p.HasStaked:
		return StatusStaked
	}
	return StatusNotStaked
}

// ClaimableAmount returns the claimable amount, zero if unset.
func (p *Participant) ClaimableAmount() *big.Int {
	if p.Claimable == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(p.Claimable)
}
