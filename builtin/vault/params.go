// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"encoding/json"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/pledge"
)

// YieldConfig selects the optional yield source of a vault.
type YieldConfig struct {
	source pledge.Address
	active bool
}

// NoYield keeps pooled funds idle in the vault.
func NoYield() YieldConfig {
	return YieldConfig{}
}

// WithYield routes pooled funds through the yield source at addr once the event starts.
func WithYield(addr pledge.Address) YieldConfig {
	return YieldConfig{source: addr, active: true}
}

// Source returns the yield source address and whether one is configured.
func (y YieldConfig) Source() (pledge.Address, bool) {
	return y.source, y.active
}

// Active reports whether a yield source is configured.
func (y YieldConfig) Active() bool {
	return y.active
}

type yieldConfigRLP struct {
	Active bool
	Source pledge.Address
}

// EncodeRLP implements rlp.Encoder.
func (y YieldConfig) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &yieldConfigRLP{y.active, y.source})
}

// DecodeRLP implements rlp.Decoder.
func (y *YieldConfig) DecodeRLP(s *rlp.Stream) error {
	var v yieldConfigRLP
	if err := s.Decode(&v); err != nil {
		return err
	}
	*y = YieldConfig{source: v.Source, active: v.Active}
	return nil
}

// MarshalJSON renders the source address, or null without yield.
func (y YieldConfig) MarshalJSON() ([]byte, error) {
	if !y.active {
		return []byte("null"), nil
	}
	return json.Marshal(&y.source)
}

// UnmarshalJSON accepts an address or null.
func (y *YieldConfig) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*y = NoYield()
		return nil
	}
	var addr pledge.Address
	if err := json.Unmarshal(data, &addr); err != nil {
		return err
	}
	*y = WithYield(addr)
	return nil
}

// Params are the immutable parameters of a vault, fixed at creation.
type Params struct {
	Asset           pledge.Address
	StakeAmount     *big.Int
	MaxParticipants uint64
	Treasury        pledge.Address
	Authority       pledge.Address
	Yield           YieldConfig
	ForfeitFeeBps   uint64
	YieldFeeBps     uint64
}

// Validate checks the parameters in isolation.
func (p *Params) Validate() error {
	if p.Asset.IsZero() {
		return reverts.ErrInvalidAddress.Withf("asset")
	}
	if p.Treasury.IsZero() {
		return reverts.ErrInvalidAddress.Withf("treasury")
	}
	if p.Authority.IsZero() {
		return reverts.ErrInvalidAddress.Withf("authority")
	}
	if p.StakeAmount == nil || p.StakeAmount.Sign() <= 0 {
		return reverts.ErrInvalidStakeAmount
	}
	if p.MaxParticipants == 0 {
		return reverts.ErrInvalidMaxParticipants
	}
	if p.ForfeitFeeBps > pledge.BasisPoints || p.YieldFeeBps > pledge.BasisPoints {
		return reverts.ErrInvalidFeeRate.Withf("forfeit %d, yield %d", p.ForfeitFeeBps, p.YieldFeeBps)
	}
	if src, ok := p.Yield.Source(); ok && src.IsZero() {
		return reverts.ErrInvalidYieldSource.Withf("zero address")
	}
	return nil
}
