// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pledge

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
)

// Event is a log record emitted by a contract.
// Subject is the address the event is primarily about (participant, holder, vault).
// Data carries the remaining named fields rendered as strings.
type Event struct {
	Address Address
	Name    string
	Subject Address
	Amount  *big.Int
	Data    map[string]string
}

type eventJSON struct {
	Address Address               `json:"address"`
	Name    string                `json:"name"`
	Subject Address               `json:"subject"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
	Data    map[string]string     `json:"data,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e *Event) MarshalJSON() ([]byte, error) {
	amount := e.Amount
	if amount == nil {
		amount = new(big.Int)
	}
	return json.Marshal(&eventJSON{
		Address: e.Address,
		Name:    e.Name,
		Subject: e.Subject,
		Amount:  (*math.HexOrDecimal256)(amount),
		Data:    e.Data,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Event) UnmarshalJSON(data []byte) error {
	var v eventJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	e.Address, e.Name, e.Subject, e.Data = v.Address, v.Name, v.Subject, v.Data
	e.Amount = new(big.Int)
	if v.Amount != nil {
		e.Amount = (*big.Int)(v.Amount)
	}
	return nil
}
