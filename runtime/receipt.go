// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/vechain/pledge/pledge"
)

// Receipt is the outcome of an executed call.
type Receipt struct {
	CallID   pledge.Bytes32  `json:"callID"`
	Number   uint32          `json:"number"`
	Caller   pledge.Address  `json:"caller"`
	Reverted bool            `json:"reverted"`
	Reason   string          `json:"reason,omitempty"`
	Output   any             `json:"output"`
	Events   []*pledge.Event `json:"events"`
}
