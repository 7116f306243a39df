// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/vechain/pledge/pledge"
)

// CallInfo identifies the committed call that produced a batch of events.
type CallInfo struct {
	ID     pledge.Bytes32
	Number uint32
	Time   uint64
	Caller pledge.Address
}

// Event is a contract event as stored in the db.
type Event struct {
	CallID     pledge.Bytes32
	CallNumber uint32
	Index      uint32
	CallTime   uint64
	Caller     pledge.Address
	Address    pledge.Address // always a contract address
	Name       string
	Subject    pledge.Address
	Amount     *big.Int
	Data       map[string]string
}

type RangeType string

const (
	Call RangeType = "call"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is inclusive on both ends. To < From leaves the range open ended.
type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events on every non-nil field.
type EventCriteria struct {
	Address *pledge.Address
	Name    *string
	Subject *pledge.Address
}

// EventFilter selects events matching any of CriteriaSet within Range.
type EventFilter struct {
	CallID      *pledge.Bytes32
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
