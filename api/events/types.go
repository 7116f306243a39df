// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"
	"math/big"

	ethmath "github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/pledge/logdb"
	"github.com/vechain/pledge/pledge"
)

// LogMeta locates an event in the call history.
type LogMeta struct {
	CallID     pledge.Bytes32 `json:"callID"`
	CallNumber uint32         `json:"callNumber"`
	CallTime   uint64         `json:"callTime"`
	Caller     pledge.Address `json:"caller"`
	Index      uint32         `json:"index"`
}

// FilteredEvent is an event with its location.
type FilteredEvent struct {
	Address pledge.Address           `json:"address"`
	Name    string                   `json:"name"`
	Subject pledge.Address           `json:"subject"`
	Amount  *ethmath.HexOrDecimal256 `json:"amount"`
	Data    map[string]string        `json:"data,omitempty"`
	Meta    LogMeta                  `json:"meta"`
}

func amountOf(v *big.Int) *ethmath.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*ethmath.HexOrDecimal256)(new(big.Int).Set(v))
}

// ConvertEvent converts a stored event into its json form.
func ConvertEvent(event *logdb.Event) *FilteredEvent {
	return &FilteredEvent{
		Address: event.Address,
		Name:    event.Name,
		Subject: event.Subject,
		Amount:  amountOf(event.Amount),
		Data:    event.Data,
		Meta: LogMeta{
			CallID:     event.CallID,
			CallNumber: event.CallNumber,
			CallTime:   event.CallTime,
			Caller:     event.Caller,
			Index:      event.Index,
		},
	}
}

// NewFilteredEvent converts a freshly committed event into its json form.
func NewFilteredEvent(call *logdb.CallInfo, index int, ev *pledge.Event) *FilteredEvent {
	return &FilteredEvent{
		Address: ev.Address,
		Name:    ev.Name,
		Subject: ev.Subject,
		Amount:  amountOf(ev.Amount),
		Data:    ev.Data,
		Meta: LogMeta{
			CallID:     call.ID,
			CallNumber: call.Number,
			CallTime:   call.Time,
			Caller:     call.Caller,
			Index:      uint32(index),
		},
	}
}

type EventCriteria struct {
	Address *pledge.Address `json:"address"`
	Name    *string         `json:"name"`
	Subject *pledge.Address `json:"subject"`
}

// Matches reports whether ev satisfies every set field of the criteria.
func (c *EventCriteria) Matches(ev *pledge.Event) bool {
	if c.Address != nil && *c.Address != ev.Address {
		return false
	}
	if c.Name != nil && *c.Name != ev.Name {
		return false
	}
	if c.Subject != nil && *c.Subject != ev.Subject {
		return false
	}
	return true
}

type Range struct {
	Unit logdb.RangeType `json:"unit,omitempty"`
	From *uint64         `json:"from,omitempty"`
	To   *uint64         `json:"to,omitempty"`
}

func (r *Range) Validate() error {
	if r == nil {
		return nil
	}
	if r.Unit != "" && r.Unit != logdb.Call && r.Unit != logdb.Time {
		return fmt.Errorf("filter.Range.Unit must be either 'call' or 'time', got '%s'", r.Unit)
	}
	if r.From != nil && r.To != nil && *r.From > *r.To {
		return fmt.Errorf("filter.Range.To must be greater than or equal to filter.Range.From")
	}
	return nil
}

type Options struct {
	Offset uint64  `json:"offset,omitempty"`
	Limit  *uint64 `json:"limit,omitempty"`
}

func (o *Options) Validate(limit uint64) error {
	if o == nil {
		return nil
	}
	if o.Limit != nil && *o.Limit > limit {
		return fmt.Errorf("options.limit exceeds the maximum allowed value of %d", limit)
	}
	if o.Offset > math.MaxInt64 {
		return fmt.Errorf("options.offset exceeds the maximum allowed value of %d", uint64(math.MaxInt64))
	}
	return nil
}

type EventFilter struct {
	CallID      *pledge.Bytes32  `json:"callID,omitempty"`
	CriteriaSet []*EventCriteria `json:"criteriaSet,omitempty"`
	Range       *Range           `json:"range,omitempty"`
	Options     *Options         `json:"options,omitempty"`
	Order       logdb.Order      `json:"order,omitempty"`
}

func (f *EventFilter) Validate(limit uint64) error {
	if f.Order != "" && f.Order != logdb.ASC && f.Order != logdb.DESC {
		return fmt.Errorf("order must be either 'asc' or 'desc', got '%s'", f.Order)
	}
	// {} is accepted as a match-all criterion, null is not
	for i, criterion := range f.CriteriaSet {
		if criterion == nil {
			return fmt.Errorf("criteriaSet[%d]: null not allowed", i)
		}
	}
	if err := f.Range.Validate(); err != nil {
		return err
	}
	return f.Options.Validate(limit)
}

// ConvertEventFilter converts a validated filter with options set.
func ConvertEventFilter(filter *EventFilter) *logdb.EventFilter {
	f := &logdb.EventFilter{
		CallID: filter.CallID,
		Options: &logdb.Options{
			Offset: filter.Options.Offset,
			Limit:  *filter.Options.Limit,
		},
		Order: filter.Order,
	}
	if r := filter.Range; r != nil {
		rng := &logdb.Range{Unit: logdb.Call, To: math.MaxInt64}
		if r.Unit != "" {
			rng.Unit = r.Unit
		}
		if r.From != nil {
			rng.From = *r.From
		}
		if r.To != nil {
			rng.To = *r.To
		}
		f.Range = rng
	}
	for _, c := range filter.CriteriaSet {
		f.CriteriaSet = append(f.CriteriaSet, &logdb.EventCriteria{
			Address: c.Address,
			Name:    c.Name,
			Subject: c.Subject,
		})
	}
	return f
}
