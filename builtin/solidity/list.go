// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/pledge/pledge"
)

// List is an append-only array, similar to a dynamic array in Solidity.
// The length lives at pos, item i at blake2b(i, pos).
type List[V any] struct {
	context *Context
	basePos pledge.Bytes32
	length  *Uint256
}

func NewList[V any](context *Context, pos pledge.Bytes32) *List[V] {
	return &List[V]{context: context, basePos: pos, length: NewUint256(context, pos)}
}

func (l *List[V]) position(index uint64) pledge.Bytes32 {
	return pledge.Blake2b(new(big.Int).SetUint64(index).Bytes(), l.basePos.Bytes())
}

// Len returns the number of items.
func (l *List[V]) Len() (uint64, error) {
	n, err := l.length.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Get returns the item at index.
func (l *List[V]) Get(index uint64) (value V, err error) {
	n, err := l.Len()
	if err != nil {
		return
	}
	if index >= n {
		err = errors.Errorf("index out of range: %d >= %d", index, n)
		return
	}
	err = l.context.state.DecodeStorage(l.context.address, l.position(index), func(raw []byte) error {
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Push appends an item and returns its index.
func (l *List[V]) Push(value V) (uint64, error) {
	n, err := l.Len()
	if err != nil {
		return 0, err
	}
	if err := l.context.state.EncodeStorage(l.context.address, l.position(n), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	}); err != nil {
		return 0, err
	}
	l.length.Set(new(big.Int).SetUint64(n + 1))
	return n, nil
}

// Range returns items in [offset, offset+limit), clipped to the list length.
func (l *List[V]) Range(offset, limit uint64) ([]V, error) {
	n, err := l.Len()
	if err != nil {
		return nil, err
	}
	if offset >= n {
		return nil, nil
	}
	end := n
	if limit < n-offset {
		end = offset + limit
	}
	items := make([]V, 0, end-offset)
	for i := offset; i < end; i++ {
		v, err := l.Get(i)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}
