// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/vechain/pledge/kv"
	"github.com/vechain/pledge/log"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/stackedmap"
)

var logger = log.WithContext("pkg", "state")

const cacheSize = 16384

var (
	storageBucket = kv.Bucket("s")
	kindBucket    = kv.Bucket("k")
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Cause returns the underlying error.
func (e *Error) Cause() error {
	return e.cause
}

func (e *Error) Unwrap() error {
	return e.cause
}

type (
	storageKey struct {
		addr pledge.Address
		key  pledge.Bytes32
	}
	kindKey     pledge.Address
	logKey      int
	logCountKey struct{}
)

// State manages contract storage on top of a kv store.
// It is not safe for concurrent use.
type State struct {
	db    kv.Store
	cache *lru.Cache // committed raw values, keyed by kv key
	sm    *stackedmap.StackedMap[any, any]
}

// New create state object.
func New(db kv.Store) *State {
	cache, _ := lru.New(cacheSize)
	s := &State{db: db, cache: cache}
	s.reset()
	return s
}

func (s *State) reset() {
	s.sm = stackedmap.New(func(key any) (any, bool, error) {
		return s.committedGetter(key)
	})
}

// committedGetter implements stackedmap.MapGetter.
func (s *State) committedGetter(key any) (any, bool, error) {
	switch k := key.(type) {
	case storageKey:
		v, err := s.load(storageBucket.Key(append(k.addr.Bytes(), k.key.Bytes()...)))
		if err != nil {
			return nil, false, err
		}
		return rlp.RawValue(v), true, nil
	case kindKey:
		v, err := s.load(kindBucket.Key(pledge.Address(k).Bytes()))
		if err != nil {
			return nil, false, err
		}
		return string(v), true, nil
	case logKey:
		return nil, false, nil
	case logCountKey:
		return 0, true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func (s *State) load(key []byte) ([]byte, error) {
	if v, ok := s.cache.Get(string(key)); ok {
		return v.([]byte), nil
	}
	v, err := s.db.Get(key)
	if err != nil {
		if !s.db.IsNotFound(err) {
			return nil, err
		}
		v = nil
	}
	s.cache.Add(string(key), v)
	return v, nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr pledge.Address, key pledge.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr pledge.Address, key pledge.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr pledge.Address, key pledge.Bytes32) (pledge.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return pledge.Bytes32{}, err
	}
	if len(raw) == 0 {
		return pledge.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return pledge.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, return hash of raw data
		return pledge.Blake2b(raw), nil
	}
	return pledge.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr pledge.Address, key, value pledge.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr pledge.Address, key pledge.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr pledge.Address, key pledge.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// GetKind returns the contract kind deployed at the given address.
// Empty string means no contract.
func (s *State) GetKind(addr pledge.Address) (string, error) {
	v, _, err := s.sm.Get(kindKey(addr))
	if err != nil {
		return "", &Error{err}
	}
	return v.(string), nil
}

// SetKind marks the given address as a contract of the given kind.
func (s *State) SetKind(addr pledge.Address, kind string) {
	s.sm.Put(kindKey(addr), kind)
}

// Exists returns whether a contract is deployed at the given address.
func (s *State) Exists(addr pledge.Address) (bool, error) {
	kind, err := s.GetKind(addr)
	if err != nil {
		return false, err
	}
	return kind != "", nil
}

// AddEvent appends an event to the journal.
func (s *State) AddEvent(ev *pledge.Event) {
	n := s.eventCount()
	s.sm.Put(logKey(n), ev)
	s.sm.Put(logCountKey{}, n+1)
}

func (s *State) eventCount() int {
	v, _, _ := s.sm.Get(logCountKey{})
	return v.(int)
}

// Events returns events emitted since the last commit, in emission order.
func (s *State) Events() []*pledge.Event {
	n := s.eventCount()
	events := make([]*pledge.Event, n)
	for _, entry := range s.sm.Journal() {
		if k, ok := entry.Key.(logKey); ok && int(k) < n {
			events[k] = entry.Value.(*pledge.Event)
		}
	}
	return events
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Changes returns the number of journaled writes not yet committed.
func (s *State) Changes() int {
	return len(s.sm.Journal())
}

// Commit writes all journaled storage changes into the kv store atomically and
// returns the events emitted since the last commit. The journal is reset afterwards.
func (s *State) Commit() ([]*pledge.Event, error) {
	events := s.Events()

	var (
		batch   = s.db.NewBatch()
		updates = make(map[string][]byte)
	)
	for _, entry := range s.sm.Journal() {
		switch k := entry.Key.(type) {
		case storageKey:
			updates[string(storageBucket.Key(append(k.addr.Bytes(), k.key.Bytes()...)))] = entry.Value.(rlp.RawValue)
		case kindKey:
			updates[string(kindBucket.Key(pledge.Address(k).Bytes()))] = []byte(entry.Value.(string))
		}
	}
	for k, v := range updates {
		var err error
		if len(v) == 0 {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), v)
		}
		if err != nil {
			return nil, &Error{errors.Wrap(err, "stage")}
		}
	}
	if err := batch.Write(); err != nil {
		return nil, &Error{errors.Wrap(err, "commit")}
	}
	for k, v := range updates {
		s.cache.Add(k, v)
	}
	s.reset()

	logger.Debug("state committed", "writes", len(updates), "events", len(events))
	return events, nil
}

// Discard drops all uncommitted changes.
func (s *State) Discard() {
	s.reset()
}
