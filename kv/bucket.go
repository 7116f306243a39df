// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "github.com/syndtr/goleveldb/leveldb/util"

// Bucket provides logical bucket for kv store.
type Bucket string

// Key returns the prefixed form of key.
func (b Bucket) Key(key []byte) []byte {
	return append([]byte(b), key...)
}

// Range returns the key range covering every key in the bucket.
func (b Bucket) Range() Range {
	r := util.BytesPrefix([]byte(b))
	return Range{Start: r.Start, Limit: r.Limit}
}

// NewStore creates a bucket store from the source store.
// Closing the bucket store does not close the source.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{b, src}
}

type bucketStore struct {
	b   Bucket
	src Store
}

func (s *bucketStore) Get(key []byte) ([]byte, error) { return s.src.Get(s.b.Key(key)) }
func (s *bucketStore) Has(key []byte) (bool, error)   { return s.src.Has(s.b.Key(key)) }
func (s *bucketStore) IsNotFound(err error) bool      { return s.src.IsNotFound(err) }
func (s *bucketStore) Put(key, val []byte) error      { return s.src.Put(s.b.Key(key), val) }
func (s *bucketStore) Delete(key []byte) error        { return s.src.Delete(s.b.Key(key)) }
func (s *bucketStore) Close() error                   { return nil }

func (s *bucketStore) NewBatch() Batch {
	return &bucketBatch{s.b, s.src.NewBatch()}
}

func (s *bucketStore) Iterate(r Range) Iterator {
	full := s.b.Range()
	if r.Start != nil {
		full.Start = s.b.Key(r.Start)
	}
	if r.Limit != nil {
		full.Limit = s.b.Key(r.Limit)
	}
	return &bucketIterator{s.src.Iterate(full), len(s.b)}
}

type bucketBatch struct {
	b     Bucket
	batch Batch
}

func (bb *bucketBatch) Put(key, val []byte) error { return bb.batch.Put(bb.b.Key(key), val) }
func (bb *bucketBatch) Delete(key []byte) error   { return bb.batch.Delete(bb.b.Key(key)) }
func (bb *bucketBatch) Len() int                  { return bb.batch.Len() }
func (bb *bucketBatch) Write() error              { return bb.batch.Write() }

type bucketIterator struct {
	Iterator
	prefixLen int
}

func (it *bucketIterator) Key() []byte {
	return it.Iterator.Key()[it.prefixLen:]
}
