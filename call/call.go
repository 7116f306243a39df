// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package call defines the signed envelope that invokes a method of a native contract.
package call

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/pledge/pledge"
)

// Call is an immutable signed method invocation.
type Call struct {
	body body

	cache struct {
		id *pledge.Bytes32
	}
}

type body struct {
	Target    pledge.Address
	Method    string
	Args      []byte
	Nonce     uint64
	Signature []byte
}

// New creates an unsigned call. Args are compacted so that the signed bytes survive
// a json round trip. Empty args are normalized to "{}".
func New(target pledge.Address, method string, args json.RawMessage, nonce uint64) *Call {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, args); err == nil {
		args = buf.Bytes()
	}
	return &Call{body: body{
		Target: target,
		Method: method,
		Args:   append([]byte(nil), args...),
		Nonce:  nonce,
	}}
}

// Target returns the contract address.
func (c *Call) Target() pledge.Address {
	return c.body.Target
}

// Method returns the method name.
func (c *Call) Method() string {
	return c.body.Method
}

// Args returns a copy of the JSON arguments.
func (c *Call) Args() json.RawMessage {
	return append(json.RawMessage(nil), c.body.Args...)
}

// Nonce returns the per-caller sequence number.
func (c *Call) Nonce() uint64 {
	return c.body.Nonce
}

// Signature returns a copy of the signature.
func (c *Call) Signature() []byte {
	return append([]byte(nil), c.body.Signature...)
}

// SigningHash returns the hash of the call excluding the signature.
func (c *Call) SigningHash() pledge.Bytes32 {
	return pledge.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, []any{
			c.body.Target,
			c.body.Method,
			c.body.Args,
			c.body.Nonce,
		})
	})
}

// ID returns the hash of the whole signed call.
func (c *Call) ID() pledge.Bytes32 {
	if cached := c.cache.id; cached != nil {
		return *cached
	}
	id := pledge.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, c)
	})
	c.cache.id = &id
	return id
}

// WithSignature returns a copy of the call carrying sig.
func (c *Call) WithSignature(sig []byte) *Call {
	signed := Call{body: c.body}
	signed.body.Signature = append([]byte(nil), sig...)
	return &signed
}

// Sign signs the call with key.
func Sign(c *Call, key *ecdsa.PrivateKey) (*Call, error) {
	h := c.SigningHash()
	sig, err := crypto.Sign(h[:], key)
	if err != nil {
		return nil, err
	}
	return c.WithSignature(sig), nil
}

// EncodeRLP implements rlp.Encoder.
func (c *Call) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &c.body)
}

// DecodeRLP implements rlp.Decoder.
func (c *Call) DecodeRLP(s *rlp.Stream) error {
	var b body
	if err := s.Decode(&b); err != nil {
		return err
	}
	*c = Call{body: b}
	return nil
}

type callJSON struct {
	Target    pledge.Address  `json:"target"`
	Method    string          `json:"method"`
	Args      json.RawMessage `json:"args"`
	Nonce     uint64          `json:"nonce"`
	Signature hexutil.Bytes   `json:"signature"`
}

// MarshalJSON implements json.Marshaler.
func (c *Call) MarshalJSON() ([]byte, error) {
	return json.Marshal(&callJSON{
		Target:    c.body.Target,
		Method:    c.body.Method,
		Args:      c.body.Args,
		Nonce:     c.body.Nonce,
		Signature: c.body.Signature,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Call) UnmarshalJSON(data []byte) error {
	var v callJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = *New(v.Target, v.Method, v.Args, v.Nonce).WithSignature(v.Signature)
	return nil
}
