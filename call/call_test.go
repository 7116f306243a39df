// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package call

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/test/datagen"
)

func TestSignAndRecover(t *testing.T) {
	key, addr := datagen.RandKey()
	c := New(datagen.RandAddress(), "stake", nil, 7)
	assert.Equal(t, "{}", string(c.Args()))

	signed, err := Sign(c, key)
	require.NoError(t, err)
	assert.Empty(t, c.Signature(), "original must stay unsigned")
	assert.Equal(t, c.SigningHash(), signed.SigningHash())
	assert.NotEqual(t, c.ID(), signed.ID())

	s := NewSigner()
	caller, err := s.Caller(signed)
	require.NoError(t, err)
	assert.Equal(t, addr, caller)

	// cached
	caller, err = s.Caller(signed)
	require.NoError(t, err)
	assert.Equal(t, addr, caller)
}

func TestInvalidSignature(t *testing.T) {
	s := NewSigner()
	c := New(datagen.RandAddress(), "stake", nil, 0)

	_, err := s.Caller(c)
	assert.ErrorIs(t, err, reverts.ErrInvalidSignature)

	bad := make([]byte, 65)
	bad[64] = 9
	_, err = s.Caller(c.WithSignature(bad))
	assert.ErrorIs(t, err, reverts.ErrInvalidSignature)
}

func TestSigningHashCoversFields(t *testing.T) {
	target := datagen.RandAddress()
	base := New(target, "verify", json.RawMessage(`{"participant":"0x01"}`), 1)

	for _, other := range []*Call{
		New(datagen.RandAddress(), "verify", json.RawMessage(`{"participant":"0x01"}`), 1),
		New(target, "settle", json.RawMessage(`{"participant":"0x01"}`), 1),
		New(target, "verify", json.RawMessage(`{"participant":"0x02"}`), 1),
		New(target, "verify", json.RawMessage(`{"participant":"0x01"}`), 2),
	} {
		assert.NotEqual(t, base.SigningHash(), other.SigningHash())
	}
}

func TestTamperedCallRecoversOtherCaller(t *testing.T) {
	key, addr := datagen.RandKey()
	signed, err := Sign(New(datagen.RandAddress(), "claim", nil, 3), key)
	require.NoError(t, err)

	tampered := New(signed.Target(), signed.Method(), signed.Args(), 4).WithSignature(signed.Signature())
	caller, err := NewSigner().Caller(tampered)
	if err == nil {
		assert.NotEqual(t, addr, caller)
	}
}

func TestEncoding(t *testing.T) {
	key, _ := datagen.RandKey()
	signed, err := Sign(New(datagen.RandAddress(), "verifyBatch", json.RawMessage(`{"participants":[]}`), 11), key)
	require.NoError(t, err)

	data, err := rlp.EncodeToBytes(signed)
	require.NoError(t, err)
	var decoded Call
	require.NoError(t, rlp.DecodeBytes(data, &decoded))
	assert.Equal(t, signed.ID(), decoded.ID())

	raw, err := json.Marshal(signed)
	require.NoError(t, err)
	var fromJSON Call
	require.NoError(t, json.Unmarshal(raw, &fromJSON))
	assert.Equal(t, signed.ID(), fromJSON.ID())
	assert.Equal(t, signed.Signature(), fromJSON.Signature())
	assert.JSONEq(t, `{"participants":[]}`, string(fromJSON.Args()))
}

func TestArgsCompacted(t *testing.T) {
	key, addr := datagen.RandKey()
	signed, err := Sign(New(datagen.RandAddress(), "stake", json.RawMessage("{ \"amount\" : \"10\" }"), 0), key)
	require.NoError(t, err)
	assert.Equal(t, `{"amount":"10"}`, string(signed.Args()))

	data, err := json.Marshal(signed)
	require.NoError(t, err)
	var decoded Call
	require.NoError(t, json.Unmarshal(data, &decoded))

	caller, err := NewSigner().Caller(&decoded)
	require.NoError(t, err)
	assert.Equal(t, addr, caller)
}
