// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package call

import (
	"github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru"

	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/pledge"
)

const signerCacheSize = 1024

// Signer recovers callers from signed calls, caching by call id.
type Signer struct {
	cache *lru.Cache
}

// NewSigner creates a Signer.
func NewSigner() *Signer {
	cache, _ := lru.New(signerCacheSize)
	return &Signer{cache}
}

// Caller returns the address that signed c.
func (s *Signer) Caller(c *Call) (pledge.Address, error) {
	id := c.ID()
	if addr, ok := s.cache.Get(id); ok {
		return addr.(pledge.Address), nil
	}

	sig := c.Signature()
	if len(sig) != crypto.SignatureLength {
		return pledge.Address{}, reverts.ErrInvalidSignature.Withf("length %d", len(sig))
	}
	h := c.SigningHash()
	pub, err := crypto.SigToPub(h[:], sig)
	if err != nil {
		return pledge.Address{}, reverts.ErrInvalidSignature.Withf("%v", err)
	}
	addr := pledge.Address(crypto.PubkeyToAddress(*pub))
	s.cache.Add(id, addr)
	return addr, nil
}
