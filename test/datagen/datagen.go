// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datagen produces random fixtures for tests.
package datagen

import (
	"crypto/ecdsa"
	"crypto/rand"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/pledge/pledge"
)

func RandomHash() (b32 pledge.Bytes32) {
	rand.Read(b32[:])
	return
}

func RandAddress() (addr pledge.Address) {
	rand.Read(addr[:])
	return
}

func RandAddresses(n int) []pledge.Address {
	addrs := make([]pledge.Address, n)
	for i := range addrs {
		addrs[i] = RandAddress()
	}
	return addrs
}

// RandKey generates a signing key together with the address it signs for.
func RandKey() (*ecdsa.PrivateKey, pledge.Address) {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return key, pledge.Address(crypto.PubkeyToAddress(key.PublicKey))
}
