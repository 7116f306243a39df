// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/pledge/pledge"
)

// DevAccount account for development.
type DevAccount struct {
	Address    pledge.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns the pre-funded accounts of the dev genesis.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{pledge.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// DevnetConfig returns the genesis used when no config file is given.
// The first dev account owns the registry, mints "usd" and manages the "usd-yield" pool.
// Every dev account starts with one million usd.
func DevnetConfig() *Config {
	accs := DevAccounts()
	admin := Address(accs[0].Address)

	million := new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil)
	allocs := make([]Allocation, 0, len(accs))
	for _, acc := range accs {
		amount := Amount(*new(big.Int).Set(million))
		allocs = append(allocs, Allocation{Address: Address(acc.Address), Amount: &amount})
	}

	return &Config{
		Owner: admin,
		Tokens: []Token{{
			Name:        "usd",
			Symbol:      "USD",
			Decimals:    6,
			Minter:      admin,
			Allocations: allocs,
		}},
		Pools:     []Pool{{Name: "usd-yield", Asset: "usd", Manager: admin}},
		Whitelist: []string{"usd"},
	}
}

// NewDevnet creates the dev genesis.
func NewDevnet() *Genesis {
	g, err := New(DevnetConfig())
	if err != nil {
		panic(err)
	}
	return g
}
