// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pledge

// BasisPoints is the denominator of every fee rate.
const BasisPoints uint64 = 10_000

// Default protocol fee rates applied by the registry when a vault is created
// without explicit rates.
const (
	DefaultForfeitFeeBps uint64 = 1_000 // 10% of forfeited stakes
	DefaultYieldFeeBps   uint64 = 1_000 // 10% of earned yield
)

// Well-known contract addresses.
var (
	RegistryAddress = NamedAddress("registry")
	RuntimeAddress  = NamedAddress("runtime")
)
