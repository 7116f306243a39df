// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages contract storage.
// It follows the flow as below:
//
//	          o
//	          |
//	[ revertable state ]
//	          |
//	  [ stacked map ] -> [ journal ] -> [ commit batch ] -> [ kv store ]
//	          |
//	   [ lru cache ]
//	          |
//	    [ kv store ]
//
// Every contract (token, yield pool, vault, registry) keeps its state as raw rlp
// values under 32-byte slots of its own address. Events are journaled alongside
// storage writes, so reverting to a checkpoint also drops the events emitted since.
package state
