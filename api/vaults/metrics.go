// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vaults

import "github.com/vechain/pledge/metrics"

var metricSummaryCache = metrics.LazyLoadCounterVec("api_vault_summary_cache_count", []string{"result"})
