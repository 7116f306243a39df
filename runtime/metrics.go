// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"time"

	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/metrics"
)

var (
	metricCalls        = metrics.LazyLoadCounterVec("runtime_calls_count", []string{"method", "mode", "result"})
	metricCallDuration = metrics.LazyLoadHistogramVec("runtime_call_duration_ms", []string{"mode"}, metrics.BucketHTTPReqs)
)

func observeCall(method, mode string, err error, start time.Time) {
	result := "ok"
	if err != nil {
		if result = reverts.KindOf(err); result == "" {
			result = "error"
		}
	}
	metricCalls().AddWithLabel(1, map[string]string{"method": method, "mode": mode, "result": result})
	metricCallDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"mode": mode})
}
