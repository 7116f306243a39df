// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pledge/log"
	"github.com/vechain/pledge/lvldb"
	"github.com/vechain/pledge/runtime"
	"github.com/vechain/pledge/state"
)

func newAdmin(t *testing.T) *Admin {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rt := runtime.New(state.New(db), nil)
	t.Cleanup(rt.Close)

	log.InitWithWriter(io.Discard, log.Options{Verbosity: log.LegacyLevelInfo})
	return New(rt, &atomic.Bool{})
}

func serve(t *testing.T, a *Admin, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func TestPostLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		httpCode int
	}{
		{"debug", http.StatusOK},
		{"info", http.StatusOK},
		{"warn", http.StatusOK},
		{"error", http.StatusOK},
		{"crit", http.StatusOK},
		{"trace", http.StatusOK},
		{"invalid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			a := newAdmin(t)
			res := serve(t, a, http.MethodPost, "/admin/loglevel", map[string]string{"level": tt.level})

			assert.Equal(t, tt.httpCode, res.Code)
			if tt.httpCode == http.StatusOK {
				assert.Equal(t, tt.level, log.LevelName(log.Level()))

				var body logLevelResponse
				require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
				assert.Equal(t, tt.level, body.CurrentLevel)
			} else {
				assert.Equal(t, "info", log.LevelName(log.Level()))
			}
		})
	}
}

func TestGetLogLevel(t *testing.T) {
	a := newAdmin(t)
	res := serve(t, a, http.MethodGet, "/admin/loglevel", nil)
	assert.Equal(t, http.StatusOK, res.Code)

	var body logLevelResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "info", body.CurrentLevel)
}

func TestPostRequestLogger(t *testing.T) {
	testCases := []struct {
		enabled  any
		httpCode int
	}{
		{true, http.StatusOK},
		{false, http.StatusOK},
		{"invalid", http.StatusBadRequest},
		{nil, http.StatusBadRequest},
	}

	for _, tt := range testCases {
		t.Run(fmt.Sprintf("enabled=%v", tt.enabled), func(t *testing.T) {
			a := newAdmin(t)
			res := serve(t, a, http.MethodPost, "/admin/apilogs", map[string]any{"enabled": tt.enabled})

			assert.Equal(t, tt.httpCode, res.Code)
			if tt.httpCode == http.StatusOK {
				assert.Equal(t, tt.enabled, a.logRequests.Load())

				res = serve(t, a, http.MethodGet, "/admin/apilogs", nil)
				var body apiLogRequests
				require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
				require.NotNil(t, body.Enabled)
				assert.Equal(t, tt.enabled, *body.Enabled)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	a := newAdmin(t)
	res := serve(t, a, http.MethodGet, "/admin/health", nil)
	assert.Equal(t, http.StatusOK, res.Code)

	var status Status
	require.NoError(t, json.NewDecoder(res.Body).Decode(&status))
	assert.True(t, status.Healthy)
	assert.Equal(t, uint32(0), status.Head)
	assert.Empty(t, status.Error)

	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, a, http.MethodPost, "/admin/health", nil).Code)
}
