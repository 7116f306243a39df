// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api serves the REST and websocket interface of a node.
package api

import (
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/pledge/api/calls"
	"github.com/vechain/pledge/api/doc"
	"github.com/vechain/pledge/api/events"
	"github.com/vechain/pledge/api/middleware"
	"github.com/vechain/pledge/api/subscriptions"
	"github.com/vechain/pledge/api/tokens"
	"github.com/vechain/pledge/api/utils"
	"github.com/vechain/pledge/api/vaults"
	"github.com/vechain/pledge/log"
	"github.com/vechain/pledge/logdb"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/runtime"
)

var (
	logger             = log.WithContext("pkg", "api")
	errGenesisMismatch = errors.New("genesis id mismatch")
)

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	EnableMetrics        bool
	LogsLimit            uint64
	GenesisID            pledge.Bytes32
}

// New return api router
func New(rt *runtime.Runtime, logDB *logdb.LogDB, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/pledge.yaml", http.StatusTemporaryRedirect)
		})

	vaults.New(rt).
		Mount(router, "/vaults")
	tokens.New(rt).
		Mount(router, "/tokens")
	calls.New(rt).
		Mount(router, "/calls")
	if logDB != nil {
		events.New(logDB, opts.LogsLimit).
			Mount(router, "/logs/event")
	}
	subs := subscriptions.New(rt, origins)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-genesis-id", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{"x-genesis-id", "x-pledge-ver", middleware.RequestIDHeader}),
	)(handler)

	genesisID := opts.GenesisID.String()
	version := doc.Version()
	inner := handler
	handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-genesis-id", genesisID)
		w.Header().Set("x-pledge-ver", version)
		if expected := r.Header.Get("x-genesis-id"); expected != "" && expected != genesisID {
			utils.WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
				return utils.Forbidden(errGenesisMismatch)
			})(w, r)
			return
		}
		inner.ServeHTTP(w, r)
	})

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	handler = middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
