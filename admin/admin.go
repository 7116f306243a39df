// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin serves the operator endpoints of a node, separately from the public API.
package admin

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/pledge/api/utils"
	"github.com/vechain/pledge/log"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/runtime"
)

var logger = log.WithContext("pkg", "admin")

type Admin struct {
	rt          *runtime.Runtime
	logRequests *atomic.Bool
}

func New(rt *runtime.Runtime, logRequests *atomic.Bool) *Admin {
	return &Admin{
		rt:          rt,
		logRequests: logRequests,
	}
}

// Handler returns the admin router, serving under /admin.
func (a *Admin) Handler() http.Handler {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	// GET /admin/loglevel
	sub.Path("/loglevel").
		Methods(http.MethodGet).
		Name("get-log-level").
		HandlerFunc(utils.WrapHandlerFunc(a.getLogLevelHandler))
	// POST /admin/loglevel
	sub.Path("/loglevel").
		Methods(http.MethodPost).
		Name("post-log-level").
		HandlerFunc(utils.WrapHandlerFunc(a.postLogLevelHandler))

	// GET /admin/apilogs
	sub.Path("/apilogs").
		Methods(http.MethodGet).
		Name("get-api-logs-enabled").
		HandlerFunc(utils.WrapHandlerFunc(a.getRequestLoggerEnabled))
	// POST /admin/apilogs
	sub.Path("/apilogs").
		Methods(http.MethodPost).
		Name("post-api-logs-enabled").
		HandlerFunc(utils.WrapHandlerFunc(a.postRequestLogger))

	// GET /admin/health
	sub.Path("/health").
		Methods(http.MethodGet).
		Name("get-health").
		HandlerFunc(utils.WrapHandlerFunc(a.getHealth))

	return handlers.CompressHandler(router)
}

type logLevelRequest struct {
	Level string `json:"level"`
}

type logLevelResponse struct {
	CurrentLevel string `json:"currentLevel"`
}

func (a *Admin) getLogLevelHandler(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, logLevelResponse{
		CurrentLevel: log.LevelName(log.Level()),
	})
}

func (a *Admin) postLogLevelHandler(w http.ResponseWriter, r *http.Request) error {
	var req logLevelRequest

	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "invalid request body"))
	}

	var ok bool
	switch req.Level {
	case "debug":
		ok = log.SetLevel(log.LevelDebug)
	case "info":
		ok = log.SetLevel(log.LevelInfo)
	case "warn":
		ok = log.SetLevel(log.LevelWarn)
	case "error":
		ok = log.SetLevel(log.LevelError)
	case "trace":
		ok = log.SetLevel(log.LevelTrace)
	case "crit":
		ok = log.SetLevel(log.LevelCrit)
	default:
		return utils.BadRequest(fmt.Errorf("invalid verbosity level: %s", req.Level))
	}
	if !ok {
		return errors.New("logger not initialized")
	}

	logger.Warn("admin changed the log level", "level", req.Level)

	return utils.WriteJSON(w, logLevelResponse{
		CurrentLevel: log.LevelName(log.Level()),
	})
}

type apiLogRequests struct {
	Enabled *bool `json:"enabled"`
}

func (a *Admin) getRequestLoggerEnabled(w http.ResponseWriter, _ *http.Request) error {
	enabled := a.logRequests.Load()
	return utils.WriteJSON(w, apiLogRequests{Enabled: &enabled})
}

func (a *Admin) postRequestLogger(w http.ResponseWriter, r *http.Request) error {
	var req apiLogRequests

	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "invalid request body"))
	}

	if req.Enabled == nil {
		return utils.BadRequest(errors.New("missing 'enabled' field"))
	}

	logger.Warn("admin changed the request logger", "enabled", *req.Enabled)

	a.logRequests.Store(*req.Enabled)

	return utils.WriteJSON(w, req)
}

// Status reports whether the node can serve reads, and how far it has executed.
type Status struct {
	Healthy bool   `json:"healthy"`
	Head    uint32 `json:"head"`
	Error   string `json:"error,omitempty"`
}

func (a *Admin) getHealth(w http.ResponseWriter, _ *http.Request) error {
	status := Status{Healthy: true, Head: a.rt.Head()}
	// a nonce read goes through the state to the main database
	if _, err := a.rt.Nonce(pledge.Address{}); err != nil {
		status.Healthy = false
		status.Error = err.Error()
		w.Header().Set("Content-Type", utils.JSONContentType)
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return utils.WriteJSON(w, status)
}
