// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/pledge/api/utils"
	"github.com/vechain/pledge/call"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/runtime"
)

// QueryRequest runs a read-only method, optionally on behalf of a caller.
type QueryRequest struct {
	Caller pledge.Address  `json:"caller"`
	Target pledge.Address  `json:"target"`
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args"`
}

type QueryResult struct {
	Output any `json:"output"`
}

type Nonce struct {
	Address pledge.Address `json:"address"`
	Nonce   uint64         `json:"nonce"`
}

type Calls struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Calls {
	return &Calls{rt}
}

func (c *Calls) handleExecute(w http.ResponseWriter, req *http.Request) error {
	var signed call.Call
	if err := utils.ParseJSON(req.Body, &signed); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if signed.Method() == "" {
		return utils.BadRequest(errors.New("method required"))
	}
	receipt, err := c.rt.Execute(&signed)
	if err != nil {
		return utils.RevertError(err)
	}
	return utils.WriteJSON(w, receipt)
}

func (c *Calls) handleQuery(w http.ResponseWriter, req *http.Request) error {
	var q QueryRequest
	if err := utils.ParseJSON(req.Body, &q); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	out, err := c.rt.Query(q.Caller, q.Target, q.Method, q.Args)
	if err != nil {
		return utils.RevertError(err)
	}
	return utils.WriteJSON(w, &QueryResult{out})
}

func (c *Calls) handleGetNonce(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	nonce, err := c.rt.Nonce(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Nonce{addr, nonce})
}

func (c *Calls) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /calls").
		HandlerFunc(utils.WrapHandlerFunc(c.handleExecute))
	sub.Path("/query").
		Methods(http.MethodPost).
		Name("POST /calls/query").
		HandlerFunc(utils.WrapHandlerFunc(c.handleQuery))
	sub.Path("/nonces/{address}").
		Methods(http.MethodGet).
		Name("GET /calls/nonces/{address}").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetNonce))
}
