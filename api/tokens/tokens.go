// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/vechain/pledge/api/utils"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/runtime"
)

// Balance is the balance of one holder.
type Balance struct {
	Token   pledge.Address        `json:"token"`
	Holder  pledge.Address        `json:"holder"`
	Balance *math.HexOrDecimal256 `json:"balance"`
}

type Tokens struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Tokens {
	return &Tokens{rt}
}

func (t *Tokens) handleGetMetadata(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	out, err := t.rt.Query(pledge.Address{}, addr, "metadata", nil)
	if err != nil {
		return utils.RevertError(err)
	}
	return utils.WriteJSON(w, out)
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	holder, err := utils.AddressVar(req, "holder")
	if err != nil {
		return err
	}
	args, err := json.Marshal(utils.M{"holder": holder})
	if err != nil {
		return err
	}
	out, err := t.rt.Query(pledge.Address{}, addr, "balanceOf", args)
	if err != nil {
		return utils.RevertError(err)
	}
	return utils.WriteJSON(w, &Balance{
		Token:   addr,
		Holder:  holder,
		Balance: out.(*math.HexOrDecimal256),
	})
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /tokens/{address}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetMetadata))
	sub.Path("/{address}/balances/{holder}").
		Methods(http.MethodGet).
		Name("GET /tokens/{address}/balances/{holder}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))
}
