// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vaults

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru"

	"github.com/vechain/pledge/api/utils"
	"github.com/vechain/pledge/builtin"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/runtime"
)

const summaryCacheSize = 512

// summaryKey ties a cached summary to the call it was read after,
// so any committed call makes older entries unreachable.
type summaryKey struct {
	vault pledge.Address
	head  uint32
}

type Vaults struct {
	rt        *runtime.Runtime
	summaries *lru.Cache
}

func New(rt *runtime.Runtime) *Vaults {
	cache, _ := lru.New(summaryCacheSize)
	return &Vaults{rt: rt, summaries: cache}
}

func (v *Vaults) query(target pledge.Address, method string, args any) (any, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	out, err := v.rt.Query(pledge.Address{}, target, method, raw)
	if err != nil {
		return nil, utils.RevertError(err)
	}
	return out, nil
}

func pageQuery(req *http.Request) (utils.M, error) {
	offset, err := utils.Uint64Query(req, "offset", 0)
	if err != nil {
		return nil, err
	}
	limit, err := utils.Uint64Query(req, "limit", builtin.DefaultPageLimit)
	if err != nil {
		return nil, err
	}
	return utils.M{"offset": offset, "limit": limit}, nil
}

func addresses(out any) []pledge.Address {
	if list, _ := out.([]pledge.Address); list != nil {
		return list
	}
	return []pledge.Address{}
}

func (v *Vaults) handleList(w http.ResponseWriter, req *http.Request) error {
	page, err := pageQuery(req)
	if err != nil {
		return err
	}
	out, err := v.query(pledge.RegistryAddress, "vaults", page)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, addresses(out))
}

func (v *Vaults) summary(addr pledge.Address) (*builtin.VaultSummary, error) {
	key := summaryKey{addr, v.rt.Head()}
	if cached, ok := v.summaries.Get(key); ok {
		metricSummaryCache().AddWithLabel(1, map[string]string{"result": "hit"})
		return cached.(*builtin.VaultSummary), nil
	}
	metricSummaryCache().AddWithLabel(1, map[string]string{"result": "miss"})

	out, err := v.query(addr, "summary", nil)
	if err != nil {
		return nil, err
	}
	s := out.(*builtin.VaultSummary)
	// a call committed while querying makes this entry stale; it is keyed to the old head then
	v.summaries.Add(key, s)
	return s, nil
}

func (v *Vaults) handleGetSummary(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	s, err := v.summary(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, s)
}

func (v *Vaults) handleGetParticipant(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	participant, err := utils.AddressVar(req, "participant")
	if err != nil {
		return err
	}
	out, err := v.query(addr, "participant", utils.M{"participant": participant})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (v *Vaults) handleGetYield(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	out, err := v.query(addr, "yieldInfo", nil)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (v *Vaults) handleGetRoster(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	page, err := pageQuery(req)
	if err != nil {
		return err
	}
	out, err := v.query(addr, "roster", page)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, addresses(out))
}

func (v *Vaults) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /vaults").
		HandlerFunc(utils.WrapHandlerFunc(v.handleList))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /vaults/{address}").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetSummary))
	sub.Path("/{address}/participants/{participant}").
		Methods(http.MethodGet).
		Name("GET /vaults/{address}/participants/{participant}").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetParticipant))
	sub.Path("/{address}/yield").
		Methods(http.MethodGet).
		Name("GET /vaults/{address}/yield").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetYield))
	sub.Path("/{address}/roster").
		Methods(http.MethodGet).
		Name("GET /vaults/{address}/roster").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetRoster))
}
