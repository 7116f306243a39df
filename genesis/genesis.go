// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis deploys the initial tokens, yield pools and registry.
package genesis

import (
	"math/big"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/pledge/builtin"
	"github.com/vechain/pledge/builtin/token"
	"github.com/vechain/pledge/log"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/state"
)

var logger = log.WithContext("pkg", "genesis")

// slotGenesisID records the id of the applied genesis under the runtime address.
var slotGenesisID = pledge.Blake2b([]byte("genesis-id"))

// Genesis is a validated genesis config.
type Genesis struct {
	config *Config
	id     pledge.Bytes32
}

// New validates cfg and derives the genesis id from its canonical encoding.
func New(cfg *Config) (*Genesis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid genesis")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "encode genesis")
	}
	return &Genesis{config: cfg, id: pledge.Blake2b(data)}, nil
}

// ID returns the genesis id.
func (g *Genesis) ID() pledge.Bytes32 {
	return g.id
}

// Config returns the underlying config.
func (g *Genesis) Config() *Config {
	return g.config
}

// ContractAddress returns the address of the contract declared under name.
func ContractAddress(name string) pledge.Address {
	return pledge.NamedAddress(name)
}

// Apply deploys the genesis contracts into st and commits.
// It returns the emitted events, or applied=false when st already holds a genesis.
func (g *Genesis) Apply(st *state.State) (events []*pledge.Event, applied bool, err error) {
	existing, err := st.GetStorage(pledge.RuntimeAddress, slotGenesisID)
	if err != nil {
		return nil, false, err
	}
	if !existing.IsZero() {
		if existing != g.id {
			return nil, false, errors.Errorf("genesis mismatch: state has %v, config is %v", existing, g.id)
		}
		return nil, false, nil
	}
	kind, err := st.GetKind(pledge.RegistryAddress)
	if err != nil {
		return nil, false, err
	}
	if kind != "" {
		return nil, false, errors.New("state has a registry but no genesis id")
	}

	if err := g.deploy(builtin.NewEnv(st, nil)); err != nil {
		st.Discard()
		return nil, false, errors.WithMessage(err, "deploy genesis")
	}
	st.SetStorage(pledge.RuntimeAddress, slotGenesisID, g.id)

	if events, err = st.Commit(); err != nil {
		return nil, false, err
	}
	logger.Info("genesis applied", "id", g.id, "tokens", len(g.config.Tokens), "pools", len(g.config.Pools))
	return events, true, nil
}

func (g *Genesis) deploy(env *builtin.Env) error {
	cfg := g.config
	owner := pledge.Address(cfg.Owner)
	fees := cfg.fees()

	reg := env.Registry()
	if err := reg.Initialize(owner, fees.ForfeitFeeBps, fees.YieldFeeBps); err != nil {
		return errors.WithMessage(err, "registry")
	}

	for _, t := range cfg.Tokens {
		tok := env.Token(ContractAddress(t.Name))
		if err := tok.Initialize(&token.Metadata{
			Name:     t.Name,
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
			Minter:   pledge.Address(t.Minter),
		}); err != nil {
			return errors.WithMessagef(err, "token %s", t.Name)
		}
		for _, a := range t.Allocations {
			if err := tok.Allocate(pledge.Address(a.Address), new(big.Int).Set((*big.Int)(a.Amount))); err != nil {
				return errors.WithMessagef(err, "token %s: allocate to %v", t.Name, pledge.Address(a.Address))
			}
		}
	}

	for _, p := range cfg.Pools {
		if err := env.YieldPool(ContractAddress(p.Name)).Initialize(ContractAddress(p.Asset), pledge.Address(p.Manager)); err != nil {
			return errors.WithMessagef(err, "pool %s", p.Name)
		}
	}

	for _, name := range cfg.Whitelist {
		if err := reg.WhitelistAsset(owner, ContractAddress(name)); err != nil {
			return errors.WithMessagef(err, "whitelist %s", name)
		}
	}
	return nil
}
