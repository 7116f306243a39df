// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/pledge/pledge"
)

// Config is the user supplied genesis.
type Config struct {
	Owner     Address  `yaml:"owner"`
	Fees      *Fees    `yaml:"fees,omitempty"`
	Tokens    []Token  `yaml:"tokens"`
	Pools     []Pool   `yaml:"pools,omitempty"`
	Whitelist []string `yaml:"whitelist,omitempty"`
}

// Fees are the registry default fee rates in basis points.
type Fees struct {
	ForfeitFeeBps uint64 `yaml:"forfeitFeeBps"`
	YieldFeeBps   uint64 `yaml:"yieldFeeBps"`
}

// Token declares a token deployed at the address derived from its name.
type Token struct {
	Name        string       `yaml:"name"`
	Symbol      string       `yaml:"symbol"`
	Decimals    uint8        `yaml:"decimals"`
	Minter      Address      `yaml:"minter"`
	Allocations []Allocation `yaml:"allocations,omitempty"`
}

// Allocation is an initial token balance.
type Allocation struct {
	Address Address `yaml:"address"`
	Amount  *Amount `yaml:"amount"`
}

// Pool declares a yield pool over one of the declared tokens.
type Pool struct {
	Name    string  `yaml:"name"`
	Asset   string  `yaml:"asset"`
	Manager Address `yaml:"manager"`
}

// Address is a hex address in yaml.
type Address pledge.Address

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Address) UnmarshalYAML(value *yaml.Node) error {
	addr, err := pledge.ParseAddress(value.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d: address %q", value.Line, value.Value)
	}
	*a = Address(addr)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a Address) MarshalYAML() (any, error) {
	return pledge.Address(a).String(), nil
}

// Amount is a decimal or 0x-prefixed hex integer in yaml.
type Amount math.HexOrDecimal256

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Amount) UnmarshalYAML(value *yaml.Node) error {
	v, ok := math.ParseBig256(value.Value)
	if !ok {
		return fmt.Errorf("line %d: invalid amount %q", value.Line, value.Value)
	}
	*a = Amount(*v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a *Amount) MarshalYAML() (any, error) {
	return (*big.Int)(a).String(), nil
}

// Load reads the genesis config from a yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	return Parse(data)
}

// Parse decodes a yaml genesis config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &cfg, nil
}

// fees returns the configured default fees, falling back to the protocol defaults.
func (c *Config) fees() Fees {
	if c.Fees == nil {
		return Fees{pledge.DefaultForfeitFeeBps, pledge.DefaultYieldFeeBps}
	}
	return *c.Fees
}

// Validate checks the config for structural errors. Contract level rules are checked on apply.
func (c *Config) Validate() error {
	if pledge.Address(c.Owner).IsZero() {
		return errors.New("owner required")
	}
	names := map[string]string{"registry": "reserved", "runtime": "reserved"}
	claim := func(name, what string) error {
		if name == "" {
			return fmt.Errorf("%s name required", what)
		}
		if prev, ok := names[name]; ok {
			return fmt.Errorf("%s name %q already used by %s", what, name, prev)
		}
		names[name] = what
		return nil
	}
	for _, t := range c.Tokens {
		if err := claim(t.Name, "token"); err != nil {
			return err
		}
		for _, a := range t.Allocations {
			if a.Amount == nil {
				return fmt.Errorf("token %q: allocation to %v has no amount", t.Name, pledge.Address(a.Address))
			}
		}
	}
	for _, p := range c.Pools {
		if err := claim(p.Name, "pool"); err != nil {
			return err
		}
		if names[p.Asset] != "token" {
			return fmt.Errorf("pool %q: unknown token %q", p.Name, p.Asset)
		}
	}
	for _, name := range c.Whitelist {
		if names[name] != "token" {
			return fmt.Errorf("whitelist: unknown token %q", name)
		}
	}
	return nil
}
