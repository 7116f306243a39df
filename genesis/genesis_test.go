// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pledge/builtin"
	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/genesis"
	"github.com/vechain/pledge/lvldb"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/state"
)

const sampleConfig = `
owner: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed
fees:
  forfeitFeeBps: 500
  yieldFeeBps: 2000
tokens:
  - name: eur
    symbol: EUR
    decimals: 2
    minter: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed
    allocations:
      - address: 0xd3ae78222beadb038203be21ed5ce7c9b1bff602
        amount: 1000
      - address: 0x733b7269443c70de16bbf9b0615307884bcc5636
        amount: 0x64
  - name: gold
    symbol: XAU
    decimals: 0
    minter: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed
pools:
  - name: eur-yield
    asset: eur
    manager: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed
whitelist:
  - eur
`

func newState(t *testing.T) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return state.New(db)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := genesis.Load(path)
	require.NoError(t, err)
	assert.Equal(t, pledge.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"), pledge.Address(cfg.Owner))
	require.Len(t, cfg.Tokens, 2)
	assert.Equal(t, int64(100), (*big.Int)(cfg.Tokens[0].Allocations[1].Amount).Int64())
	assert.Equal(t, uint64(2000), cfg.Fees.YieldFeeBps)

	_, err = genesis.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad address", "owner: 0x1234"},
		{"bad amount", "owner: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed\ntokens:\n  - name: a\n    allocations:\n      - address: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed\n        amount: lots"},
		{"not yaml", "owner: [1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := genesis.Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *genesis.Config {
		cfg, err := genesis.Parse([]byte(sampleConfig))
		require.NoError(t, err)
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *genesis.Config)
	}{
		{"no owner", func(c *genesis.Config) { c.Owner = genesis.Address{} }},
		{"duplicated token", func(c *genesis.Config) { c.Tokens[1].Name = "eur" }},
		{"unnamed token", func(c *genesis.Config) { c.Tokens[1].Name = "" }},
		{"reserved name", func(c *genesis.Config) { c.Tokens[1].Name = "registry" }},
		{"pool name clash", func(c *genesis.Config) { c.Pools[0].Name = "gold" }},
		{"pool over unknown token", func(c *genesis.Config) { c.Pools[0].Asset = "yen" }},
		{"pool over pool", func(c *genesis.Config) {
			c.Pools = append(c.Pools, genesis.Pool{Name: "meta", Asset: "eur-yield", Manager: c.Owner})
		}},
		{"whitelist unknown", func(c *genesis.Config) { c.Whitelist = []string{"eur-yield"} }},
		{"allocation without amount", func(c *genesis.Config) { c.Tokens[0].Allocations[0].Amount = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
			_, err := genesis.New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	cfg, err := genesis.Parse([]byte(sampleConfig))
	require.NoError(t, err)
	g, err := genesis.New(cfg)
	require.NoError(t, err)
	assert.False(t, g.ID().IsZero())

	st := newState(t)
	events, applied, err := g.Apply(st)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NotEmpty(t, events)
	assert.Zero(t, st.Changes())

	env := builtin.NewEnv(st, nil)
	eur := genesis.ContractAddress("eur")

	owner, err := env.Registry().Owner()
	require.NoError(t, err)
	assert.Equal(t, pledge.Address(cfg.Owner), owner)

	forfeit, yield, err := env.Registry().DefaultFees()
	require.NoError(t, err)
	assert.Equal(t, []uint64{500, 2000}, []uint64{forfeit, yield})

	bal, err := env.Token(eur).BalanceOf(pledge.MustParseAddress("0xd3ae78222beadb038203be21ed5ce7c9b1bff602"))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bal.Int64())
	supply, err := env.Token(eur).TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, int64(1100), supply.Int64())

	asset, err := env.YieldPool(genesis.ContractAddress("eur-yield")).Asset()
	require.NoError(t, err)
	assert.Equal(t, eur, asset)

	for name, want := range map[string]bool{"eur": true, "gold": false} {
		ok, err := env.Registry().IsWhitelisted(genesis.ContractAddress(name))
		require.NoError(t, err)
		assert.Equal(t, want, ok, name)
	}

	// applying again is a no-op
	events, applied, err = g.Apply(st)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Nil(t, events)
	assert.Equal(t, int64(1100), mustSupply(t, env, eur))

	// a different genesis over the same state is refused
	other := genesis.NewDevnet()
	_, _, err = other.Apply(st)
	assert.Error(t, err)
}

func TestApplyFailureLeavesStateEmpty(t *testing.T) {
	cfg, err := genesis.Parse([]byte(sampleConfig))
	require.NoError(t, err)
	cfg.Fees = &genesis.Fees{ForfeitFeeBps: pledge.BasisPoints + 1}
	g, err := genesis.New(cfg)
	require.NoError(t, err)

	st := newState(t)
	_, applied, err := g.Apply(st)
	assert.ErrorIs(t, err, reverts.ErrInvalidFeeRate)
	assert.False(t, applied)
	assert.Zero(t, st.Changes())

	kind, err := st.GetKind(pledge.RegistryAddress)
	require.NoError(t, err)
	assert.Empty(t, kind)
}

func TestDevnet(t *testing.T) {
	accs := genesis.DevAccounts()
	require.Len(t, accs, 5)

	g := genesis.NewDevnet()
	assert.Equal(t, g.ID(), genesis.NewDevnet().ID())

	st := newState(t)
	_, applied, err := g.Apply(st)
	require.NoError(t, err)
	require.True(t, applied)

	env := builtin.NewEnv(st, nil)
	usd := genesis.ContractAddress("usd")
	for _, acc := range accs {
		bal, err := env.Token(usd).BalanceOf(acc.Address)
		require.NoError(t, err)
		assert.Equal(t, "1000000000000", bal.String())
	}
	ok, err := env.Registry().IsWhitelisted(usd)
	require.NoError(t, err)
	assert.True(t, ok)
}

func mustSupply(t *testing.T, env *builtin.Env, token pledge.Address) int64 {
	supply, err := env.Token(token).TotalSupply()
	require.NoError(t, err)
	return supply.Int64()
}
