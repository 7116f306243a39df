// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/pledge/builtin"
	"github.com/vechain/pledge/builtin/token"
	"github.com/vechain/pledge/builtin/vault"
	"github.com/vechain/pledge/builtin/yieldpool"
	"github.com/vechain/pledge/lvldb"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/state"
	"github.com/vechain/pledge/test/datagen"
)

type fixture struct {
	t         *testing.T
	st        *state.State
	env       *builtin.Env
	hooks     *token.Hooks
	token     *token.Token
	pool      *yieldpool.Pool
	vault     *vault.Vault
	minter    pledge.Address
	manager   pledge.Address
	authority pledge.Address
	treasury  pledge.Address
}

type option func(f *fixture, p *vault.Params)

func withYield(f *fixture, p *vault.Params) {
	p.Yield = vault.WithYield(f.pool.Address())
}

func withCapacity(n uint64) option {
	return func(_ *fixture, p *vault.Params) { p.MaxParticipants = n }
}

func withStake(amount int64) option {
	return func(_ *fixture, p *vault.Params) { p.StakeAmount = big.NewInt(amount) }
}

func withFees(forfeit, yield uint64) option {
	return func(_ *fixture, p *vault.Params) { p.ForfeitFeeBps, p.YieldFeeBps = forfeit, yield }
}

func newEnv(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	hooks := token.NewHooks()
	f := &fixture{
		t:         t,
		st:        st,
		env:       builtin.NewEnv(st, hooks),
		hooks:     hooks,
		minter:    datagen.RandAddress(),
		manager:   datagen.RandAddress(),
		authority: datagen.RandAddress(),
		treasury:  datagen.RandAddress(),
	}
	f.token = f.env.Token(pledge.NamedAddress("usd"))
	require.NoError(t, f.token.Initialize(&token.Metadata{Name: "USD", Symbol: "USD", Decimals: 6, Minter: f.minter}))
	f.pool = f.env.YieldPool(pledge.NamedAddress("usd-pool"))
	require.NoError(t, f.pool.Initialize(f.token.Address(), f.manager))
	return f
}

// newFixture deploys a vault with stake 100, capacity 10 and default fees.
func newFixture(t *testing.T, opts ...option) *fixture {
	f := newEnv(t)
	params := f.params()
	for _, opt := range opts {
		opt(f, params)
	}
	f.vault = f.env.Vault(datagen.RandAddress())
	require.NoError(t, f.vault.Initialize(params))
	return f
}

func (f *fixture) params() *vault.Params {
	return &vault.Params{
		Asset:           f.token.Address(),
		StakeAmount:     big.NewInt(100),
		MaxParticipants: 10,
		Treasury:        f.treasury,
		Authority:       f.authority,
		Yield:           vault.NoYield(),
		ForfeitFeeBps:   pledge.DefaultForfeitFeeBps,
		YieldFeeBps:     pledge.DefaultYieldFeeBps,
	}
}

func (f *fixture) stakeAmount() *big.Int {
	p, err := f.vault.Params()
	require.NoError(f.t, err)
	return p.StakeAmount
}

// fund mints the stake to addr and approves the vault.
func (f *fixture) fund(addr pledge.Address) {
	stake := f.stakeAmount()
	require.NoError(f.t, f.token.Mint(f.minter, addr, stake))
	require.NoError(f.t, f.token.Approve(addr, f.vault.Address(), stake))
}

// stakers funds and stakes n fresh participants.
func (f *fixture) stakers(n int) []pledge.Address {
	addrs := datagen.RandAddresses(n)
	for _, a := range addrs {
		f.fund(a)
		require.NoError(f.t, f.vault.Stake(a))
	}
	return addrs
}

func (f *fixture) verify(addrs ...pledge.Address) {
	for _, a := range addrs {
		require.NoError(f.t, f.vault.Verify(f.authority, a))
	}
}

// n unwraps an amount result.
func (f *fixture) n(v *big.Int, err error) int64 {
	require.NoError(f.t, err)
	require.True(f.t, v.IsInt64())
	return v.Int64()
}

func (f *fixture) balance(addr pledge.Address) int64 {
	return f.n(f.token.BalanceOf(addr))
}

func (f *fixture) claimable(addr pledge.Address) int64 {
	return f.n(f.vault.Claimable(addr))
}

func (f *fixture) status(addr pledge.Address) vault.Status {
	s, err := f.vault.ParticipantStatus(addr)
	require.NoError(f.t, err)
	return s
}

func (f *fixture) phase() vault.Phase {
	p, err := f.vault.Phase()
	require.NoError(f.t, err)
	return p
}

func (f *fixture) totals() *vault.Totals {
	tot, err := f.vault.Totals()
	require.NoError(f.t, err)
	return tot
}

func (f *fixture) eventNames() []string {
	var names []string
	for _, ev := range f.st.Events() {
		if ev.Address == f.vault.Address() {
			names = append(names, ev.Name)
		}
	}
	return names
}
