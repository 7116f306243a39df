// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pledge/builtin"
	"github.com/vechain/pledge/builtin/registry"
	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/builtin/token"
	"github.com/vechain/pledge/builtin/vault"
	"github.com/vechain/pledge/lvldb"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/state"
	"github.com/vechain/pledge/test/datagen"
)

type testEnv struct {
	env   *builtin.Env
	reg   *registry.Registry
	owner pledge.Address
	usd   pledge.Address
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := builtin.NewEnv(state.New(db), nil)
	usd := env.Token(pledge.NamedAddress("usd"))
	require.NoError(t, usd.Initialize(&token.Metadata{Name: "USD", Symbol: "USD", Decimals: 6, Minter: datagen.RandAddress()}))

	owner := datagen.RandAddress()
	reg := env.Registry()
	require.NoError(t, reg.Initialize(owner, pledge.DefaultForfeitFeeBps, pledge.DefaultYieldFeeBps))
	return &testEnv{env: env, reg: reg, owner: owner, usd: usd.Address()}
}

func (e *testEnv) request() *registry.VaultRequest {
	return &registry.VaultRequest{
		Asset:           e.usd,
		StakeAmount:     big.NewInt(100),
		MaxParticipants: 5,
		Treasury:        datagen.RandAddress(),
		Authority:       datagen.RandAddress(),
		Yield:           vault.NoYield(),
	}
}

func TestInitialize(t *testing.T) {
	e := newTestEnv(t)

	owner, err := e.reg.Owner()
	require.NoError(t, err)
	assert.Equal(t, e.owner, owner)

	f, y, err := e.reg.DefaultFees()
	require.NoError(t, err)
	assert.Equal(t, pledge.DefaultForfeitFeeBps, f)
	assert.Equal(t, pledge.DefaultYieldFeeBps, y)

	kind, err := e.env.State().GetKind(e.reg.Address())
	require.NoError(t, err)
	assert.Equal(t, registry.Kind, kind)

	other := registry.New(datagen.RandAddress(), e.env.State(), e.env)
	assert.ErrorIs(t, other.Initialize(pledge.Address{}, 0, 0), reverts.ErrInvalidAddress)
	assert.ErrorIs(t, other.Initialize(e.owner, pledge.BasisPoints+1, 0), reverts.ErrInvalidFeeRate)
}

func TestWhitelist(t *testing.T) {
	e := newTestEnv(t)
	stranger := datagen.RandAddress()

	assert.ErrorIs(t, e.reg.WhitelistAsset(stranger, e.usd), reverts.ErrUnauthorized)
	assert.ErrorIs(t, e.reg.WhitelistAsset(e.owner, datagen.RandAddress()), reverts.ErrInvalidAddress)

	require.NoError(t, e.reg.WhitelistAsset(e.owner, e.usd))
	ok, err := e.reg.IsWhitelisted(e.usd)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, e.reg.DelistAsset(stranger, e.usd), reverts.ErrUnauthorized)
	require.NoError(t, e.reg.DelistAsset(e.owner, e.usd))
	ok, err = e.reg.IsWhitelisted(e.usd)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetDefaultFees(t *testing.T) {
	e := newTestEnv(t)

	assert.ErrorIs(t, e.reg.SetDefaultFees(datagen.RandAddress(), 1, 1), reverts.ErrUnauthorized)
	assert.ErrorIs(t, e.reg.SetDefaultFees(e.owner, 0, pledge.BasisPoints+1), reverts.ErrInvalidFeeRate)
	require.NoError(t, e.reg.SetDefaultFees(e.owner, 250, 0))

	f, y, err := e.reg.DefaultFees()
	require.NoError(t, err)
	assert.Equal(t, uint64(250), f)
	assert.Zero(t, y)
}

func TestCreateVault(t *testing.T) {
	e := newTestEnv(t)
	creator := datagen.RandAddress()

	_, err := e.reg.CreateVault(creator, e.request())
	assert.ErrorIs(t, err, reverts.ErrAssetNotWhitelisted)

	require.NoError(t, e.reg.WhitelistAsset(e.owner, e.usd))

	req := e.request()
	first, err := e.reg.CreateVault(creator, req)
	require.NoError(t, err)
	assert.Equal(t, pledge.CreateContractAddress(e.reg.Address(), creator, 0), first)

	yieldFee := uint64(0)
	req2 := e.request()
	req2.YieldFeeBps = &yieldFee
	second, err := e.reg.CreateVault(creator, req2)
	require.NoError(t, err)
	assert.Equal(t, pledge.CreateContractAddress(e.reg.Address(), creator, 1), second)
	assert.NotEqual(t, first, second)

	params, err := e.env.Vault(first).Params()
	require.NoError(t, err)
	assert.Equal(t, req.Authority, params.Authority)
	assert.Equal(t, pledge.DefaultForfeitFeeBps, params.ForfeitFeeBps)
	assert.Equal(t, pledge.DefaultYieldFeeBps, params.YieldFeeBps)

	params, err = e.env.Vault(second).Params()
	require.NoError(t, err)
	assert.Zero(t, params.YieldFeeBps)

	phase, err := e.env.Vault(first).Phase()
	require.NoError(t, err)
	assert.Equal(t, vault.PhaseStaking, phase)

	count, err := e.reg.VaultCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	at, err := e.reg.VaultAt(1)
	require.NoError(t, err)
	assert.Equal(t, second, at)

	all, err := e.reg.Vaults(0, 10)
	require.NoError(t, err)
	assert.Equal(t, []pledge.Address{first, second}, all)

	isVault, err := e.reg.IsVault(first)
	require.NoError(t, err)
	assert.True(t, isVault)
	isVault, err = e.reg.IsVault(e.usd)
	require.NoError(t, err)
	assert.False(t, isVault)

	// delisting stops new vaults, old ones stay usable
	require.NoError(t, e.reg.DelistAsset(e.owner, e.usd))
	_, err = e.reg.CreateVault(creator, e.request())
	assert.ErrorIs(t, err, reverts.ErrAssetNotWhitelisted)
	_, err = e.env.Vault(first).Summary()
	assert.NoError(t, err)
}

func TestCreateVaultInvalid(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, e.reg.WhitelistAsset(e.owner, e.usd))
	creator := datagen.RandAddress()

	pool := e.env.YieldPool(pledge.NamedAddress("foreign-pool"))
	require.NoError(t, pool.Initialize(datagen.RandAddress(), datagen.RandAddress()))

	tooHigh := pledge.BasisPoints + 1
	tests := []struct {
		name   string
		modify func(r *registry.VaultRequest)
		err    error
	}{
		{"no stake", func(r *registry.VaultRequest) { r.StakeAmount = nil }, reverts.ErrInvalidStakeAmount},
		{"no capacity", func(r *registry.VaultRequest) { r.MaxParticipants = 0 }, reverts.ErrInvalidMaxParticipants},
		{"zero treasury", func(r *registry.VaultRequest) { r.Treasury = pledge.Address{} }, reverts.ErrInvalidAddress},
		{"fee too high", func(r *registry.VaultRequest) { r.ForfeitFeeBps = &tooHigh }, reverts.ErrInvalidFeeRate},
		{"foreign yield source", func(r *registry.VaultRequest) { r.Yield = vault.WithYield(pool.Address()) }, reverts.ErrInvalidYieldSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := e.request()
			tt.modify(req)
			_, err := e.reg.CreateVault(creator, req)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	// failed attempts consume no nonce and index nothing
	count, err := e.reg.VaultCount()
	require.NoError(t, err)
	assert.Zero(t, count)
	addr, err := e.reg.CreateVault(creator, e.request())
	require.NoError(t, err)
	assert.Equal(t, pledge.CreateContractAddress(e.reg.Address(), creator, 0), addr)
}
