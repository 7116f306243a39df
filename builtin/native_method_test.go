// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin_test

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pledge/builtin"
	"github.com/vechain/pledge/builtin/registry"
	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/builtin/token"
	"github.com/vechain/pledge/builtin/vault"
	"github.com/vechain/pledge/builtin/yieldpool"
	"github.com/vechain/pledge/lvldb"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/state"
	"github.com/vechain/pledge/test/datagen"
)

func M(a ...any) []any {
	return a
}

type caller struct {
	t   *testing.T
	env *builtin.Env
}

func newCaller(t *testing.T) *caller {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &caller{t: t, env: builtin.NewEnv(state.New(db), nil)}
}

// call runs kind.method on target with JSON args.
func (c *caller) call(kind string, target, from pledge.Address, method string, args string) (any, error) {
	m, ok := builtin.LookupMethod(kind, method)
	require.True(c.t, ok, "%s.%s", kind, method)
	return m.Run(c.env, &builtin.Invocation{Caller: from, Target: target, Args: json.RawMessage(args)})
}

func (c *caller) mustCall(kind string, target, from pledge.Address, method string, args string) any {
	out, err := c.call(kind, target, from, method, args)
	require.NoError(c.t, err, "%s.%s", kind, method)
	return out
}

func TestLookupMethod(t *testing.T) {
	for _, kind := range []string{token.Kind, yieldpool.Kind, vault.Kind, registry.Kind} {
		assert.NotEmpty(t, builtin.MethodNames(kind), kind)
	}
	assert.Empty(t, builtin.MethodNames("unknown"))

	names := builtin.MethodNames(vault.Kind)
	sort.Strings(names)
	assert.Contains(t, names, "verifyBatch")
	assert.Contains(t, names, "summary")

	tests := []struct {
		kind, name string
		found      bool
		readOnly   bool
	}{
		{vault.Kind, "stake", true, false},
		{vault.Kind, "summary", true, true},
		{vault.Kind, "roster", true, true},
		{registry.Kind, "createVault", true, false},
		{registry.Kind, "isVault", true, true},
		{token.Kind, "balanceOf", true, true},
		{yieldpool.Kind, "harvest", true, false},
		{vault.Kind, "createVault", false, false},
		{"unknown", "stake", false, false},
	}
	for _, tt := range tests {
		m, ok := builtin.LookupMethod(tt.kind, tt.name)
		assert.Equal(t, tt.found, ok, "%s.%s", tt.kind, tt.name)
		if ok {
			assert.Equal(t, tt.name, m.Name())
			assert.Equal(t, tt.readOnly, m.ReadOnly(), "%s.%s", tt.kind, tt.name)
		}
	}
}

func TestParseArgs(t *testing.T) {
	var args struct {
		Participant pledge.Address `json:"participant"`
	}
	addr := datagen.RandAddress()

	tests := []struct {
		raw string
		err error
	}{
		{fmt.Sprintf(`{"participant":"%v"}`, addr), nil},
		{``, nil},
		{`null`, nil},
		{`{}`, nil},
		{`{"participant":"0x12"}`, reverts.ErrInvalidArgs},
		{`{"participant":"` + addr.String() + `","extra":1}`, reverts.ErrInvalidArgs},
		{`[1,2]`, reverts.ErrInvalidArgs},
	}
	for _, tt := range tests {
		inv := &builtin.Invocation{Args: json.RawMessage(tt.raw)}
		err := inv.ParseArgs(&args)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.raw)
		} else {
			assert.NoError(t, err, tt.raw)
		}
	}
}

func TestVaultLifecycleThroughMethods(t *testing.T) {
	c := newCaller(t)
	var (
		owner     = datagen.RandAddress()
		minter    = datagen.RandAddress()
		authority = datagen.RandAddress()
		treasury  = datagen.RandAddress()
		creator   = datagen.RandAddress()
		usd       = pledge.NamedAddress("usd")
		reg       = pledge.RegistryAddress
	)
	require.NoError(t, c.env.Token(usd).Initialize(&token.Metadata{Name: "USD", Symbol: "USD", Decimals: 6, Minter: minter}))
	require.NoError(t, c.env.Registry().Initialize(owner, pledge.DefaultForfeitFeeBps, pledge.DefaultYieldFeeBps))

	c.mustCall(registry.Kind, reg, owner, "whitelistAsset", fmt.Sprintf(`{"asset":"%v"}`, usd))
	assert.Equal(t, true, c.mustCall(registry.Kind, reg, owner, "isWhitelisted", fmt.Sprintf(`{"asset":"%v"}`, usd)))

	_, err := c.call(registry.Kind, reg, creator, "createVault", fmt.Sprintf(
		`{"asset":"%v","stakeAmount":"100","maxParticipants":3,"treasury":"%v","authority":"%v","yieldSource":null,"bogus":true}`,
		usd, treasury, authority))
	assert.ErrorIs(t, err, reverts.ErrInvalidArgs)

	out := c.mustCall(registry.Kind, reg, creator, "createVault", fmt.Sprintf(
		`{"asset":"%v","stakeAmount":"100","maxParticipants":3,"treasury":"%v","authority":"%v","yieldSource":null}`,
		usd, treasury, authority))
	target, ok := out.(pledge.Address)
	require.True(t, ok)

	stakers := datagen.RandAddresses(3)
	for _, s := range stakers {
		c.mustCall(token.Kind, usd, minter, "mint", fmt.Sprintf(`{"to":"%v","amount":"0x64"}`, s))
		c.mustCall(token.Kind, usd, s, "approve", fmt.Sprintf(`{"spender":"%v","amount":"100"}`, target))
		c.mustCall(vault.Kind, target, s, "stake", `{}`)
	}

	n := c.mustCall(vault.Kind, target, authority, "verifyBatch",
		fmt.Sprintf(`{"participants":["%v","%v"]}`, stakers[0], stakers[1]))
	assert.Equal(t, uint64(2), n)

	_, err = c.call(vault.Kind, target, stakers[0], "settle", ``)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
	c.mustCall(vault.Kind, target, authority, "settle", ``)

	summary, ok := c.mustCall(vault.Kind, target, datagen.RandAddress(), "summary", ``).(*builtin.VaultSummary)
	require.True(t, ok)
	assert.Equal(t, vault.PhaseSettled, summary.Phase)
	assert.True(t, summary.Settled)
	assert.Equal(t, uint64(3), summary.ParticipantCount)
	assert.Equal(t, int64(10), (*big.Int)(summary.Totals.TotalProtocolFees).Int64())

	info, ok := c.mustCall(vault.Kind, target, stakers[0], "participant", fmt.Sprintf(`{"participant":"%v"}`, stakers[0])).(*builtin.ParticipantInfo)
	require.True(t, ok)
	assert.Equal(t, vault.StatusVerified, info.Status)
	assert.Equal(t, int64(145), (*big.Int)(info.Claimable).Int64())

	claimed, ok := c.mustCall(vault.Kind, target, stakers[0], "claim", ``).(*math.HexOrDecimal256)
	require.True(t, ok)
	assert.Equal(t, int64(145), (*big.Int)(claimed).Int64())

	roster := c.mustCall(vault.Kind, target, creator, "roster", `{"offset":1,"limit":1}`)
	assert.Equal(t, []pledge.Address{stakers[1]}, roster)

	raw, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"phase":"settled"`)
	assert.Contains(t, string(raw), `"yieldSource":null`)
}

func TestAmountArguments(t *testing.T) {
	c := newCaller(t)
	minter := datagen.RandAddress()
	usd := pledge.NamedAddress("usd")
	require.NoError(t, c.env.Token(usd).Initialize(&token.Metadata{Name: "USD", Symbol: "USD", Minter: minter}))
	to := datagen.RandAddress()

	tests := []struct {
		args string
		err  error
	}{
		{fmt.Sprintf(`{"to":"%v","amount":"42"}`, to), nil},
		{fmt.Sprintf(`{"to":"%v","amount":"0x2a"}`, to), nil},
		{fmt.Sprintf(`{"to":"%v"}`, to), reverts.ErrInvalidArgs},
		{fmt.Sprintf(`{"to":"%v","amount":"-1"}`, to), reverts.ErrInvalidArgs},
		{fmt.Sprintf(`{"to":"%v","amount":"ten"}`, to), reverts.ErrInvalidArgs},
	}
	for _, tt := range tests {
		_, err := c.call(token.Kind, usd, minter, "mint", tt.args)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.args)
		} else {
			assert.NoError(t, err, tt.args)
		}
	}

	bal, ok := c.mustCall(token.Kind, usd, to, "balanceOf", fmt.Sprintf(`{"holder":"%v"}`, to)).(*math.HexOrDecimal256)
	require.True(t, ok)
	assert.Equal(t, M(int64(84), true), M((*big.Int)(bal).Int64(), (*big.Int)(bal).IsInt64()))
}
