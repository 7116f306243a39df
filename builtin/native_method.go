// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"bytes"
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/pledge/builtin/reverts"
	"github.com/vechain/pledge/pledge"
)

// Invocation is a method call after the caller has been authenticated.
type Invocation struct {
	Caller pledge.Address
	Target pledge.Address
	Args   json.RawMessage
}

// ParseArgs decodes the JSON arguments strictly into v.
func (inv *Invocation) ParseArgs(v any) error {
	if len(inv.Args) == 0 || string(inv.Args) == "null" {
		inv.Args = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(inv.Args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return reverts.ErrInvalidArgs.Withf("%v", err)
	}
	return nil
}

// nativeMethod describes a callable method of a contract kind.
type nativeMethod struct {
	name     string
	readOnly bool
	run      func(env *Env, inv *Invocation) (any, error)
}

// Method is a resolved callable method.
type Method struct {
	m *nativeMethod
}

// Name returns the method name.
func (m Method) Name() string { return m.m.name }

// ReadOnly reports whether the method never writes state.
func (m Method) ReadOnly() bool { return m.m.readOnly }

// Run executes the method against env.
func (m Method) Run(env *Env, inv *Invocation) (any, error) {
	return m.m.run(env, inv)
}

var methods = make(map[string]map[string]*nativeMethod)

func register(kind string, defines []*nativeMethod) {
	table := make(map[string]*nativeMethod, len(defines))
	for _, def := range defines {
		if _, dup := table[def.name]; dup {
			panic("duplicated method " + kind + "." + def.name)
		}
		table[def.name] = def
	}
	methods[kind] = table
}

// LookupMethod finds the method of the given contract kind.
func LookupMethod(kind, name string) (Method, bool) {
	if m, ok := methods[kind][name]; ok {
		return Method{m}, true
	}
	return Method{}, false
}

// MethodNames lists the methods of the given contract kind.
func MethodNames(kind string) []string {
	names := make([]string, 0, len(methods[kind]))
	for name := range methods[kind] {
		names = append(names, name)
	}
	return names
}

// amount converts an argument to a non-negative big integer.
func amount(v *math.HexOrDecimal256) (*big.Int, error) {
	if v == nil {
		return nil, reverts.ErrInvalidArgs.Withf("missing amount")
	}
	b := (*big.Int)(v)
	if b.Sign() < 0 {
		return nil, reverts.ErrInvalidArgs.Withf("negative amount")
	}
	return new(big.Int).Set(b), nil
}

// hexAmount renders an amount for output.
func hexAmount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

func init() {
	initTokenMethods()
	initYieldPoolMethods()
	initVaultMethods()
	initRegistryMethods()
}
