// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithContextFollowsRoot(t *testing.T) {
	logger := WithContext("pkg", "vault")

	var buf bytes.Buffer
	InitWithWriter(&buf, Options{Verbosity: LegacyLevelInfo, JSON: true})

	logger.Info("settled", "fee", 10)
	assert.Contains(t, buf.String(), `"pkg":"vault"`)
	assert.Contains(t, buf.String(), `"msg":"settled"`)

	buf.Reset()
	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	assert.True(t, SetVerbosity(LegacyLevelDebug))
	logger.With("vault", "0x01").Debug("shown")
	assert.Contains(t, buf.String(), `"vault":"0x01"`)
	assert.Contains(t, buf.String(), `"pkg":"vault"`)
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, Options{Verbosity: LegacyLevelWarn})
	assert.Equal(t, LevelWarn, Level())

	Root().Info("hidden")
	assert.Empty(t, buf.String())

	assert.True(t, SetLevel(LevelTrace))
	assert.Equal(t, "trace", LevelName(Level()))
	Root().Trace("shown")
	assert.Contains(t, buf.String(), "shown")
}
