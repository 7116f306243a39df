// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.db")

	db, err := New(path, Options{})
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("stake"), []byte{1}))
	require.NoError(t, db.Close())

	db, err = New(path, Options{CacheSize: 32})
	require.NoError(t, err)
	defer db.Close()

	v, err := db.Get([]byte("stake"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, v)

	has, err := db.Has([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, has)

	_, err = db.Get([]byte("missing"))
	assert.True(t, db.IsNotFound(err))

	require.NoError(t, db.Delete([]byte("stake")))
	_, err = db.Get([]byte("stake"))
	assert.True(t, db.IsNotFound(err))
}

func TestCloseReleasesLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.db")

	db, err := New(path, Options{})
	require.NoError(t, err)

	_, err = New(path, Options{})
	assert.Error(t, err, "path is locked while open")

	require.NoError(t, db.Close())

	for range 3 {
		db, err = New(path, Options{})
		require.NoError(t, err)
		require.NoError(t, db.Close())
	}
}
