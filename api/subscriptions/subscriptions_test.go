// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pledge/lvldb"
	"github.com/vechain/pledge/runtime"
	"github.com/vechain/pledge/state"
)

func newServer(t *testing.T) (*Subscriptions, string) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rt := runtime.New(state.New(db), nil)
	t.Cleanup(rt.Close)

	subs := New(rt, []string{"*"})
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return subs, "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscriptions/event"
}

func TestCloseEndsSubscriptions(t *testing.T) {
	subs, url := newServer(t)

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	done := make(chan struct{})
	go func() {
		subs.Close()
		close(done)
	}()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("close did not return")
	}
}

func TestRefuseAfterClose(t *testing.T) {
	subs, url := newServer(t)
	subs.Close()
	// closing twice is a no-op
	subs.Close()

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
