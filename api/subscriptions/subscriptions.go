// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/algorand/go-deadlock"
	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/pledge/api/events"
	"github.com/vechain/pledge/api/utils"
	"github.com/vechain/pledge/log"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/runtime"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10

	// Committed calls buffered per connection before the writer blocks the feed.
	bufferSize = 64
)

type Subscriptions struct {
	rt       *runtime.Runtime
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
	mu       deadlock.Mutex
	closed   bool
}

func New(rt *runtime.Runtime, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		rt: rt,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, strings.ToLower(origin))
			},
		},
		done: make(chan struct{}),
	}
}

func parseCriteria(req *http.Request) (*events.EventCriteria, error) {
	var criteria events.EventCriteria
	query := req.URL.Query()
	for _, name := range []string{"address", "subject"} {
		s := query.Get(name)
		if s == "" {
			continue
		}
		addr, err := pledge.ParseAddress(s)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, name))
		}
		if name == "address" {
			criteria.Address = &addr
		} else {
			criteria.Subject = &addr
		}
	}
	if name := query.Get("name"); name != "" {
		criteria.Name = &name
	}
	return &criteria, nil
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	criteria, err := parseCriteria(req)
	if err != nil {
		return err
	}

	if !s.enter() {
		return utils.HTTPError(errors.New("service closed"), http.StatusServiceUnavailable)
	}
	defer s.wg.Done()

	// subscribe before the handshake completes so no commit after it is missed
	ch := make(chan *runtime.Committed, bufferSize)
	sub := s.rt.SubscribeCommitted(ch)
	defer sub.Unsubscribe()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	defer conn.Close()

	metricActiveCount().AddWithLabel(1, map[string]string{"subject": "event"})
	defer metricActiveCount().AddWithLabel(-1, map[string]string{"subject": "event"})

	if err := s.pipe(conn, criteria, ch, sub); err != nil {
		logger.Debug("subscription closed", "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, criteria *events.EventCriteria, ch <-chan *runtime.Committed, sub event.Subscription) error {
	// the reader only consumes control frames
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case c := <-ch:
			for i, ev := range c.Events {
				if !criteria.Matches(ev) {
					continue
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(events.NewFilteredEvent(&c.Call, i, ev)); err != nil {
					return err
				}
			}
		case err := <-sub.Err():
			return err
		case <-closed:
			return nil
		case <-s.done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			return conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "service closed"))
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

// enter registers a connection unless the service is closing.
func (s *Subscriptions) enter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

// Close ends every open subscription and waits for them to return.
// Requests arriving afterwards are refused.
func (s *Subscriptions) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubject))
}
