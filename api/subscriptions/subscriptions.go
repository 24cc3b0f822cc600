// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams committed operations over websockets.
// A subscriber names a journal position and receives every operation past
// it, then stays attached for live commits.
package subscriptions

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/fleek-platform/fleek-contracts/api/utils"
	"github.com/fleek-platform/fleek-contracts/co"
	"github.com/fleek-platform/fleek-contracts/log"
	"github.com/fleek-platform/fleek-contracts/logdb"
	"github.com/fleek-platform/fleek-contracts/node"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period, must be less than pongWait
	pingPeriod = (pongWait * 9) / 10
)

type Subscriptions struct {
	node     *node.Node
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       co.Goes
}

func New(nd *node.Node, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		node: nd,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// position parses the pos query parameter, the journal sequence to resume
// after. Missing means "from now on".
func (s *Subscriptions) position(req *http.Request) (uint64, error) {
	raw := req.URL.Query().Get("pos")
	if raw == "" {
		return s.node.LastSeq(), nil
	}
	pos, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	if pos > s.node.LastSeq() {
		return 0, utils.BadRequest(errors.New("pos: beyond the journal head"))
	}
	return pos, nil
}

func (s *Subscriptions) handleSubscribeOps(w http.ResponseWriter, req *http.Request) error {
	pos, err := s.position(req)
	if err != nil {
		return err
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already replied to the client
		logger.Debug("upgrade to websocket failed", "err", err)
		return nil
	}
	defer conn.Close()

	closed := make(chan struct{})
	s.wg.Go(func() {
		defer close(closed)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug("websocket read failed", "err", err)
				}
				return
			}
		}
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		// a fresh waiter before draining, so commits between the drain and
		// the wait are not missed
		waiter := s.node.OpFeed().NewWaiter()

		// To left at zero keeps the range open-ended
		ops, err := s.node.LogDB().Filter(req.Context(), &logdb.Filter{
			Range: &logdb.Range{Unit: logdb.Seq, From: pos + 1},
			Order: logdb.ASC,
		})
		if err != nil {
			return err
		}
		for _, op := range ops {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(op); err != nil {
				return nil
			}
			pos = op.Seq
		}

		select {
		case <-req.Context().Done():
			return nil
		case <-s.done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "node shutting down"))
			return nil
		case <-closed:
			return nil
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-waiter.C():
		}
	}
}

// Close disconnects all subscribers. Websocket connections are hijacked from
// the http server and outlive its shutdown otherwise.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/op").
		Methods(http.MethodGet).
		Name("GET /subscriptions/op").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeOps))
}
