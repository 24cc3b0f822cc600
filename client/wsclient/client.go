// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package wsclient subscribes to the daemon's operation feed over
// websockets.
package wsclient

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/fleek-platform/fleek-contracts/client/common"
	"github.com/fleek-platform/fleek-contracts/logdb"
)

type Client struct {
	host   string
	scheme string
}

func NewClient(rawURL string) (*Client, error) {
	var host string
	var scheme string

	switch {
	case strings.HasPrefix(rawURL, "https://"), strings.HasPrefix(rawURL, "wss://"):
		host = strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "wss://")
		scheme = "wss"
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "ws://"):
		host = strings.TrimPrefix(strings.TrimPrefix(rawURL, "http://"), "ws://")
		scheme = "ws"
	default:
		return nil, fmt.Errorf("invalid url")
	}

	return &Client{
		host:   strings.TrimSuffix(host, "/"),
		scheme: scheme,
	}, nil
}

// SubscribeOps streams committed operations past the given journal
// position. The returned stop function closes the connection and with it
// the channel.
func (c *Client) SubscribeOps(pos uint64) (<-chan common.EventWrapper[*logdb.Op], func(), error) {
	conn, err := c.connect("/subscriptions/op", "pos="+strconv.FormatUint(pos, 10))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to connect - %w", err)
	}

	eventChan := make(chan common.EventWrapper[*logdb.Op])
	go func() {
		defer close(eventChan)
		for {
			var op logdb.Op
			if err := conn.ReadJSON(&op); err != nil {
				eventChan <- common.EventWrapper[*logdb.Op]{Error: fmt.Errorf("%w: %w", common.ErrUnexpectedMsg, err)}
				return
			}
			eventChan <- common.EventWrapper[*logdb.Op]{Data: &op}
		}
	}()

	return eventChan, func() { conn.Close() }, nil
}

func (c *Client) connect(endpoint, rawQuery string) (*websocket.Conn, error) {
	u := url.URL{
		Scheme:   c.scheme,
		Host:     c.host,
		Path:     endpoint,
		RawQuery: rawQuery,
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
