// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the HTTP interface of the daemon.
package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/fleek-platform/fleek-contracts/api/events"
	apinode "github.com/fleek-platform/fleek-contracts/api/node"
	"github.com/fleek-platform/fleek-contracts/api/pools"
	"github.com/fleek-platform/fleek-contracts/api/roles"
	"github.com/fleek-platform/fleek-contracts/api/subscriptions"
	"github.com/fleek-platform/fleek-contracts/api/tokens"
	"github.com/fleek-platform/fleek-contracts/health"
	"github.com/fleek-platform/fleek-contracts/log"
	"github.com/fleek-platform/fleek-contracts/node"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins string
	PprofOn        bool
	EnableMetrics  bool
	LogsLimit      uint64

	// LogRequests switches the request logger at runtime; the admin server
	// flips it. Nil disables request logging entirely.
	LogRequests *atomic.Bool
}

// New returns the assembled api handler and a closer for the hijacked
// websocket connections.
func New(nd *node.Node, h *health.Health, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	pools.New(nd).
		Mount(router, "/pools")
	tokens.New(nd).
		Mount(router, "/tokens")
	roles.New(nd).
		Mount(router, "/roles")
	events.New(nd.LogDB(), opts.LogsLimit).
		Mount(router, "/logs/op")
	apinode.New(nd, h).
		Mount(router, "/node")
	subs := subscriptions.New(nd, origins)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-genesis-id"}),
		handlers.ExposedHeaders([]string{"x-genesis-id"}),
	)(handler)

	if opts.LogRequests != nil {
		handler = RequestLoggerHandler(handler, logger, opts.LogRequests)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
