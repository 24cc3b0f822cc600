// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node serves node-level information and the health probe.
package node

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fleek-platform/fleek-contracts/api/utils"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/health"
	"github.com/fleek-platform/fleek-contracts/node"
)

type Node struct {
	nd     *node.Node
	health *health.Health
}

// Info identifies the network the node serves.
type Info struct {
	Network   string        `json:"network"`
	GenesisID fleek.Bytes32 `json:"genesisId"`
	LastSeq   uint64        `json:"lastSeq"`
	Pools     []string      `json:"pools"`
}

func New(nd *node.Node, h *health.Health) *Node {
	return &Node{
		nd,
		h,
	}
}

func (n *Node) handleInfo(w http.ResponseWriter, req *http.Request) error {
	config := n.nd.Genesis().Config()
	pools := make([]string, 0, len(config.Pools))
	for i := range config.Pools {
		pools = append(pools, config.Pools[i].Name)
	}
	return utils.WriteJSON(w, &Info{
		Network:   n.nd.Genesis().Name(),
		GenesisID: n.nd.Genesis().ID(),
		LastSeq:   n.nd.LastSeq(),
		Pools:     pools,
	})
}

func (n *Node) handleHealth(w http.ResponseWriter, req *http.Request) error {
	status, err := n.health.Status()
	if err != nil {
		return err
	}
	if !status.Healthy {
		// the content type has to go out before the status line
		w.Header().Set("Content-Type", utils.JSONContentType)
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return utils.WriteJSON(w, status)
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/info").
		Methods(http.MethodGet).
		Name("GET /node/info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleInfo))
	sub.Path("/health").
		Methods(http.MethodGet).
		Name("GET /node/health").
		HandlerFunc(utils.WrapHandlerFunc(n.handleHealth))
}
