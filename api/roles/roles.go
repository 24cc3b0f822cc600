// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package roles exposes the authority registry over HTTP.
package roles

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/fleek-platform/fleek-contracts/api/utils"
	"github.com/fleek-platform/fleek-contracts/contracts/authority"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/node"
)

type Roles struct {
	node *node.Node
}

// MemberRequest is the body of grant and revoke operations.
type MemberRequest struct {
	Caller fleek.Address `json:"caller"`
	Member fleek.Address `json:"member"`
}

func New(nd *node.Node) *Roles {
	return &Roles{nd}
}

func role(req *http.Request) (string, error) {
	role := mux.Vars(req)["role"]
	switch role {
	case authority.RoleAdmin, authority.RoleFunder:
		return role, nil
	}
	return "", utils.NotFound(errors.Errorf("no such role %q", role))
}

func (r *Roles) handleGetMembers(w http.ResponseWriter, req *http.Request) error {
	name, err := role(req)
	if err != nil {
		return err
	}
	members, err := r.node.RoleMembers(name)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, members)
}

func (r *Roles) handleGetMember(w http.ResponseWriter, req *http.Request) error {
	name, err := role(req)
	if err != nil {
		return err
	}
	member, err := fleek.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	has, err := r.node.HasRole(name, *member)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"hasRole": has})
}

func (r *Roles) handleGrant(w http.ResponseWriter, req *http.Request) error {
	name, err := role(req)
	if err != nil {
		return err
	}
	var body MemberRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	op, err := r.node.GrantRole(body.Caller, name, body.Member)
	if err != nil {
		return utils.ConvertOpError(err)
	}
	return utils.WriteJSON(w, op)
}

func (r *Roles) handleRevoke(w http.ResponseWriter, req *http.Request) error {
	name, err := role(req)
	if err != nil {
		return err
	}
	var body MemberRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	op, err := r.node.RevokeRole(body.Caller, name, body.Member)
	if err != nil {
		return utils.ConvertOpError(err)
	}
	return utils.WriteJSON(w, op)
}

func (r *Roles) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{role}/members").
		Methods(http.MethodGet).
		Name("GET /roles/{role}/members").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetMembers))
	sub.Path("/{role}/members/{address}").
		Methods(http.MethodGet).
		Name("GET /roles/{role}/members/{address}").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetMember))
	sub.Path("/{role}/grant").
		Methods(http.MethodPost).
		Name("POST /roles/{role}/grant").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGrant))
	sub.Path("/{role}/revoke").
		Methods(http.MethodPost).
		Name("POST /roles/{role}/revoke").
		HandlerFunc(utils.WrapHandlerFunc(r.handleRevoke))
}
