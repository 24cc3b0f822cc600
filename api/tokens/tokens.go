// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tokens exposes the asset ledgers over HTTP.
package tokens

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/fleek-platform/fleek-contracts/api/utils"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/node"
)

type Tokens struct {
	node *node.Node
}

// TransferRequest is the body of a direct asset transfer.
type TransferRequest struct {
	Caller fleek.Address         `json:"caller"`
	To     fleek.Address         `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// ApproveRequest is the body of an allowance grant.
type ApproveRequest struct {
	Caller  fleek.Address         `json:"caller"`
	Spender fleek.Address         `json:"spender"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

func New(nd *node.Node) *Tokens {
	return &Tokens{nd}
}

// asset resolves the {asset} path variable, accepting a configured token
// name or a raw address.
func (t *Tokens) asset(req *http.Request) (fleek.Address, error) {
	raw := mux.Vars(req)["asset"]
	if addr, err := t.node.Genesis().Config().TokenAddress(raw); err == nil {
		return addr, nil
	}
	addr, err := fleek.ParseAddress(raw)
	if err != nil {
		return fleek.Address{}, utils.BadRequest(errors.WithMessage(err, "asset"))
	}
	return *addr, nil
}

func (t *Tokens) handleGetTotalSupply(w http.ResponseWriter, req *http.Request) error {
	asset, err := t.asset(req)
	if err != nil {
		return err
	}
	supply, err := t.node.TokenTotalSupply(asset)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"totalSupply": (*math.HexOrDecimal256)(supply)})
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	asset, err := t.asset(req)
	if err != nil {
		return err
	}
	account, err := fleek.ParseAddress(mux.Vars(req)["account"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "account"))
	}
	balance, err := t.node.TokenBalance(asset, *account)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"balance": (*math.HexOrDecimal256)(balance)})
}

func (t *Tokens) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	asset, err := t.asset(req)
	if err != nil {
		return err
	}
	vars := mux.Vars(req)
	owner, err := fleek.ParseAddress(vars["owner"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "owner"))
	}
	spender, err := fleek.ParseAddress(vars["spender"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "spender"))
	}
	allowance, err := t.node.TokenAllowance(asset, *owner, *spender)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"allowance": (*math.HexOrDecimal256)(allowance)})
}

func (t *Tokens) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	asset, err := t.asset(req)
	if err != nil {
		return err
	}
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	op, err := t.node.TokenTransfer(asset, body.Caller, body.To, (*big.Int)(body.Amount))
	if err != nil {
		return utils.ConvertOpError(err)
	}
	return utils.WriteJSON(w, op)
}

func (t *Tokens) handleApprove(w http.ResponseWriter, req *http.Request) error {
	asset, err := t.asset(req)
	if err != nil {
		return err
	}
	var body ApproveRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	op, err := t.node.TokenApprove(asset, body.Caller, body.Spender, (*big.Int)(body.Amount))
	if err != nil {
		return utils.ConvertOpError(err)
	}
	return utils.WriteJSON(w, op)
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{asset}/total-supply").
		Methods(http.MethodGet).
		Name("GET /tokens/{asset}/total-supply").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetTotalSupply))
	sub.Path("/{asset}/balances/{account}").
		Methods(http.MethodGet).
		Name("GET /tokens/{asset}/balances/{account}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/{asset}/allowances/{owner}/{spender}").
		Methods(http.MethodGet).
		Name("GET /tokens/{asset}/allowances/{owner}/{spender}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetAllowance))
	sub.Path("/{asset}/transfer").
		Methods(http.MethodPost).
		Name("POST /tokens/{asset}/transfer").
		HandlerFunc(utils.WrapHandlerFunc(t.handleTransfer))
	sub.Path("/{asset}/approve").
		Methods(http.MethodPost).
		Name("POST /tokens/{asset}/approve").
		HandlerFunc(utils.WrapHandlerFunc(t.handleApprove))
}
