// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pools exposes the staking pools over HTTP: snapshot and account
// views, and the full set of pool operations.
package pools

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/fleek-platform/fleek-contracts/api/utils"
	"github.com/fleek-platform/fleek-contracts/cache"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/node"
)

type Pools struct {
	node  *node.Node
	cache *cache.LRU
}

// summaryKey invalidates on every commit and on every clock second, since
// the accumulator in a summary grows with time even between commits.
type summaryKey struct {
	name string
	seq  uint64
	now  uint64
}

func New(nd *node.Node) *Pools {
	c, _ := cache.NewLRU(128)
	return &Pools{
		node:  nd,
		cache: c,
	}
}

func (p *Pools) summary(name string) (*node.PoolSummary, error) {
	key := summaryKey{name, p.node.LastSeq(), p.node.Now()}
	v, err := p.cache.GetOrLoad(key, func(interface{}) (interface{}, error) {
		return p.node.PoolSummary(name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*node.PoolSummary), nil
}

func (p *Pools) handleGetPools(w http.ResponseWriter, req *http.Request) error {
	summaries, err := p.node.PoolSummaries()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, summaries)
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	name, err := p.poolName(req)
	if err != nil {
		return err
	}
	summary, err := p.summary(name)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, summary)
}

func (p *Pools) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	name, err := p.poolName(req)
	if err != nil {
		return err
	}
	addr, err := fleek.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	status, err := p.node.AccountStatus(name, *addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, status)
}

func (p *Pools) handleStake(w http.ResponseWriter, req *http.Request) error {
	name, body, err := p.amountRequest(req)
	if err != nil {
		return err
	}
	op, err := p.node.Stake(name, body.Caller, bigAmount(body.Amount))
	if err != nil {
		return utils.ConvertOpError(err)
	}
	return utils.WriteJSON(w, op)
}

func (p *Pools) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	name, body, err := p.amountRequest(req)
	if err != nil {
		return err
	}
	op, err := p.node.Withdraw(name, body.Caller, bigAmount(body.Amount))
	if err != nil {
		return utils.ConvertOpError(err)
	}
	return utils.WriteJSON(w, op)
}

func (p *Pools) handleRequestWithdrawal(w http.ResponseWriter, req *http.Request) error {
	name, body, err := p.amountRequest(req)
	if err != nil {
		return err
	}
	op, err := p.node.RequestWithdrawal(name, body.Caller, bigAmount(body.Amount))
	if err != nil {
		return utils.ConvertOpError(err)
	}
	return utils.WriteJSON(w, op)
}

func (p *Pools) handleCompleteWithdrawal(w http.ResponseWriter, req *http.Request) error {
	name, body, err := p.callerRequest(req)
	if err != nil {
		return err
	}
	op, err := p.node.CompleteWithdrawal(name, body.Caller)
	if err != nil {
		return utils.ConvertOpError(err)
	}
	return utils.WriteJSON(w, op)
}

func (p *Pools) handleClaim(w http.ResponseWriter, req *http.Request) error {
	name, body, err := p.callerRequest(req)
	if err != nil {
		return err
	}
	op, err := p.node.GetReward(name, body.Caller)
	if err != nil {
		return utils.ConvertOpError(err)
	}
	return utils.WriteJSON(w, op)
}

func (p *Pools) handleExit(w http.ResponseWriter, req *http.Request) error {
	name, body, err := p.callerRequest(req)
	if err != nil {
		return err
	}
	op, err := p.node.Exit(name, body.Caller)
	if err != nil {
		return utils.ConvertOpError(err)
	}
	return utils.WriteJSON(w, op)
}

func (p *Pools) handleFund(w http.ResponseWriter, req *http.Request) error {
	name, body, err := p.amountRequest(req)
	if err != nil {
		return err
	}
	op, err := p.node.NotifyReward(name, body.Caller, bigAmount(body.Amount))
	if err != nil {
		return utils.ConvertOpError(err)
	}
	return utils.WriteJSON(w, op)
}

func (p *Pools) handleSetDuration(w http.ResponseWriter, req *http.Request) error {
	name, err := p.poolName(req)
	if err != nil {
		return err
	}
	var body DurationRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	op, err := p.node.SetRewardsDuration(name, body.Caller, body.Duration)
	if err != nil {
		return utils.ConvertOpError(err)
	}
	return utils.WriteJSON(w, op)
}

func (p *Pools) handleSetPaused(w http.ResponseWriter, req *http.Request) error {
	name, err := p.poolName(req)
	if err != nil {
		return err
	}
	var body PausedRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	op, err := p.node.SetPaused(name, body.Caller, body.Paused)
	if err != nil {
		return utils.ConvertOpError(err)
	}
	return utils.WriteJSON(w, op)
}

func (p *Pools) handleRecover(w http.ResponseWriter, req *http.Request) error {
	name, err := p.poolName(req)
	if err != nil {
		return err
	}
	var body RecoverRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	op, err := p.node.RecoverForeignAsset(name, body.Caller, body.Asset, bigAmount(body.Amount))
	if err != nil {
		return utils.ConvertOpError(err)
	}
	return utils.WriteJSON(w, op)
}

// poolName resolves the {name} path variable against the configured pools.
func (p *Pools) poolName(req *http.Request) (string, error) {
	name := mux.Vars(req)["name"]
	if _, err := p.node.PoolConfig(name); err != nil {
		return "", utils.NotFound(err)
	}
	return name, nil
}

func (p *Pools) amountRequest(req *http.Request) (string, *AmountRequest, error) {
	name, err := p.poolName(req)
	if err != nil {
		return "", nil, err
	}
	var body AmountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return "", nil, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return name, &body, nil
}

func (p *Pools) callerRequest(req *http.Request) (string, *CallerRequest, error) {
	name, err := p.poolName(req)
	if err != nil {
		return "", nil, err
	}
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return "", nil, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return name, &body, nil
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pools").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPools))
	sub.Path("/{name}").
		Methods(http.MethodGet).
		Name("GET /pools/{name}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{name}/accounts/{address}").
		Methods(http.MethodGet).
		Name("GET /pools/{name}/accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetAccount))
	sub.Path("/{name}/stake").
		Methods(http.MethodPost).
		Name("POST /pools/{name}/stake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleStake))
	sub.Path("/{name}/withdraw").
		Methods(http.MethodPost).
		Name("POST /pools/{name}/withdraw").
		HandlerFunc(utils.WrapHandlerFunc(p.handleWithdraw))
	sub.Path("/{name}/request-withdrawal").
		Methods(http.MethodPost).
		Name("POST /pools/{name}/request-withdrawal").
		HandlerFunc(utils.WrapHandlerFunc(p.handleRequestWithdrawal))
	sub.Path("/{name}/complete-withdrawal").
		Methods(http.MethodPost).
		Name("POST /pools/{name}/complete-withdrawal").
		HandlerFunc(utils.WrapHandlerFunc(p.handleCompleteWithdrawal))
	sub.Path("/{name}/claim").
		Methods(http.MethodPost).
		Name("POST /pools/{name}/claim").
		HandlerFunc(utils.WrapHandlerFunc(p.handleClaim))
	sub.Path("/{name}/exit").
		Methods(http.MethodPost).
		Name("POST /pools/{name}/exit").
		HandlerFunc(utils.WrapHandlerFunc(p.handleExit))
	sub.Path("/{name}/fund").
		Methods(http.MethodPost).
		Name("POST /pools/{name}/fund").
		HandlerFunc(utils.WrapHandlerFunc(p.handleFund))
	sub.Path("/{name}/duration").
		Methods(http.MethodPost).
		Name("POST /pools/{name}/duration").
		HandlerFunc(utils.WrapHandlerFunc(p.handleSetDuration))
	sub.Path("/{name}/paused").
		Methods(http.MethodPost).
		Name("POST /pools/{name}/paused").
		HandlerFunc(utils.WrapHandlerFunc(p.handleSetPaused))
	sub.Path("/{name}/recover").
		Methods(http.MethodPost).
		Name("POST /pools/{name}/recover").
		HandlerFunc(utils.WrapHandlerFunc(p.handleRecover))
}
