// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package client is the Go client for the daemon's API, wrapping the REST
// endpoints and the websocket operation feed.
package client

import (
	"errors"
	"math/big"

	apinode "github.com/fleek-platform/fleek-contracts/api/node"
	"github.com/fleek-platform/fleek-contracts/client/common"
	"github.com/fleek-platform/fleek-contracts/client/httpclient"
	"github.com/fleek-platform/fleek-contracts/client/wsclient"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/health"
	"github.com/fleek-platform/fleek-contracts/logdb"
	"github.com/fleek-platform/fleek-contracts/node"
)

type Client struct {
	httpConn *httpclient.Client
	wsConn   *wsclient.Client
}

func New(url string) *Client {
	return &Client{
		httpConn: httpclient.New(url),
	}
}

// NewWithWS creates a client that can also subscribe to the operation feed.
func NewWithWS(url string) (*Client, error) {
	wsConn, err := wsclient.NewClient(url)
	if err != nil {
		return nil, err
	}
	return &Client{
		httpConn: httpclient.New(url),
		wsConn:   wsConn,
	}, nil
}

func (c *Client) RawHTTPClient() *httpclient.Client {
	return c.httpConn
}

func (c *Client) RawWSClient() *wsclient.Client {
	return c.wsConn
}

func (c *Client) Pools() ([]*node.PoolSummary, error) {
	return c.httpConn.GetPools()
}

func (c *Client) Pool(name string) (*node.PoolSummary, error) {
	return c.httpConn.GetPool(name)
}

func (c *Client) Account(pool string, account *fleek.Address) (*node.AccountStatus, error) {
	return c.httpConn.GetAccount(pool, account)
}

func (c *Client) Stake(pool string, caller *fleek.Address, amount *big.Int) (*logdb.Op, error) {
	return c.httpConn.Stake(pool, caller, amount)
}

func (c *Client) Withdraw(pool string, caller *fleek.Address, amount *big.Int) (*logdb.Op, error) {
	return c.httpConn.Withdraw(pool, caller, amount)
}

func (c *Client) RequestWithdrawal(pool string, caller *fleek.Address, amount *big.Int) (*logdb.Op, error) {
	return c.httpConn.RequestWithdrawal(pool, caller, amount)
}

func (c *Client) CompleteWithdrawal(pool string, caller *fleek.Address) (*logdb.Op, error) {
	return c.httpConn.CompleteWithdrawal(pool, caller)
}

func (c *Client) Claim(pool string, caller *fleek.Address) (*logdb.Op, error) {
	return c.httpConn.Claim(pool, caller)
}

func (c *Client) Exit(pool string, caller *fleek.Address) (*logdb.Op, error) {
	return c.httpConn.Exit(pool, caller)
}

func (c *Client) Fund(pool string, caller *fleek.Address, amount *big.Int) (*logdb.Op, error) {
	return c.httpConn.Fund(pool, caller, amount)
}

func (c *Client) SetDuration(pool string, caller *fleek.Address, duration uint64) (*logdb.Op, error) {
	return c.httpConn.SetDuration(pool, caller, duration)
}

func (c *Client) SetPaused(pool string, caller *fleek.Address, paused bool) (*logdb.Op, error) {
	return c.httpConn.SetPaused(pool, caller, paused)
}

func (c *Client) Recover(pool string, caller, asset *fleek.Address, amount *big.Int) (*logdb.Op, error) {
	return c.httpConn.Recover(pool, caller, asset, amount)
}

func (c *Client) Balance(asset string, account *fleek.Address) (*big.Int, error) {
	return c.httpConn.GetBalance(asset, account)
}

func (c *Client) TotalSupply(asset string) (*big.Int, error) {
	return c.httpConn.GetTotalSupply(asset)
}

func (c *Client) Allowance(asset string, owner, spender *fleek.Address) (*big.Int, error) {
	return c.httpConn.GetAllowance(asset, owner, spender)
}

func (c *Client) Transfer(asset string, caller, to *fleek.Address, amount *big.Int) (*logdb.Op, error) {
	return c.httpConn.Transfer(asset, caller, to, amount)
}

func (c *Client) Approve(asset string, caller, spender *fleek.Address, amount *big.Int) (*logdb.Op, error) {
	return c.httpConn.Approve(asset, caller, spender, amount)
}

func (c *Client) RoleMembers(role string) ([]fleek.Address, error) {
	return c.httpConn.GetRoleMembers(role)
}

func (c *Client) HasRole(role string, member *fleek.Address) (bool, error) {
	return c.httpConn.HasRole(role, member)
}

func (c *Client) GrantRole(role string, caller, member *fleek.Address) (*logdb.Op, error) {
	return c.httpConn.GrantRole(role, caller, member)
}

func (c *Client) RevokeRole(role string, caller, member *fleek.Address) (*logdb.Op, error) {
	return c.httpConn.RevokeRole(role, caller, member)
}

func (c *Client) FilterOps(filter *logdb.Filter) ([]*logdb.Op, error) {
	return c.httpConn.FilterOps(filter)
}

func (c *Client) NodeInfo() (*apinode.Info, error) {
	return c.httpConn.GetNodeInfo()
}

func (c *Client) Health() (*health.Status, error) {
	return c.httpConn.GetHealth()
}

// SubscribeOps streams committed operations past the given journal
// position. Requires a client built with NewWithWS.
func (c *Client) SubscribeOps(pos uint64) (<-chan common.EventWrapper[*logdb.Op], func(), error) {
	if c.wsConn == nil {
		return nil, nil, errors.New("client created without websocket support")
	}
	return c.wsConn.SubscribeOps(pos)
}
