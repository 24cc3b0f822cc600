// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package httpclient talks to the daemon's REST API. It offers one method
// per endpoint, decoding into the same types the server encodes from.
package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"

	apinode "github.com/fleek-platform/fleek-contracts/api/node"
	"github.com/fleek-platform/fleek-contracts/api/pools"
	"github.com/fleek-platform/fleek-contracts/api/roles"
	"github.com/fleek-platform/fleek-contracts/api/tokens"
	"github.com/fleek-platform/fleek-contracts/client/common"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/health"
	"github.com/fleek-platform/fleek-contracts/logdb"
	"github.com/fleek-platform/fleek-contracts/node"
)

// Client is the HTTP client for the daemon's REST API.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: strings.TrimSuffix(url, "/"),
		c:   c,
	}
}

// GetPools retrieves the snapshot of every configured pool.
func (c *Client) GetPools() ([]*node.PoolSummary, error) {
	body, err := c.httpGET(c.url + "/pools")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve pools - %w", err)
	}

	var summaries []*node.PoolSummary
	if err = json.Unmarshal(body, &summaries); err != nil {
		return nil, fmt.Errorf("unable to unmarshal pools - %w", err)
	}
	return summaries, nil
}

// GetPool retrieves the snapshot of the named pool.
func (c *Client) GetPool(name string) (*node.PoolSummary, error) {
	body, err := c.httpGET(c.url + "/pools/" + name)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve pool - %w", err)
	}

	var summary node.PoolSummary
	if err = json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("unable to unmarshal pool - %w", err)
	}
	return &summary, nil
}

// GetAccount retrieves the account's standing in the named pool.
func (c *Client) GetAccount(pool string, account *fleek.Address) (*node.AccountStatus, error) {
	body, err := c.httpGET(c.url + "/pools/" + pool + "/accounts/" + account.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve account - %w", err)
	}

	var status node.AccountStatus
	if err = json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("unable to unmarshal account - %w", err)
	}
	return &status, nil
}

func (c *Client) poolOp(pool, action string, body interface{}) (*logdb.Op, error) {
	raw, err := c.httpPOST(c.url+"/pools/"+pool+"/"+action, body)
	if err != nil {
		return nil, fmt.Errorf("unable to %s - %w", action, err)
	}

	var op logdb.Op
	if err = json.Unmarshal(raw, &op); err != nil {
		return nil, fmt.Errorf("unable to unmarshal op - %w", err)
	}
	return &op, nil
}

// Stake moves the caller's tokens into the pool.
func (c *Client) Stake(pool string, caller *fleek.Address, amount *big.Int) (*logdb.Op, error) {
	return c.poolOp(pool, "stake", &pools.AmountRequest{Caller: *caller, Amount: (*math.HexOrDecimal256)(amount)})
}

// Withdraw moves the caller's stake back out, gate permitting.
func (c *Client) Withdraw(pool string, caller *fleek.Address, amount *big.Int) (*logdb.Op, error) {
	return c.poolOp(pool, "withdraw", &pools.AmountRequest{Caller: *caller, Amount: (*math.HexOrDecimal256)(amount)})
}

// RequestWithdrawal starts the cooldown for the given amount.
func (c *Client) RequestWithdrawal(pool string, caller *fleek.Address, amount *big.Int) (*logdb.Op, error) {
	return c.poolOp(pool, "request-withdrawal", &pools.AmountRequest{Caller: *caller, Amount: (*math.HexOrDecimal256)(amount)})
}

// CompleteWithdrawal pays out a matured withdrawal request.
func (c *Client) CompleteWithdrawal(pool string, caller *fleek.Address) (*logdb.Op, error) {
	return c.poolOp(pool, "complete-withdrawal", &pools.CallerRequest{Caller: *caller})
}

// Claim pays out the caller's accrued rewards.
func (c *Client) Claim(pool string, caller *fleek.Address) (*logdb.Op, error) {
	return c.poolOp(pool, "claim", &pools.CallerRequest{Caller: *caller})
}

// Exit withdraws the whole stake and claims in one operation.
func (c *Client) Exit(pool string, caller *fleek.Address) (*logdb.Op, error) {
	return c.poolOp(pool, "exit", &pools.CallerRequest{Caller: *caller})
}

// Fund starts or tops up a reward period.
func (c *Client) Fund(pool string, caller *fleek.Address, amount *big.Int) (*logdb.Op, error) {
	return c.poolOp(pool, "fund", &pools.AmountRequest{Caller: *caller, Amount: (*math.HexOrDecimal256)(amount)})
}

// SetDuration updates the pool's reward period length.
func (c *Client) SetDuration(pool string, caller *fleek.Address, duration uint64) (*logdb.Op, error) {
	return c.poolOp(pool, "duration", &pools.DurationRequest{Caller: *caller, Duration: duration})
}

// SetPaused flips the pool's stake intake switch.
func (c *Client) SetPaused(pool string, caller *fleek.Address, paused bool) (*logdb.Op, error) {
	return c.poolOp(pool, "paused", &pools.PausedRequest{Caller: *caller, Paused: paused})
}

// Recover sweeps a foreign asset out of the pool.
func (c *Client) Recover(pool string, caller, asset *fleek.Address, amount *big.Int) (*logdb.Op, error) {
	return c.poolOp(pool, "recover", &pools.RecoverRequest{
		Caller: *caller,
		Asset:  *asset,
		Amount: (*math.HexOrDecimal256)(amount),
	})
}

// GetBalance retrieves the account's balance of the asset. The asset is a
// configured token name or a raw address.
func (c *Client) GetBalance(asset string, account *fleek.Address) (*big.Int, error) {
	body, err := c.httpGET(c.url + "/tokens/" + asset + "/balances/" + account.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve balance - %w", err)
	}

	var reply struct {
		Balance *math.HexOrDecimal256 `json:"balance"`
	}
	if err = json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("unable to unmarshal balance - %w", err)
	}
	return (*big.Int)(reply.Balance), nil
}

// GetTotalSupply retrieves the asset's total supply.
func (c *Client) GetTotalSupply(asset string) (*big.Int, error) {
	body, err := c.httpGET(c.url + "/tokens/" + asset + "/total-supply")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve total supply - %w", err)
	}

	var reply struct {
		TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
	}
	if err = json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("unable to unmarshal total supply - %w", err)
	}
	return (*big.Int)(reply.TotalSupply), nil
}

// GetAllowance retrieves what spender may pull from owner.
func (c *Client) GetAllowance(asset string, owner, spender *fleek.Address) (*big.Int, error) {
	body, err := c.httpGET(c.url + "/tokens/" + asset + "/allowances/" + owner.String() + "/" + spender.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve allowance - %w", err)
	}

	var reply struct {
		Allowance *math.HexOrDecimal256 `json:"allowance"`
	}
	if err = json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("unable to unmarshal allowance - %w", err)
	}
	return (*big.Int)(reply.Allowance), nil
}

// Transfer moves tokens from the caller to another account.
func (c *Client) Transfer(asset string, caller, to *fleek.Address, amount *big.Int) (*logdb.Op, error) {
	raw, err := c.httpPOST(c.url+"/tokens/"+asset+"/transfer", &tokens.TransferRequest{
		Caller: *caller,
		To:     *to,
		Amount: (*math.HexOrDecimal256)(amount),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to transfer - %w", err)
	}

	var op logdb.Op
	if err = json.Unmarshal(raw, &op); err != nil {
		return nil, fmt.Errorf("unable to unmarshal op - %w", err)
	}
	return &op, nil
}

// Approve grants spender an allowance on the caller's balance.
func (c *Client) Approve(asset string, caller, spender *fleek.Address, amount *big.Int) (*logdb.Op, error) {
	raw, err := c.httpPOST(c.url+"/tokens/"+asset+"/approve", &tokens.ApproveRequest{
		Caller:  *caller,
		Spender: *spender,
		Amount:  (*math.HexOrDecimal256)(amount),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to approve - %w", err)
	}

	var op logdb.Op
	if err = json.Unmarshal(raw, &op); err != nil {
		return nil, fmt.Errorf("unable to unmarshal op - %w", err)
	}
	return &op, nil
}

// GetRoleMembers lists the current holders of the role.
func (c *Client) GetRoleMembers(role string) ([]fleek.Address, error) {
	body, err := c.httpGET(c.url + "/roles/" + role + "/members")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve role members - %w", err)
	}

	var members []fleek.Address
	if err = json.Unmarshal(body, &members); err != nil {
		return nil, fmt.Errorf("unable to unmarshal role members - %w", err)
	}
	return members, nil
}

// HasRole reports whether member holds the role.
func (c *Client) HasRole(role string, member *fleek.Address) (bool, error) {
	body, err := c.httpGET(c.url + "/roles/" + role + "/members/" + member.String())
	if err != nil {
		return false, fmt.Errorf("unable to retrieve role membership - %w", err)
	}

	var reply struct {
		HasRole bool `json:"hasRole"`
	}
	if err = json.Unmarshal(body, &reply); err != nil {
		return false, fmt.Errorf("unable to unmarshal role membership - %w", err)
	}
	return reply.HasRole, nil
}

// GrantRole grants the role to member; the caller must be an admin.
func (c *Client) GrantRole(role string, caller, member *fleek.Address) (*logdb.Op, error) {
	return c.roleOp(role, "grant", caller, member)
}

// RevokeRole revokes the role from member; the caller must be an admin.
func (c *Client) RevokeRole(role string, caller, member *fleek.Address) (*logdb.Op, error) {
	return c.roleOp(role, "revoke", caller, member)
}

func (c *Client) roleOp(role, action string, caller, member *fleek.Address) (*logdb.Op, error) {
	raw, err := c.httpPOST(c.url+"/roles/"+role+"/"+action, &roles.MemberRequest{
		Caller: *caller,
		Member: *member,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to %s role - %w", action, err)
	}

	var op logdb.Op
	if err = json.Unmarshal(raw, &op); err != nil {
		return nil, fmt.Errorf("unable to unmarshal op - %w", err)
	}
	return &op, nil
}

// FilterOps queries the operations journal.
func (c *Client) FilterOps(filter *logdb.Filter) ([]*logdb.Op, error) {
	body, err := c.httpPOST(c.url+"/logs/op", filter)
	if err != nil {
		return nil, fmt.Errorf("unable to filter ops - %w", err)
	}

	var ops []*logdb.Op
	if err = json.Unmarshal(body, &ops); err != nil {
		return nil, fmt.Errorf("unable to unmarshal ops - %w", err)
	}
	return ops, nil
}

// GetNodeInfo retrieves the network identity of the node.
func (c *Client) GetNodeInfo() (*apinode.Info, error) {
	body, err := c.httpGET(c.url + "/node/info")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve node info - %w", err)
	}

	var info apinode.Info
	if err = json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("unable to unmarshal node info - %w", err)
	}
	return &info, nil
}

// GetHealth retrieves the node's health snapshot. A 503 still carries a
// snapshot, so it is decoded rather than treated as a failure.
func (c *Client) GetHealth() (*health.Status, error) {
	body, code, err := c.rawHTTPRequest("GET", c.url+"/node/health", nil)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve health - %w", err)
	}
	if code != http.StatusOK && code != http.StatusServiceUnavailable {
		return nil, fmt.Errorf("http error - Status Code %d - %w", code, common.ErrNot200Status)
	}

	var status health.Status
	if err = json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("unable to unmarshal health - %w", err)
	}
	return &status, nil
}

// RawHTTPPost sends a raw HTTP POST to the path with the provided payload.
func (c *Client) RawHTTPPost(path string, payload any) ([]byte, int, error) {
	var data []byte
	var err error

	if raw, ok := payload.([]byte); ok {
		data = raw
	} else {
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("unable to marshal payload - %w", err)
		}
	}

	return c.rawHTTPRequest("POST", c.url+path, bytes.NewReader(data))
}

// RawHTTPGet sends a raw HTTP GET to the path.
func (c *Client) RawHTTPGet(path string) ([]byte, int, error) {
	return c.rawHTTPRequest("GET", c.url+path, nil)
}

func (c *Client) httpGET(url string) ([]byte, error) {
	body, code, err := c.rawHTTPRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	return body, validateResponse(code, body)
}

func (c *Client) httpPOST(url string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal payload - %w", err)
	}
	body, code, err := c.rawHTTPRequest("POST", url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return body, validateResponse(code, body)
}

func (c *Client) rawHTTPRequest(method, url string, payload io.Reader) ([]byte, int, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}
	if method == "POST" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("error reading response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func validateResponse(code int, body []byte) error {
	switch code {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return common.ErrNotFound
	default:
		return fmt.Errorf("http error - Status Code %d - %s - %w", code, bytes.TrimSpace(body), common.ErrNot200Status)
	}
}
