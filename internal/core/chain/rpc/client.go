// Package rpc 基于 JSON-RPC 2.0 的 Solana 链客户端
//
// 传输层复用 go-ethereum 的 rpc.Client（HTTP 模式），这里只负责 Solana 方法的
// 参数与结果编解码。所有方法都是只读或一次性提交，不做重试；失败由调用方按
// 轮次策略兜底（默认截止时间、随机 bus 等）。
package rpc

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	gethrpc "github.com/ethereum/go-ethereum/rpc"

	rpcconfig "github.com/weisyn/oreminer/internal/config/rpc"
	"github.com/weisyn/oreminer/internal/core/chain/pda"
	"github.com/weisyn/oreminer/pkg/constants"
	"github.com/weisyn/oreminer/pkg/interfaces/chain"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/types"
)

// maxAccountsPerRequest getMultipleAccounts 单次上限
const maxAccountsPerRequest = 100

var _ chain.Client = (*Client)(nil)

// Client Solana JSON-RPC 客户端
type Client struct {
	rpc        *gethrpc.Client
	url        string
	timeout    time.Duration
	commitment types.Commitment
	logger     log.Logger
}

// New 连接 RPC 节点（HTTP 模式下不发起网络请求）
func New(ctx context.Context, opts *rpcconfig.RPCOptions, logger log.Logger) (*Client, error) {
	if opts == nil || opts.URL == "" {
		return nil, errors.New("rpc url is empty")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c, err := gethrpc.DialOptions(ctx, opts.URL, gethrpc.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, fmt.Errorf("dial rpc %s: %w", opts.URL, err)
	}
	return &Client{
		rpc:        c,
		url:        opts.URL,
		timeout:    timeout,
		commitment: types.CommitmentConfirmed,
		logger:     logger,
	}, nil
}

// URL 节点地址
func (c *Client) URL() string { return c.url }

// Close 关闭连接
func (c *Client) Close() { c.rpc.Close() }

func (c *Client) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.rpc.CallContext(ctx, result, method, args...); err != nil {
		if c.logger != nil {
			c.logger.Debugf("rpc %s failed: %v", method, err)
		}
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// ==================== 账户读取 ====================

type rpcContext struct {
	Slot uint64 `json:"slot"`
}

// accountValue 账户数据固定使用 base64 编码：["<data>", "base64"]
type accountValue struct {
	Data       []string `json:"data"`
	Executable bool     `json:"executable"`
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
}

func (a *accountValue) decode() ([]byte, error) {
	if len(a.Data) == 0 {
		return nil, nil
	}
	if len(a.Data) > 1 && a.Data[1] != "base64" {
		return nil, fmt.Errorf("unexpected account encoding %q", a.Data[1])
	}
	return base64.StdEncoding.DecodeString(a.Data[0])
}

type accountInfoResult struct {
	Context rpcContext    `json:"context"`
	Value   *accountValue `json:"value"`
}

type multipleAccountsResult struct {
	Context rpcContext      `json:"context"`
	Value   []*accountValue `json:"value"`
}

func (c *Client) accountConfig() map[string]interface{} {
	return map[string]interface{}{
		"encoding":   "base64",
		"commitment": c.commitment,
	}
}

// GetAccountInfo 读取单个账户数据
func (c *Client) GetAccountInfo(ctx context.Context, address types.Pubkey) ([]byte, error) {
	var res accountInfoResult
	if err := c.call(ctx, &res, "getAccountInfo", address.String(), c.accountConfig()); err != nil {
		return nil, err
	}
	if res.Value == nil {
		return nil, fmt.Errorf("%w: %s", chain.ErrAccountNotFound, address)
	}
	data, err := res.Value.decode()
	if err != nil {
		return nil, fmt.Errorf("decode account %s: %w", address, err)
	}
	return data, nil
}

// GetMultipleAccounts 批量读取账户，超过单次上限时分批请求
func (c *Client) GetMultipleAccounts(ctx context.Context, addresses []types.Pubkey) ([][]byte, error) {
	out := make([][]byte, 0, len(addresses))
	for start := 0; start < len(addresses); start += maxAccountsPerRequest {
		end := start + maxAccountsPerRequest
		if end > len(addresses) {
			end = len(addresses)
		}
		keys := make([]string, 0, end-start)
		for _, a := range addresses[start:end] {
			keys = append(keys, a.String())
		}

		var res multipleAccountsResult
		if err := c.call(ctx, &res, "getMultipleAccounts", keys, c.accountConfig()); err != nil {
			return nil, err
		}
		if len(res.Value) != len(keys) {
			return nil, fmt.Errorf("getMultipleAccounts: got %d accounts, want %d", len(res.Value), len(keys))
		}
		for i, v := range res.Value {
			if v == nil {
				out = append(out, nil)
				continue
			}
			data, err := v.decode()
			if err != nil {
				// 单个账户解码失败视为缺失，由调用方排除
				if c.logger != nil {
					c.logger.Warnf("decode account %s: %v", keys[i], err)
				}
				out = append(out, nil)
				continue
			}
			out = append(out, data)
		}
	}
	return out, nil
}

// ==================== 协议状态 ====================

// GetConfig 读取 ORE Config 账户
func (c *Client) GetConfig(ctx context.Context) (*types.Config, error) {
	data, err := c.GetAccountInfo(ctx, pda.ConfigAddress())
	if err != nil {
		return nil, err
	}
	return types.DecodeConfig(data)
}

// GetProof 读取 authority 的 Proof 账户
func (c *Client) GetProof(ctx context.Context, authority types.Pubkey) (*types.Proof, error) {
	addr, _ := pda.ProofAddress(authority)
	data, err := c.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, err
	}
	return types.DecodeProof(data)
}

// GetClock 读取 clock sysvar
func (c *Client) GetClock(ctx context.Context) (*types.Clock, error) {
	data, err := c.GetAccountInfo(ctx, constants.SysvarClockID)
	if err != nil {
		return nil, err
	}
	return types.DecodeClock(data)
}

// ==================== 交易 ====================

type latestBlockhashResult struct {
	Context rpcContext `json:"context"`
	Value   struct {
		Blockhash            string `json:"blockhash"`
		LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
	} `json:"value"`
}

// GetLatestBlockhash 最近区块哈希
func (c *Client) GetLatestBlockhash(ctx context.Context) (types.Blockhash, error) {
	var res latestBlockhashResult
	if err := c.call(ctx, &res, "getLatestBlockhash", map[string]interface{}{"commitment": c.commitment}); err != nil {
		return types.Blockhash{}, err
	}
	return types.ParseBlockhash(res.Value.Blockhash)
}

// SendTransaction 提交已签名交易，跳过预检
func (c *Client) SendTransaction(ctx context.Context, raw []byte) (types.Signature, error) {
	var sig string
	cfg := map[string]interface{}{
		"encoding":            "base64",
		"skipPreflight":       true,
		"preflightCommitment": c.commitment,
	}
	if err := c.call(ctx, &sig, "sendTransaction", base64.StdEncoding.EncodeToString(raw), cfg); err != nil {
		return types.Signature{}, err
	}
	return types.ParseSignature(sig)
}

type signatureStatusesResult struct {
	Context rpcContext               `json:"context"`
	Value   []*types.SignatureStatus `json:"value"`
}

// GetSignatureStatuses 查询签名状态
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures []types.Signature) ([]*types.SignatureStatus, error) {
	keys := make([]string, len(signatures))
	for i, s := range signatures {
		keys[i] = s.String()
	}
	var res signatureStatusesResult
	cfg := map[string]interface{}{"searchTransactionHistory": false}
	if err := c.call(ctx, &res, "getSignatureStatuses", keys, cfg); err != nil {
		return nil, err
	}
	if len(res.Value) != len(signatures) {
		return nil, fmt.Errorf("getSignatureStatuses: got %d statuses, want %d", len(res.Value), len(signatures))
	}
	return res.Value, nil
}
