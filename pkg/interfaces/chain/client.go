// Package chain 定义挖矿客户端访问 Solana 链的接口
//
// 挖矿轮次只依赖这里的接口；具体实现位于 internal/core/chain/rpc（JSON-RPC），
// 测试使用 internal/core/miner/testutil 中的内存实现。
package chain

import (
	"context"
	"errors"

	"github.com/weisyn/oreminer/pkg/types"
)

// ErrAccountNotFound 账户不存在
var ErrAccountNotFound = errors.New("account not found")

// AccountReader 原始账户数据读取
type AccountReader interface {
	// GetAccountInfo 读取单个账户数据；不存在时返回 ErrAccountNotFound
	GetAccountInfo(ctx context.Context, address types.Pubkey) ([]byte, error)

	// GetMultipleAccounts 批量读取，结果与 addresses 一一对应，不存在的账户为 nil
	GetMultipleAccounts(ctx context.Context, addresses []types.Pubkey) ([][]byte, error)
}

// StateReader ORE 协议状态读取
type StateReader interface {
	GetConfig(ctx context.Context) (*types.Config, error)
	GetProof(ctx context.Context, authority types.Pubkey) (*types.Proof, error)
	GetClock(ctx context.Context) (*types.Clock, error)
}

// TxSender 交易提交
type TxSender interface {
	GetLatestBlockhash(ctx context.Context) (types.Blockhash, error)

	// SendTransaction 提交已签名的交易（跳过预检）
	SendTransaction(ctx context.Context, raw []byte) (types.Signature, error)

	// GetSignatureStatuses 查询签名状态，未知的签名对应 nil
	GetSignatureStatuses(ctx context.Context, signatures []types.Signature) ([]*types.SignatureStatus, error)
}

// Client 完整的链客户端
type Client interface {
	AccountReader
	StateReader
	TxSender

	Close()
}
