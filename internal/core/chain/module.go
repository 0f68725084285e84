// Package chain 装配 Solana 链访问层：RPC 客户端与矿工签名密钥
package chain

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	rpcconfig "github.com/weisyn/oreminer/internal/config/rpc"
	"github.com/weisyn/oreminer/internal/core/chain/rpc"
	"github.com/weisyn/oreminer/internal/core/chain/tx"
	"github.com/weisyn/oreminer/internal/core/infrastructure/crypto/key"
	chainintf "github.com/weisyn/oreminer/pkg/interfaces/chain"
	log "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
)

// ModuleParams 链模块依赖
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Options   *rpcconfig.RPCOptions
	Logger    log.Logger `optional:"true"`
}

// ModuleOutput 链模块输出
type ModuleOutput struct {
	fx.Out

	Client  chainintf.Client
	Keypair *key.Keypair
	Signer  tx.Signer
}

// Module 返回链模块
func Module() fx.Option {
	return fx.Module("chain",
		fx.Provide(ProvideChainServices),
	)
}

// ProvideChainServices 读取签名密钥并连接 RPC 节点
func ProvideChainServices(p ModuleParams) (ModuleOutput, error) {
	kp, err := key.LoadKeypair(p.Options.KeypairPath)
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("加载密钥 %s: %w", p.Options.KeypairPath, err)
	}

	var logger log.Logger
	if p.Logger != nil {
		logger = p.Logger.With("module", "rpc")
	}
	client, err := rpc.New(context.Background(), p.Options, logger)
	if err != nil {
		return ModuleOutput{}, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			client.Close()
			return nil
		},
	})
	if logger != nil {
		logger.Infof("RPC 节点: %s, 矿工地址: %s", client.URL(), kp.Pubkey())
	}
	return ModuleOutput{Client: client, Keypair: kp, Signer: kp}, nil
}
