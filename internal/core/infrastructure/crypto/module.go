// Package crypto 提供挖矿哈希函数
package crypto

import (
	"go.uber.org/fx"

	"github.com/weisyn/oreminer/internal/core/infrastructure/crypto/drill"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/crypto"
)

// CryptoOutput 定义加密模块的输出结构
type CryptoOutput struct {
	fx.Out

	HashFunction crypto.HashFunction
}

// Module 返回加密模块
func Module() fx.Option {
	return fx.Module("crypto",
		fx.Provide(ProvideCryptoServices),
	)
}

// ProvideCryptoServices 提供加密服务
func ProvideCryptoServices() CryptoOutput {
	return CryptoOutput{HashFunction: drill.New()}
}
