// Package configs 内置的示例配置
package configs

import _ "embed"

//go:embed miner.json
var minerConfig []byte

// MinerConfig 示例配置内容（副本）
func MinerConfig() []byte {
	return append([]byte(nil), minerConfig...)
}
