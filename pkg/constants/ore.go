// Package constants provides ORE protocol and Solana runtime constants.
package constants

import "github.com/weisyn/oreminer/pkg/types"

// ==================== 程序地址 ====================

var (
	// OreProgramID ORE v2 program
	OreProgramID = types.MustPubkey("oreV2ZymfyeXgNgBdqMkumTqqAprVqgBWQfoYkrtKWQ")

	// NoopProgramID auth 指令使用的 noop program
	NoopProgramID = types.MustPubkey("noop8ytexvkpCuqbf6FB89BSuNemHtPRqaNC31GWivW")

	SystemProgramID        = types.Pubkey{}
	TokenProgramID         = types.MustPubkey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedTokenProgram = types.MustPubkey("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	ComputeBudgetProgramID = types.MustPubkey("ComputeBudget111111111111111111111111111111")
	SysvarClockID          = types.MustPubkey("SysvarC1ock11111111111111111111111111111111")
	SysvarSlotHashesID     = types.MustPubkey("SysvarS1otHashes111111111111111111111111111")
	SysvarInstructionsID   = types.MustPubkey("Sysvar1nstructions1111111111111111111111111")
)

// ==================== PDA 种子 ====================

var (
	BusSeed      = []byte("bus")
	ConfigSeed   = []byte("config")
	MintSeed     = []byte("mint")
	ProofSeed    = []byte("proof")
	TreasurySeed = []byte("treasury")

	// MintNoise mint 地址的附加种子
	MintNoise = []byte{89, 157, 88, 232, 243, 249, 197, 132, 199, 49, 19, 234, 91, 94, 150, 41}
)

// ==================== 协议参数 ====================

const (
	// BusCount 奖励分发账户数量
	BusCount = 8

	// OneMinute 秒
	OneMinute int64 = 60

	// EpochDuration 一个 epoch 的时长（秒）
	EpochDuration = OneMinute

	// RoundWindow 每次哈希提交之间的协议窗口（秒）
	RoundWindow = OneMinute

	// TokenDecimals ORE 精度
	TokenDecimals = 11
)

// ==================== 客户端默认值 ====================

const (
	// DefaultCutoffSeconds 无法读取链上时钟时的截止时间
	DefaultCutoffSeconds uint64 = 60

	// ResetSafetyBuffer epoch 重置判定的提前量（秒）
	ResetSafetyBuffer int64 = 5

	// ResetThrottleOneIn 满足重置条件时，以 1/N 概率附带 reset 指令
	ResetThrottleOneIn uint32 = 100

	// MineComputeUnits 挖矿交易的计算单元上限
	MineComputeUnits uint32 = 500_000

	// ResetComputeUnits 附带 reset 指令时追加的计算单元
	ResetComputeUnits uint32 = 100_000

	// OpenComputeUnits 创建 proof 账户交易的计算单元上限
	OpenComputeUnits uint32 = 400_000
)
