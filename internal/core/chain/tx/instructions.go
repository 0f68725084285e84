package tx

import (
	"encoding/binary"

	"github.com/weisyn/oreminer/internal/core/chain/pda"
	"github.com/weisyn/oreminer/pkg/constants"
	"github.com/weisyn/oreminer/pkg/types"
)

// ==================== Compute Budget ====================

const (
	computeBudgetSetLimit uint8 = 2
	computeBudgetSetPrice uint8 = 3
)

// SetComputeUnitLimit 设置计算单元上限
func SetComputeUnitLimit(units uint32) Instruction {
	data := make([]byte, 5)
	data[0] = computeBudgetSetLimit
	binary.LittleEndian.PutUint32(data[1:], units)
	return Instruction{ProgramID: constants.ComputeBudgetProgramID, Data: data}
}

// SetComputeUnitPrice 设置优先费（micro-lamports / CU）
func SetComputeUnitPrice(microLamports uint64) Instruction {
	data := make([]byte, 9)
	data[0] = computeBudgetSetPrice
	binary.LittleEndian.PutUint64(data[1:], microLamports)
	return Instruction{ProgramID: constants.ComputeBudgetProgramID, Data: data}
}

// ==================== ORE ====================

// OreInstruction ORE program 指令标识
type OreInstruction uint8

const (
	OreClaim OreInstruction = 0
	OreClose OreInstruction = 1
	OreMine  OreInstruction = 2
	OreOpen  OreInstruction = 3
	OreReset OreInstruction = 4
)

// Auth 声明本交易所属的 proof（noop program，数据为 proof 地址）
func Auth(proof types.Pubkey) Instruction {
	return Instruction{ProgramID: constants.NoopProgramID, Data: proof.Bytes()}
}

// Mine 提交答案
func Mine(signer, authority, bus types.Pubkey, solution types.Solution) Instruction {
	proof, _ := pda.ProofAddress(authority)
	data := make([]byte, 0, 1+len(solution.D)+len(solution.N))
	data = append(data, byte(OreMine))
	data = append(data, solution.D[:]...)
	data = append(data, solution.N[:]...)
	return Instruction{
		ProgramID: constants.OreProgramID,
		Accounts: []AccountMeta{
			WritableSigner(signer),
			Writable(bus),
			Readonly(pda.ConfigAddress()),
			Writable(proof),
			Readonly(constants.SysvarInstructionsID),
			Readonly(constants.SysvarSlotHashesID),
		},
		Data: data,
	}
}

// Open 创建 signer 的 proof 账户
func Open(signer types.Pubkey) Instruction {
	proof, bump := pda.ProofAddress(signer)
	return Instruction{
		ProgramID: constants.OreProgramID,
		Accounts: []AccountMeta{
			WritableSigner(signer),
			Readonly(signer),
			WritableSigner(signer),
			Writable(proof),
			Readonly(constants.SystemProgramID),
			Readonly(constants.SysvarSlotHashesID),
		},
		Data: []byte{byte(OreOpen), bump},
	}
}

// Reset 触发 epoch 重置
func Reset(signer types.Pubkey) Instruction {
	accounts := make([]AccountMeta, 0, 1+constants.BusCount+6)
	accounts = append(accounts, WritableSigner(signer))
	for _, bus := range pda.BusAddresses() {
		accounts = append(accounts, Writable(bus))
	}
	accounts = append(accounts,
		Writable(pda.ConfigAddress()),
		Writable(pda.MintAddress()),
		Writable(pda.TreasuryAddress()),
		Writable(pda.TreasuryTokensAddress()),
		Readonly(constants.TokenProgramID),
	)
	return Instruction{ProgramID: constants.OreProgramID, Accounts: accounts, Data: []byte{byte(OreReset)}}
}
