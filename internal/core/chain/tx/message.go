// Package tx 构建并签名 Solana legacy 交易
//
// 消息布局：
//
//	header(3) ‖ compact(account_keys) ‖ recent_blockhash(32) ‖ compact(instructions)
//
// 账户排序：手续费付款人 → 可写签名者 → 只读签名者 → 可写非签名者 → 只读非签名者。
package tx

import (
	"errors"
	"fmt"

	"github.com/weisyn/oreminer/pkg/types"
)

// MaxTransactionSize 单笔交易序列化后的最大字节数（IPv6 MTU 减去包头）
const MaxTransactionSize = 1232

var (
	// ErrTooManyAccounts 账户数超过 u8 索引范围
	ErrTooManyAccounts = errors.New("too many accounts in message")

	// ErrTransactionTooLarge 交易超过网络包上限
	ErrTransactionTooLarge = errors.New("transaction too large")
)

// AccountMeta 指令引用的账户
type AccountMeta struct {
	Pubkey     types.Pubkey
	IsSigner   bool
	IsWritable bool
}

// Writable 可写非签名账户
func Writable(pk types.Pubkey) AccountMeta { return AccountMeta{Pubkey: pk, IsWritable: true} }

// Readonly 只读非签名账户
func Readonly(pk types.Pubkey) AccountMeta { return AccountMeta{Pubkey: pk} }

// WritableSigner 可写签名账户
func WritableSigner(pk types.Pubkey) AccountMeta {
	return AccountMeta{Pubkey: pk, IsSigner: true, IsWritable: true}
}

// Instruction 未编译的指令
type Instruction struct {
	ProgramID types.Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// MessageHeader 消息头
type MessageHeader struct {
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8
}

// CompiledInstruction 以账户索引表示的指令
type CompiledInstruction struct {
	ProgramIDIndex uint8
	Accounts       []uint8
	Data           []byte
}

// Message legacy 交易消息
type Message struct {
	Header          MessageHeader
	AccountKeys     []types.Pubkey
	RecentBlockhash types.Blockhash
	Instructions    []CompiledInstruction
}

type keyMeta struct {
	signer   bool
	writable bool
	order    int
}

// NewMessage 编译指令列表，payer 固定位于第一个账户
func NewMessage(payer types.Pubkey, instructions []Instruction, blockhash types.Blockhash) (*Message, error) {
	metas := map[types.Pubkey]*keyMeta{
		payer: {signer: true, writable: true, order: 0},
	}
	order := 1
	touch := func(pk types.Pubkey, signer, writable bool) {
		m, ok := metas[pk]
		if !ok {
			m = &keyMeta{order: order}
			order++
			metas[pk] = m
		}
		m.signer = m.signer || signer
		m.writable = m.writable || writable
	}
	for _, ix := range instructions {
		for _, a := range ix.Accounts {
			touch(a.Pubkey, a.IsSigner, a.IsWritable)
		}
		touch(ix.ProgramID, false, false)
	}
	if len(metas) > 256 {
		return nil, fmt.Errorf("%w: %d", ErrTooManyAccounts, len(metas))
	}

	// 四个分组内保持首次出现的顺序
	groups := make([][]types.Pubkey, 4)
	ordered := make([]types.Pubkey, len(metas))
	for pk, m := range metas {
		ordered[m.order] = pk
	}
	for _, pk := range ordered {
		m := metas[pk]
		switch {
		case m.signer && m.writable:
			groups[0] = append(groups[0], pk)
		case m.signer:
			groups[1] = append(groups[1], pk)
		case m.writable:
			groups[2] = append(groups[2], pk)
		default:
			groups[3] = append(groups[3], pk)
		}
	}

	msg := &Message{RecentBlockhash: blockhash}
	for _, g := range groups {
		msg.AccountKeys = append(msg.AccountKeys, g...)
	}
	msg.Header = MessageHeader{
		NumRequiredSignatures:       uint8(len(groups[0]) + len(groups[1])),
		NumReadonlySignedAccounts:   uint8(len(groups[1])),
		NumReadonlyUnsignedAccounts: uint8(len(groups[3])),
	}

	index := make(map[types.Pubkey]uint8, len(msg.AccountKeys))
	for i, pk := range msg.AccountKeys {
		index[pk] = uint8(i)
	}
	for _, ix := range instructions {
		ci := CompiledInstruction{
			ProgramIDIndex: index[ix.ProgramID],
			Accounts:       make([]uint8, len(ix.Accounts)),
			Data:           ix.Data,
		}
		for i, a := range ix.Accounts {
			ci.Accounts[i] = index[a.Pubkey]
		}
		msg.Instructions = append(msg.Instructions, ci)
	}
	return msg, nil
}

// Signers 需要签名的账户（消息前 NumRequiredSignatures 个）
func (m *Message) Signers() []types.Pubkey {
	return m.AccountKeys[:m.Header.NumRequiredSignatures]
}

// Serialize 序列化消息（即签名内容）
func (m *Message) Serialize() []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, m.Header.NumRequiredSignatures, m.Header.NumReadonlySignedAccounts, m.Header.NumReadonlyUnsignedAccounts)
	buf = appendCompactU16(buf, len(m.AccountKeys))
	for _, k := range m.AccountKeys {
		buf = append(buf, k[:]...)
	}
	buf = append(buf, m.RecentBlockhash[:]...)
	buf = appendCompactU16(buf, len(m.Instructions))
	for _, ix := range m.Instructions {
		buf = append(buf, ix.ProgramIDIndex)
		buf = appendCompactU16(buf, len(ix.Accounts))
		buf = append(buf, ix.Accounts...)
		buf = appendCompactU16(buf, len(ix.Data))
		buf = append(buf, ix.Data...)
	}
	return buf
}
