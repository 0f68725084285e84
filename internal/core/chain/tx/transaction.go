package tx

import (
	"errors"
	"fmt"

	"github.com/weisyn/oreminer/pkg/types"
)

// Signer 交易签名者（crypto/key.Keypair 实现）
type Signer interface {
	Pubkey() types.Pubkey
	Sign(message []byte) types.Signature
}

// Transaction 已签名的 legacy 交易
type Transaction struct {
	Signatures []types.Signature
	Message    *Message
}

// NewTransaction 编译并签名；第一个 signer 为手续费付款人
func NewTransaction(instructions []Instruction, blockhash types.Blockhash, signers ...Signer) (*Transaction, error) {
	if len(signers) == 0 {
		return nil, errors.New("no signers")
	}
	msg, err := NewMessage(signers[0].Pubkey(), instructions, blockhash)
	if err != nil {
		return nil, err
	}

	byKey := make(map[types.Pubkey]Signer, len(signers))
	for _, s := range signers {
		byKey[s.Pubkey()] = s
	}
	content := msg.Serialize()
	required := msg.Signers()
	tx := &Transaction{Message: msg, Signatures: make([]types.Signature, len(required))}
	for i, pk := range required {
		s, ok := byKey[pk]
		if !ok {
			return nil, fmt.Errorf("missing signer %s", pk)
		}
		tx.Signatures[i] = s.Sign(content)
	}
	return tx, nil
}

// Signature 交易 ID（第一个签名）
func (t *Transaction) Signature() types.Signature {
	if len(t.Signatures) == 0 {
		return types.Signature{}
	}
	return t.Signatures[0]
}

// Serialize 序列化为 wire 格式
func (t *Transaction) Serialize() ([]byte, error) {
	msg := t.Message.Serialize()
	buf := make([]byte, 0, 1+len(t.Signatures)*types.SignatureLength+len(msg))
	buf = appendCompactU16(buf, len(t.Signatures))
	for _, s := range t.Signatures {
		buf = append(buf, s[:]...)
	}
	buf = append(buf, msg...)
	if len(buf) > MaxTransactionSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTransactionTooLarge, len(buf))
	}
	return buf, nil
}

// SplitSignatures 从 wire 格式中拆出签名与消息（测试与日志使用）
func SplitSignatures(raw []byte) ([]types.Signature, []byte, error) {
	n, off, err := readCompactU16(raw)
	if err != nil {
		return nil, nil, err
	}
	if len(raw) < off+n*types.SignatureLength {
		return nil, nil, fmt.Errorf("truncated transaction: %d bytes", len(raw))
	}
	sigs := make([]types.Signature, n)
	for i := range sigs {
		copy(sigs[i][:], raw[off:])
		off += types.SignatureLength
	}
	return sigs, raw[off:], nil
}
