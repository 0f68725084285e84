package types

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// Blockhash 最近区块哈希（交易有效期锚点）
type Blockhash [32]byte

func (b Blockhash) String() string { return base58.Encode(b[:]) }

// ParseBlockhash 解析 base58 区块哈希
func ParseBlockhash(s string) (Blockhash, error) {
	var bh Blockhash
	raw, err := base58.Decode(s)
	if err != nil {
		return bh, fmt.Errorf("invalid blockhash: %w", err)
	}
	if len(raw) != len(bh) {
		return bh, fmt.Errorf("invalid blockhash length %d", len(raw))
	}
	copy(bh[:], raw)
	return bh, nil
}

// Commitment 查询承诺级别
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// SignatureStatus getSignatureStatuses 的单项结果
type SignatureStatus struct {
	Slot               uint64          `json:"slot"`
	Confirmations      *uint64         `json:"confirmations"`
	Err                json.RawMessage `json:"err"`
	ConfirmationStatus Commitment      `json:"confirmationStatus"`
}

// Failed 交易已上链但执行失败
func (s *SignatureStatus) Failed() bool {
	return s != nil && len(s.Err) > 0 && string(s.Err) != "null"
}

// Confirmed 交易已达到 confirmed 或 finalized
func (s *SignatureStatus) Confirmed() bool {
	if s == nil || s.Failed() {
		return false
	}
	return s.ConfirmationStatus == CommitmentConfirmed || s.ConfirmationStatus == CommitmentFinalized
}
