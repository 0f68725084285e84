package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// PubkeyLength Solana 公钥长度
const PubkeyLength = 32

// SignatureLength ed25519 签名长度
const SignatureLength = 64

// Pubkey Solana 账户地址（32 字节，文本形式为 base58）
type Pubkey [PubkeyLength]byte

// Signature 交易签名（64 字节，文本形式为 base58）
type Signature [SignatureLength]byte

var errInvalidPubkey = errors.New("invalid pubkey")

// ParsePubkey 解析 base58 地址
func ParsePubkey(s string) (Pubkey, error) {
	var pk Pubkey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("%w: %v", errInvalidPubkey, err)
	}
	if len(raw) != PubkeyLength {
		return pk, fmt.Errorf("%w: length %d", errInvalidPubkey, len(raw))
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustPubkey 解析常量地址，失败直接 panic（仅用于包级常量初始化）
func MustPubkey(s string) Pubkey {
	pk, err := ParsePubkey(s)
	if err != nil {
		panic(fmt.Sprintf("bad pubkey constant %q: %v", s, err))
	}
	return pk
}

// PubkeyFromBytes 从字节切片构造地址
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	var pk Pubkey
	if len(b) != PubkeyLength {
		return pk, fmt.Errorf("%w: length %d", errInvalidPubkey, len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

func (p Pubkey) String() string { return base58.Encode(p[:]) }

// Bytes 返回地址字节副本
func (p Pubkey) Bytes() []byte { return append([]byte(nil), p[:]...) }

// IsZero 是否为全零地址（System Program 即全零）
func (p Pubkey) IsZero() bool { return p == Pubkey{} }

func (p Pubkey) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

func (p *Pubkey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	pk, err := ParsePubkey(s)
	if err != nil {
		return err
	}
	*p = pk
	return nil
}

func (s Signature) String() string { return base58.Encode(s[:]) }

// IsZero 是否为未签名占位
func (s Signature) IsZero() bool { return s == Signature{} }

func (s Signature) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// ParseSignature 解析 base58 签名
func ParseSignature(str string) (Signature, error) {
	var sig Signature
	raw, err := base58.Decode(str)
	if err != nil {
		return sig, fmt.Errorf("invalid signature: %w", err)
	}
	if len(raw) != SignatureLength {
		return sig, fmt.Errorf("invalid signature length %d", len(raw))
	}
	copy(sig[:], raw)
	return sig, nil
}
