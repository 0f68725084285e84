// Package key 管理矿工签名密钥（ed25519，Solana CLI 的 JSON 数组格式）
package key

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/weisyn/oreminer/pkg/types"
)

// 错误定义
var (
	ErrInvalidPrivateKey = errors.New("无效的私钥")
	ErrKeypairNotFound   = errors.New("密钥文件不存在")
)

// Keypair ed25519 签名密钥
type Keypair struct {
	priv ed25519.PrivateKey
	pub  types.Pubkey
}

// NewKeypairFromBytes 从 64 字节 (seed ‖ pubkey) 构造，并校验公钥与种子一致
func NewKeypairFromBytes(raw []byte) (*Keypair, error) {
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: 长度 %d", ErrInvalidPrivateKey, len(raw))
	}
	priv := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if string(priv[ed25519.SeedSize:]) != string(raw[ed25519.SeedSize:]) {
		return nil, fmt.Errorf("%w: 公钥与种子不匹配", ErrInvalidPrivateKey)
	}
	return fromPrivate(priv), nil
}

// NewKeypairFromSeed 从 32 字节种子构造
func NewKeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: 种子长度 %d", ErrInvalidPrivateKey, len(seed))
	}
	return fromPrivate(ed25519.NewKeyFromSeed(seed)), nil
}

// Generate 生成随机密钥
func Generate() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return fromPrivate(priv), nil
}

func fromPrivate(priv ed25519.PrivateKey) *Keypair {
	var pub types.Pubkey
	copy(pub[:], priv[ed25519.SeedSize:])
	return &Keypair{priv: priv, pub: pub}
}

// Pubkey 返回公钥（即矿工地址）
func (k *Keypair) Pubkey() types.Pubkey { return k.pub }

// Sign 对消息签名
func (k *Keypair) Sign(message []byte) types.Signature {
	var sig types.Signature
	copy(sig[:], ed25519.Sign(k.priv, message))
	return sig
}

// Verify 校验签名
func Verify(pub types.Pubkey, message []byte, sig types.Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), message, sig[:])
}

// LoadKeypair 读取 Solana CLI 格式的密钥文件（64 个数字组成的 JSON 数组）
func LoadKeypair(path string) (*Keypair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKeypairNotFound, path)
		}
		return nil, fmt.Errorf("读取密钥文件失败: %w", err)
	}
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return nil, fmt.Errorf("%w: 解析 %s: %v", ErrInvalidPrivateKey, path, err)
	}
	raw := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return nil, fmt.Errorf("%w: 第 %d 个字节越界", ErrInvalidPrivateKey, i)
		}
		raw[i] = byte(n)
	}
	return NewKeypairFromBytes(raw)
}

// SaveKeypair 以 Solana CLI 格式写入密钥文件（权限 0600）
func SaveKeypair(path string, k *Keypair) error {
	nums := make([]int, len(k.priv))
	for i, b := range k.priv {
		nums[i] = int(b)
	}
	data, err := json.Marshal(nums)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
