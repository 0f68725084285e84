package types

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidAccountData 账户数据长度或类型标识不匹配
var ErrInvalidAccountData = errors.New("invalid account data")

// AccountDiscriminator ORE 账户类型标识（账户数据首字节，后跟 7 字节填充）
type AccountDiscriminator uint8

const (
	BusAccount    AccountDiscriminator = 100
	ConfigAccount AccountDiscriminator = 101
	ProofAccount  AccountDiscriminator = 102
)

const discriminatorSize = 8

// Bus 奖励分发账户
type Bus struct {
	ID                 uint64 `json:"id"`
	Rewards            uint64 `json:"rewards"`
	TheoreticalRewards uint64 `json:"theoretical_rewards"`
	TopBalance         uint64 `json:"top_balance"`
}

// Config 协议级参数
type Config struct {
	BaseRewardRate uint64 `json:"base_reward_rate"`
	LastResetAt    int64  `json:"last_reset_at"`
	MinDifficulty  uint64 `json:"min_difficulty"`
	TopBalance     uint64 `json:"top_balance"`
}

// Proof 矿工的协议状态
type Proof struct {
	Authority    Pubkey    `json:"authority"`
	Balance      uint64    `json:"balance"`
	Challenge    Challenge `json:"-"`
	LastHash     [32]byte  `json:"-"`
	LastHashAt   int64     `json:"last_hash_at"`
	LastStakeAt  int64     `json:"last_stake_at"`
	Miner        Pubkey    `json:"miner"`
	TotalHashes  uint64    `json:"total_hashes"`
	TotalRewards uint64    `json:"total_rewards"`
}

// Clock Solana clock sysvar
type Clock struct {
	Slot                uint64 `json:"slot"`
	EpochStartTimestamp int64  `json:"epoch_start_timestamp"`
	Epoch               uint64 `json:"epoch"`
	LeaderScheduleEpoch uint64 `json:"leader_schedule_epoch"`
	UnixTimestamp       int64  `json:"unix_timestamp"`
}

const (
	busDataSize    = discriminatorSize + 4*8
	configDataSize = discriminatorSize + 4*8
	proofDataSize  = discriminatorSize + 32 + 8 + 32 + 32 + 8 + 8 + 32 + 8 + 8
	clockDataSize  = 5 * 8
)

// accountReader 顺序读取小端序字段
type accountReader struct {
	data []byte
	off  int
}

func (r *accountReader) u64() uint64 {
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

func (r *accountReader) i64() int64 { return int64(r.u64()) }

func (r *accountReader) bytes32() (out [32]byte) {
	copy(out[:], r.data[r.off:r.off+32])
	r.off += 32
	return out
}

func checkAccount(data []byte, want AccountDiscriminator, size int) error {
	if len(data) < size {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidAccountData, size, len(data))
	}
	if AccountDiscriminator(data[0]) != want {
		return fmt.Errorf("%w: discriminator %d, want %d", ErrInvalidAccountData, data[0], want)
	}
	return nil
}

// DecodeBus 解析 Bus 账户数据
func DecodeBus(data []byte) (*Bus, error) {
	if err := checkAccount(data, BusAccount, busDataSize); err != nil {
		return nil, err
	}
	r := &accountReader{data: data, off: discriminatorSize}
	return &Bus{
		ID:                 r.u64(),
		Rewards:            r.u64(),
		TheoreticalRewards: r.u64(),
		TopBalance:         r.u64(),
	}, nil
}

// DecodeConfig 解析 Config 账户数据
func DecodeConfig(data []byte) (*Config, error) {
	if err := checkAccount(data, ConfigAccount, configDataSize); err != nil {
		return nil, err
	}
	r := &accountReader{data: data, off: discriminatorSize}
	return &Config{
		BaseRewardRate: r.u64(),
		LastResetAt:    r.i64(),
		MinDifficulty:  r.u64(),
		TopBalance:     r.u64(),
	}, nil
}

// DecodeProof 解析 Proof 账户数据
func DecodeProof(data []byte) (*Proof, error) {
	if err := checkAccount(data, ProofAccount, proofDataSize); err != nil {
		return nil, err
	}
	r := &accountReader{data: data, off: discriminatorSize}
	p := &Proof{}
	p.Authority = Pubkey(r.bytes32())
	p.Balance = r.u64()
	p.Challenge = Challenge(r.bytes32())
	p.LastHash = r.bytes32()
	p.LastHashAt = r.i64()
	p.LastStakeAt = r.i64()
	p.Miner = Pubkey(r.bytes32())
	p.TotalHashes = r.u64()
	p.TotalRewards = r.u64()
	return p, nil
}

// DecodeClock 解析 clock sysvar 数据
func DecodeClock(data []byte) (*Clock, error) {
	if len(data) < clockDataSize {
		return nil, fmt.Errorf("%w: clock sysvar %d bytes", ErrInvalidAccountData, len(data))
	}
	r := &accountReader{data: data}
	return &Clock{
		Slot:                r.u64(),
		EpochStartTimestamp: r.i64(),
		Epoch:               r.u64(),
		LeaderScheduleEpoch: r.u64(),
		UnixTimestamp:       r.i64(),
	}, nil
}

// ==================== 编码（测试与本地模拟使用） ====================

type accountWriter struct{ buf []byte }

func newAccountWriter(d AccountDiscriminator, size int) *accountWriter {
	w := &accountWriter{buf: make([]byte, discriminatorSize, size)}
	w.buf[0] = byte(d)
	return w
}

func (w *accountWriter) u64(v uint64)   { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
func (w *accountWriter) b32(v [32]byte) { w.buf = append(w.buf, v[:]...) }

// Encode 编码 Bus 账户数据
func (b *Bus) Encode() []byte {
	w := newAccountWriter(BusAccount, busDataSize)
	w.u64(b.ID)
	w.u64(b.Rewards)
	w.u64(b.TheoreticalRewards)
	w.u64(b.TopBalance)
	return w.buf
}

// Encode 编码 Config 账户数据
func (c *Config) Encode() []byte {
	w := newAccountWriter(ConfigAccount, configDataSize)
	w.u64(c.BaseRewardRate)
	w.u64(uint64(c.LastResetAt))
	w.u64(c.MinDifficulty)
	w.u64(c.TopBalance)
	return w.buf
}

// Encode 编码 Proof 账户数据
func (p *Proof) Encode() []byte {
	w := newAccountWriter(ProofAccount, proofDataSize)
	w.b32(p.Authority)
	w.u64(p.Balance)
	w.b32(p.Challenge)
	w.b32(p.LastHash)
	w.u64(uint64(p.LastHashAt))
	w.u64(uint64(p.LastStakeAt))
	w.b32(p.Miner)
	w.u64(p.TotalHashes)
	w.u64(p.TotalRewards)
	return w.buf
}

// Encode 编码 clock sysvar 数据
func (c *Clock) Encode() []byte {
	buf := make([]byte, 0, clockDataSize)
	buf = binary.LittleEndian.AppendUint64(buf, c.Slot)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(c.EpochStartTimestamp))
	buf = binary.LittleEndian.AppendUint64(buf, c.Epoch)
	buf = binary.LittleEndian.AppendUint64(buf, c.LeaderScheduleEpoch)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(c.UnixTimestamp))
	return buf
}
