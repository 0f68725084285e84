package testutil

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weisyn/oreminer/internal/core/chain/pda"
	"github.com/weisyn/oreminer/internal/core/chain/tx"
	"github.com/weisyn/oreminer/internal/core/infrastructure/crypto/key"
	"github.com/weisyn/oreminer/pkg/constants"
	"github.com/weisyn/oreminer/pkg/interfaces/chain"
	"github.com/weisyn/oreminer/pkg/types"
)

// NewKeypair 由固定字节生成确定性密钥
func NewKeypair(t testing.TB, seed byte) *key.Keypair {
	t.Helper()
	kp, err := key.NewKeypairFromSeed(bytes.Repeat([]byte{seed}, 32))
	require.NoError(t, err)
	return kp
}

// FakeChain 内存中的链状态
type FakeChain struct {
	mu       sync.Mutex
	accounts map[types.Pubkey][]byte

	// 注入错误
	AccountErr   error
	MultipleErr  error
	BlockhashErr error
	SendErr      error
	StatusErr    error

	// Status 为已提交交易返回的状态；nil 表示 confirmed
	Status func(sig types.Signature, polls int) *types.SignatureStatus

	Blockhash types.Blockhash
	sent      [][]byte
	polls     map[types.Signature]int
	closed    bool
}

var _ chain.Client = (*FakeChain)(nil)

// NewFakeChain 创建空链
func NewFakeChain() *FakeChain {
	return &FakeChain{
		accounts:  map[types.Pubkey][]byte{},
		polls:     map[types.Signature]int{},
		Blockhash: types.Blockhash{1, 2, 3},
	}
}

// SetAccount 写入原始账户数据，data 为 nil 时删除
func (f *FakeChain) SetAccount(addr types.Pubkey, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if data == nil {
		delete(f.accounts, addr)
		return
	}
	f.accounts[addr] = append([]byte(nil), data...)
}

func (f *FakeChain) SetConfig(c *types.Config) { f.SetAccount(pda.ConfigAddress(), c.Encode()) }

func (f *FakeChain) SetClock(c *types.Clock) { f.SetAccount(constants.SysvarClockID, c.Encode()) }

func (f *FakeChain) SetProof(p *types.Proof) {
	addr, _ := pda.ProofAddress(p.Authority)
	f.SetAccount(addr, p.Encode())
}

// SetBus 写入第 id 个 bus
func (f *FakeChain) SetBus(id int, rewards uint64) {
	b := &types.Bus{ID: uint64(id), Rewards: rewards}
	f.SetAccount(pda.BusAddresses()[id], b.Encode())
}

func (f *FakeChain) GetAccountInfo(_ context.Context, address types.Pubkey) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AccountErr != nil {
		return nil, f.AccountErr
	}
	data, ok := f.accounts[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", chain.ErrAccountNotFound, address)
	}
	return append([]byte(nil), data...), nil
}

func (f *FakeChain) GetMultipleAccounts(_ context.Context, addresses []types.Pubkey) ([][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MultipleErr != nil {
		return nil, f.MultipleErr
	}
	out := make([][]byte, len(addresses))
	for i, a := range addresses {
		if data, ok := f.accounts[a]; ok {
			out[i] = append([]byte(nil), data...)
		}
	}
	return out, nil
}

func (f *FakeChain) GetConfig(ctx context.Context) (*types.Config, error) {
	data, err := f.GetAccountInfo(ctx, pda.ConfigAddress())
	if err != nil {
		return nil, err
	}
	return types.DecodeConfig(data)
}

func (f *FakeChain) GetProof(ctx context.Context, authority types.Pubkey) (*types.Proof, error) {
	addr, _ := pda.ProofAddress(authority)
	data, err := f.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, err
	}
	return types.DecodeProof(data)
}

func (f *FakeChain) GetClock(ctx context.Context) (*types.Clock, error) {
	data, err := f.GetAccountInfo(ctx, constants.SysvarClockID)
	if err != nil {
		return nil, err
	}
	return types.DecodeClock(data)
}

func (f *FakeChain) GetLatestBlockhash(context.Context) (types.Blockhash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Blockhash, f.BlockhashErr
}

func (f *FakeChain) SendTransaction(_ context.Context, raw []byte) (types.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return types.Signature{}, f.SendErr
	}
	sigs, _, err := tx.SplitSignatures(raw)
	if err != nil {
		return types.Signature{}, err
	}
	if len(sigs) == 0 {
		return types.Signature{}, fmt.Errorf("unsigned transaction")
	}
	f.sent = append(f.sent, append([]byte(nil), raw...))
	if _, ok := f.polls[sigs[0]]; !ok {
		f.polls[sigs[0]] = 0
	}
	return sigs[0], nil
}

func (f *FakeChain) GetSignatureStatuses(_ context.Context, signatures []types.Signature) ([]*types.SignatureStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StatusErr != nil {
		return nil, f.StatusErr
	}
	out := make([]*types.SignatureStatus, len(signatures))
	for i, s := range signatures {
		n, ok := f.polls[s]
		if !ok {
			continue
		}
		n++
		f.polls[s] = n
		if f.Status != nil {
			out[i] = f.Status(s, n)
			continue
		}
		out[i] = &types.SignatureStatus{Slot: 1, ConfirmationStatus: types.CommitmentConfirmed}
	}
	return out, nil
}

func (f *FakeChain) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// Sent 已提交的原始交易
func (f *FakeChain) Sent() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.sent...)
}

// SentMessages 已提交交易的消息部分
func (f *FakeChain) SentMessages(t testing.TB) [][]byte {
	t.Helper()
	var out [][]byte
	for _, raw := range f.Sent() {
		_, msg, err := tx.SplitSignatures(raw)
		require.NoError(t, err)
		out = append(out, msg)
	}
	return out
}
