package submitter

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/oreminer/internal/core/chain/tx"
	minertest "github.com/weisyn/oreminer/internal/core/miner/testutil"
	"github.com/weisyn/oreminer/pkg/constants"
	"github.com/weisyn/oreminer/pkg/types"
)

var fastOpts = Options{ConfirmAttempts: 5, ConfirmInterval: time.Millisecond}

func TestBuildTransaction(t *testing.T) {
	kp := minertest.NewKeypair(t, 1)
	auth := tx.Auth(types.Pubkey{7})

	t.Run("无优先费", func(t *testing.T) {
		s := New(minertest.NewFakeChain(), kp, fastOpts, nil)
		transaction, err := s.BuildTransaction([]tx.Instruction{auth}, 600_000, types.Blockhash{1})
		require.NoError(t, err)

		ixs := transaction.Message.Instructions
		require.Len(t, ixs, 2)
		keys := transaction.Message.AccountKeys
		assert.Equal(t, constants.ComputeBudgetProgramID, keys[ixs[0].ProgramIDIndex])
		assert.Equal(t, byte(2), ixs[0].Data[0])
		assert.Equal(t, uint32(600_000), binary.LittleEndian.Uint32(ixs[0].Data[1:]))
		assert.Equal(t, constants.NoopProgramID, keys[ixs[1].ProgramIDIndex])
	})

	t.Run("附带优先费", func(t *testing.T) {
		opts := fastOpts
		opts.PriorityFee = 5000
		s := New(minertest.NewFakeChain(), kp, opts, nil)
		transaction, err := s.BuildTransaction([]tx.Instruction{auth}, 500_000, types.Blockhash{1})
		require.NoError(t, err)

		ixs := transaction.Message.Instructions
		require.Len(t, ixs, 3)
		assert.Equal(t, byte(3), ixs[1].Data[0])
		assert.Equal(t, uint64(5000), binary.LittleEndian.Uint64(ixs[1].Data[1:]))
	})
}

func TestSubmitConfirmed(t *testing.T) {
	fc := minertest.NewFakeChain()
	kp := minertest.NewKeypair(t, 2)
	s := New(fc, kp, fastOpts, minertest.NopLogger())

	sig, err := s.Submit(context.Background(), []tx.Instruction{tx.Auth(types.Pubkey{1})}, 500_000)
	require.NoError(t, err)
	assert.False(t, sig.IsZero())
	require.Len(t, fc.Sent(), 1)

	sigs, _, err := tx.SplitSignatures(fc.Sent()[0])
	require.NoError(t, err)
	assert.Equal(t, sig, sigs[0])
}

func TestSubmitResendsUntilSeen(t *testing.T) {
	fc := minertest.NewFakeChain()
	fc.Status = func(_ types.Signature, polls int) *types.SignatureStatus {
		if polls < 3 {
			return nil
		}
		return &types.SignatureStatus{ConfirmationStatus: types.CommitmentFinalized}
	}
	s := New(fc, minertest.NewKeypair(t, 3), fastOpts, minertest.NopLogger())

	_, err := s.Submit(context.Background(), []tx.Instruction{tx.Auth(types.Pubkey{1})}, 500_000)
	require.NoError(t, err)
	assert.Len(t, fc.Sent(), 3, "首次提交 + 两次重发")
}

func TestSubmitFailures(t *testing.T) {
	ix := []tx.Instruction{tx.Auth(types.Pubkey{1})}

	t.Run("执行失败", func(t *testing.T) {
		fc := minertest.NewFakeChain()
		fc.Status = func(types.Signature, int) *types.SignatureStatus {
			return &types.SignatureStatus{Err: json.RawMessage(`{"InstructionError":[2,{"Custom":1}]}`), ConfirmationStatus: types.CommitmentConfirmed}
		}
		sig, err := New(fc, minertest.NewKeypair(t, 4), fastOpts, nil).Submit(context.Background(), ix, 500_000)
		assert.ErrorIs(t, err, ErrTransactionFailed)
		assert.Contains(t, err.Error(), "InstructionError")
		assert.False(t, sig.IsZero())
	})

	t.Run("始终未确认", func(t *testing.T) {
		fc := minertest.NewFakeChain()
		fc.Status = func(types.Signature, int) *types.SignatureStatus {
			return &types.SignatureStatus{ConfirmationStatus: types.CommitmentProcessed}
		}
		_, err := New(fc, minertest.NewKeypair(t, 4), fastOpts, nil).Submit(context.Background(), ix, 500_000)
		assert.ErrorIs(t, err, ErrNotConfirmed)
	})

	t.Run("状态查询失败", func(t *testing.T) {
		fc := minertest.NewFakeChain()
		fc.StatusErr = errors.New("timeout")
		_, err := New(fc, minertest.NewKeypair(t, 4), fastOpts, nil).Submit(context.Background(), ix, 500_000)
		assert.ErrorIs(t, err, ErrNotConfirmed)
	})

	t.Run("提交失败", func(t *testing.T) {
		fc := minertest.NewFakeChain()
		fc.SendErr = errors.New("blockhash not found")
		sig, err := New(fc, minertest.NewKeypair(t, 4), fastOpts, nil).Submit(context.Background(), ix, 500_000)
		assert.Error(t, err)
		assert.True(t, sig.IsZero())
	})

	t.Run("blockhash 失败", func(t *testing.T) {
		fc := minertest.NewFakeChain()
		fc.BlockhashErr = errors.New("node is behind")
		_, err := New(fc, minertest.NewKeypair(t, 4), fastOpts, nil).Submit(context.Background(), ix, 500_000)
		assert.Error(t, err)
		assert.Empty(t, fc.Sent())
	})

	t.Run("取消", func(t *testing.T) {
		fc := minertest.NewFakeChain()
		fc.Status = func(types.Signature, int) *types.SignatureStatus {
			return &types.SignatureStatus{ConfirmationStatus: types.CommitmentProcessed}
		}
		ctx, cancel := context.WithCancel(context.Background())
		opts := Options{ConfirmAttempts: 1000, ConfirmInterval: time.Hour}
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		_, err := New(fc, minertest.NewKeypair(t, 4), opts, nil).Submit(ctx, ix, 500_000)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
