// Package submitter 签名、提交挖矿交易并轮询确认
package submitter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/weisyn/oreminer/internal/core/chain/tx"
	"github.com/weisyn/oreminer/pkg/interfaces/chain"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/types"
)

var (
	// ErrNotConfirmed 轮询次数用尽仍未确认
	ErrNotConfirmed = errors.New("transaction not confirmed")

	// ErrTransactionFailed 交易上链但执行失败
	ErrTransactionFailed = errors.New("transaction failed")
)

// Options 提交参数
type Options struct {
	// PriorityFee micro-lamports / CU，0 表示不附带优先费指令
	PriorityFee uint64

	ConfirmAttempts int
	ConfirmInterval time.Duration
}

// Submitter 交易提交器
type Submitter struct {
	client chain.TxSender
	signer tx.Signer
	opts   Options
	logger log.Logger
}

// New 创建提交器
func New(client chain.TxSender, signer tx.Signer, opts Options, logger log.Logger) *Submitter {
	if opts.ConfirmAttempts <= 0 {
		opts.ConfirmAttempts = 1
	}
	if opts.ConfirmInterval <= 0 {
		opts.ConfirmInterval = time.Second
	}
	return &Submitter{client: client, signer: signer, opts: opts, logger: logger}
}

// BuildTransaction 在指令前插入计算预算指令并签名
func (s *Submitter) BuildTransaction(ixs []tx.Instruction, computeUnits uint32, blockhash types.Blockhash) (*tx.Transaction, error) {
	all := make([]tx.Instruction, 0, len(ixs)+2)
	all = append(all, tx.SetComputeUnitLimit(computeUnits))
	if s.opts.PriorityFee > 0 {
		all = append(all, tx.SetComputeUnitPrice(s.opts.PriorityFee))
	}
	all = append(all, ixs...)
	return tx.NewTransaction(all, blockhash, s.signer)
}

// Submit 提交并等待确认，返回交易签名
//
// 未查询到状态时重发同一笔交易（签名相同，重复提交无副作用）。
// 确认失败时同样返回签名，便于日志追踪。
func (s *Submitter) Submit(ctx context.Context, ixs []tx.Instruction, computeUnits uint32) (types.Signature, error) {
	blockhash, err := s.client.GetLatestBlockhash(ctx)
	if err != nil {
		return types.Signature{}, fmt.Errorf("获取 blockhash: %w", err)
	}
	transaction, err := s.BuildTransaction(ixs, computeUnits, blockhash)
	if err != nil {
		return types.Signature{}, fmt.Errorf("构建交易: %w", err)
	}
	raw, err := transaction.Serialize()
	if err != nil {
		return types.Signature{}, err
	}

	sig, err := s.client.SendTransaction(ctx, raw)
	if err != nil {
		return types.Signature{}, fmt.Errorf("提交交易: %w", err)
	}
	if s.logger != nil {
		s.logger.Debugf("交易已提交: %s", sig)
	}
	return sig, s.confirm(ctx, sig, raw)
}

func (s *Submitter) confirm(ctx context.Context, sig types.Signature, raw []byte) error {
	ticker := time.NewTicker(s.opts.ConfirmInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= s.opts.ConfirmAttempts; attempt++ {
		statuses, err := s.client.GetSignatureStatuses(ctx, []types.Signature{sig})
		switch {
		case err != nil:
			if s.logger != nil {
				s.logger.Warnf("查询交易状态失败 (%d/%d): %v", attempt, s.opts.ConfirmAttempts, err)
			}
		case len(statuses) > 0 && statuses[0] != nil:
			st := statuses[0]
			if st.Failed() {
				return fmt.Errorf("%w: %s", ErrTransactionFailed, string(st.Err))
			}
			if st.Confirmed() {
				return nil
			}
		default:
			if _, err := s.client.SendTransaction(ctx, raw); err != nil && s.logger != nil {
				s.logger.Debugf("重发交易失败: %v", err)
			}
		}

		if attempt == s.opts.ConfirmAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return fmt.Errorf("%w after %d attempts: %s", ErrNotConfirmed, s.opts.ConfirmAttempts, sig)
}
