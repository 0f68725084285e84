// Package badger 提供基于BadgerDB的轮次历史存储
package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/golang/snappy"

	badgerconfig "github.com/weisyn/oreminer/internal/config/storage/badger"
	log "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/oreminer/pkg/types"
)

// 键布局：前缀 | 大端序 unix-nano | 轮次 ID
var roundPrefix = []byte("round/")

// pruneEvery 每写入 N 条检查一次保留上限
const pruneEvery = 128

// ErrClosed 存储已关闭
var ErrClosed = errors.New("history store closed")

// Store 基于 BadgerDB 的历史存储
type Store struct {
	db      *badgerdb.DB
	options *badgerconfig.BadgerOptions
	logger  log.Logger

	closing atomic.Bool
	writeWg sync.WaitGroup
	writes  atomic.Uint64
}

var _ storage.HistoryStore = (*Store)(nil)

// New 打开（或创建）历史数据库
func New(config *badgerconfig.Config, logger log.Logger) (*Store, error) {
	opts := config.GetOptions()
	if err := os.MkdirAll(opts.Path, 0o700); err != nil {
		return nil, fmt.Errorf("无法创建BadgerDB数据目录 %s: %w", opts.Path, err)
	}

	dbOpts := badgerdb.DefaultOptions(opts.Path)
	dbOpts.SyncWrites = opts.SyncWrites
	dbOpts.MemTableSize = opts.MemTableSize
	dbOpts.ValueThreshold = 1 << 10
	dbOpts.ValueLogFileSize = 64 << 20
	dbOpts.BlockCacheSize = 8 << 20
	dbOpts.IndexCacheSize = 8 << 20
	dbOpts.NumMemtables = 2
	dbOpts.NumCompactors = 2
	dbOpts.Logger = newBadgerLogger(logger)

	db, err := badgerdb.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("打开BadgerDB失败: %w", err)
	}
	if logger != nil {
		logger.Infof("轮次历史存储已打开: %s", opts.Path)
	}

	s := &Store{db: db, options: opts, logger: logger}
	if err := s.prune(); err != nil && logger != nil {
		logger.Warnf("清理历史记录失败: %v", err)
	}
	return s, nil
}

// roundKey 生成排序键
func roundKey(r *types.RoundRecord) []byte {
	key := make([]byte, 0, len(roundPrefix)+8+len(r.ID))
	key = append(key, roundPrefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(r.StartedAt.UnixNano()))
	return append(key, r.ID...)
}

func encodeRecord(r *types.RoundRecord) ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, raw), nil
}

func decodeRecord(val []byte) (*types.RoundRecord, error) {
	raw, err := snappy.Decode(nil, val)
	if err != nil {
		return nil, fmt.Errorf("解压历史记录失败: %w", err)
	}
	var r types.RoundRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("解析历史记录失败: %w", err)
	}
	return &r, nil
}

// Save 保存一条轮次记录
func (s *Store) Save(ctx context.Context, record *types.RoundRecord) error {
	if record == nil {
		return nil
	}
	if s.closing.Load() {
		return ErrClosed
	}
	s.writeWg.Add(1)
	defer s.writeWg.Done()

	if err := ctx.Err(); err != nil {
		return err
	}
	val, err := encodeRecord(record)
	if err != nil {
		return fmt.Errorf("编码历史记录失败: %w", err)
	}
	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(roundKey(record), val)
	}); err != nil {
		return fmt.Errorf("写入历史记录失败: %w", err)
	}

	if s.writes.Add(1)%pruneEvery == 0 {
		if err := s.prune(); err != nil && s.logger != nil {
			s.logger.Warnf("清理历史记录失败: %v", err)
		}
	}
	return nil
}

// List 按时间倒序返回最近 limit 条记录
func (s *Store) List(ctx context.Context, limit int) ([]*types.RoundRecord, error) {
	if s.closing.Load() {
		return nil, ErrClosed
	}
	var out []*types.RoundRecord
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = roundPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// 反向迭代需要从前缀之后的最大键开始
		seek := append(append([]byte(nil), roundPrefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(roundPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				r, err := decodeRecord(val)
				if err != nil {
					return err
				}
				out = append(out, r)
				return nil
			})
			if err != nil {
				return err
			}
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// prune 删除超出保留上限的最旧记录
func (s *Store) prune() error {
	max := s.options.MaxRecords
	if max <= 0 {
		return nil
	}
	var stale [][]byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = true
		opts.Prefix = roundPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		n := 0
		seek := append(append([]byte(nil), roundPrefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(roundPrefix); it.Next() {
			n++
			if n > max {
				stale = append(stale, it.Item().KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil || len(stale) == 0 {
		return err
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range stale {
		if err := wb.Delete(k); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Close 等待进行中的写入完成后关闭数据库
func (s *Store) Close() error {
	if !s.closing.CompareAndSwap(false, true) {
		return nil
	}
	s.writeWg.Wait()
	return s.db.Close()
}

// badgerLogger 将 badger 内部日志转发到应用日志（info/debug 降级为 debug）
type badgerLogger struct {
	logger log.Logger
}

func newBadgerLogger(logger log.Logger) badgerdb.Logger {
	return &badgerLogger{logger: logger}
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	if l.logger != nil {
		l.logger.Errorf("[badger] "+f, v...)
	}
}

func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	if l.logger != nil {
		l.logger.Warnf("[badger] "+f, v...)
	}
}

func (l *badgerLogger) Infof(f string, v ...interface{}) {
	if l.logger != nil {
		l.logger.Debugf("[badger] "+f, v...)
	}
}

func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	if l.logger != nil {
		l.logger.Debugf("[badger] "+f, v...)
	}
}
