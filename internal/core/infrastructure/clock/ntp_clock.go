package clock

import (
	"sync"
	"time"

	"github.com/beevik/ntp"

	clockconfig "github.com/weisyn/oreminer/internal/config/clock"
	infraClock "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/clock"
)

// queryFn 查询 NTP 偏移
type queryFn func(server string) (time.Duration, error)

func ntpQuery(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// NTPClock 通过NTP周期性校正偏移的时钟实现
type NTPClock struct {
	mu                 sync.Mutex
	query              queryFn
	server             string
	offset             time.Duration
	lastSync           time.Time
	lastAttempt        time.Time
	syncInterval       time.Duration
	backoff            time.Duration
	backoffInitial     time.Duration
	backoffMax         time.Duration
	unhealthyThreshold time.Duration
	lastError          error
}

// NewNTPClock 创建NTP时钟
//
// 初次同步失败不致命：偏移置零，后续按退避重试。
func NewNTPClock(opts *clockconfig.ClockOptions) *NTPClock {
	return newNTPClock(opts, ntpQuery)
}

func newNTPClock(opts *clockconfig.ClockOptions, query queryFn) *NTPClock {
	c := &NTPClock{
		query:              query,
		server:             opts.NTPServer,
		syncInterval:       opts.SyncInterval,
		backoffInitial:     opts.BackoffInitial,
		backoffMax:         opts.BackoffMax,
		unhealthyThreshold: opts.OffsetThreshold,
	}
	c.mu.Lock()
	c.syncLocked()
	c.mu.Unlock()
	return c
}

func (c *NTPClock) Now() time.Time {
	c.mu.Lock()
	c.maybeSyncLocked()
	offset := c.offset
	c.mu.Unlock()
	return time.Now().Add(offset)
}

func (c *NTPClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }
func (c *NTPClock) Unix() int64                     { return c.Now().Unix() }

// Health 返回当前健康状态与关键指标
// healthy: 最近一次同步成功，且偏移量在阈值内
func (c *NTPClock) Health() (healthy bool, offset time.Duration, lastSync time.Time, lastError error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	offset, lastSync, lastError = c.offset, c.lastSync, c.lastError
	if lastError != nil {
		return false, offset, lastSync, lastError
	}
	if c.unhealthyThreshold > 0 && (offset < -c.unhealthyThreshold || offset > c.unhealthyThreshold) {
		return false, offset, lastSync, nil
	}
	return true, offset, lastSync, nil
}

func (c *NTPClock) maybeSyncLocked() {
	effective := c.syncInterval
	if c.backoff > 0 {
		effective = c.backoff
	}
	if time.Since(c.lastAttempt) < effective {
		return
	}
	c.syncLocked()
}

func (c *NTPClock) syncLocked() {
	c.lastAttempt = time.Now()
	offset, err := c.query(c.server)
	if err != nil {
		c.lastError = err
		if c.backoff == 0 {
			c.backoff = c.backoffInitial
		} else {
			c.backoff *= 2
		}
		if c.backoff > c.backoffMax {
			c.backoff = c.backoffMax
		}
		return
	}
	c.offset = offset
	c.lastSync = c.lastAttempt
	c.lastError = nil
	c.backoff = 0
}

var (
	_ infraClock.Clock          = (*NTPClock)(nil)
	_ infraClock.HealthReporter = (*NTPClock)(nil)
)
