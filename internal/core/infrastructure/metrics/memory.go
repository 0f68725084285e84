package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/pbnjay/memory"
	"github.com/prometheus/client_golang/prometheus"

	logInterface "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
)

// MemorySampler 周期性采样堆内存，超过物理内存比例时告警
//
// 搜索工作区按线程分配，内存压力主要来自工作线程数。
type MemorySampler struct {
	interval  time.Duration
	warnRatio float64
	total     uint64
	logger    logInterface.Logger

	heapInuse prometheus.Gauge
	sysBytes  prometheus.Gauge
}

// NewMemorySampler 创建采样器并注册指标
func NewMemorySampler(reg prometheus.Registerer, logger logInterface.Logger, interval time.Duration) (*MemorySampler, error) {
	s := &MemorySampler{
		interval:  interval,
		warnRatio: 0.9,
		total:     memory.TotalMemory(),
		logger:    logger,
		heapInuse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "heap_inuse_bytes",
			Help: "Go heap in use",
		}),
		sysBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "system_memory_bytes",
			Help: "Total physical memory reported by the OS",
		}),
	}
	if err := reg.Register(s.heapInuse); err != nil {
		return nil, err
	}
	if err := reg.Register(s.sysBytes); err != nil {
		return nil, err
	}
	s.sysBytes.Set(float64(s.total))
	return s, nil
}

// SampleOnce 采样一次，返回当前堆使用量
func (s *MemorySampler) SampleOnce() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.heapInuse.Set(float64(ms.HeapInuse))
	if s.total > 0 && float64(ms.HeapInuse) > s.warnRatio*float64(s.total) && s.logger != nil {
		s.logger.Warnf("堆内存接近物理内存上限: heap_inuse=%d total=%d", ms.HeapInuse, s.total)
	}
	return ms.HeapInuse
}

// Start 按间隔采样直到 ctx 取消
func (s *MemorySampler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SampleOnce()
		}
	}
}
