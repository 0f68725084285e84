package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/weisyn/oreminer/pkg/types"
)

const namespace = "ore"

// MinerMetrics 挖矿轮次相关指标
type MinerMetrics struct {
	hashRate      prometheus.Gauge
	bestDiff      prometheus.Gauge
	minDiff       prometheus.Gauge
	workers       prometheus.Gauge
	balance       prometheus.Gauge
	hashes        prometheus.Counter
	rounds        *prometheus.CounterVec
	submitLatency prometheus.Histogram
	busRewards    *prometheus.GaugeVec
}

// NewMinerMetrics 创建并注册挖矿指标
func NewMinerMetrics(reg prometheus.Registerer) (*MinerMetrics, error) {
	m := &MinerMetrics{
		hashRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "hash_rate",
			Help: "Hashes per second over the last completed search",
		}),
		bestDiff: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "best_difficulty",
			Help: "Best difficulty found in the last completed search",
		}),
		minDiff: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "min_difficulty",
			Help: "Protocol minimum difficulty seen in the last round",
		}),
		workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "workers",
			Help: "Number of search workers used in the last round",
		}),
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "proof_balance_grains",
			Help: "Staked balance of the proof account in base units",
		}),
		hashes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "hashes_total",
			Help: "Total nonces evaluated",
		}),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rounds_total",
			Help: "Mining rounds by final status",
		}, []string{"status"}),
		submitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "submit_seconds",
			Help:    "Time from solution to confirmation",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}),
		busRewards: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "bus_rewards_grains",
			Help: "Remaining rewards of the selected bus",
		}, []string{"bus"}),
	}
	for _, c := range []prometheus.Collector{
		m.hashRate, m.bestDiff, m.minDiff, m.workers, m.balance,
		m.hashes, m.rounds, m.submitLatency, m.busRewards,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveSearch 记录一次搜索结果
func (m *MinerMetrics) ObserveSearch(r *types.RoundRecord) {
	if m == nil || r == nil {
		return
	}
	m.hashRate.Set(r.HashRate)
	m.bestDiff.Set(float64(r.Difficulty))
	m.minDiff.Set(float64(r.MinDifficulty))
	m.workers.Set(float64(r.Workers))
	m.balance.Set(float64(r.Balance))
	m.hashes.Add(float64(r.Hashes))
}

// ObserveBus 记录 bus 的剩余奖励
func (m *MinerMetrics) ObserveBus(id uint64, rewards uint64) {
	if m == nil {
		return
	}
	m.busRewards.WithLabelValues(busLabel(id)).Set(float64(rewards))
}

// ObserveRound 记录轮次结束状态；确认成功时同时记录提交耗时
func (m *MinerMetrics) ObserveRound(r *types.RoundRecord, submitSeconds float64) {
	if m == nil || r == nil {
		return
	}
	m.rounds.WithLabelValues(string(r.Status)).Inc()
	if r.Status == types.RoundStatusConfirmed && submitSeconds > 0 {
		m.submitLatency.Observe(submitSeconds)
	}
}

func busLabel(id uint64) string { return strconv.FormatUint(id, 10) }

// NewRegistry 创建包含进程与 Go 运行时采集器的注册表
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
