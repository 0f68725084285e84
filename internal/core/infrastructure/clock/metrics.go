package clock

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	infraClock "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/clock"
)

// healthCollector 每次采集时读取一次时钟健康快照
type healthCollector struct {
	source infraClock.HealthReporter
	now    func() time.Time

	offset    *prometheus.Desc
	staleness *prometheus.Desc
	healthy   *prometheus.Desc
}

func newHealthCollector(source infraClock.HealthReporter, server string) *healthCollector {
	labels := prometheus.Labels{"server": server}
	return &healthCollector{
		source: source,
		now:    time.Now,
		offset: prometheus.NewDesc("ore_clock_offset_seconds",
			"NTP offset applied to local time (positive: local clock behind)", nil, labels),
		staleness: prometheus.NewDesc("ore_clock_sync_age_seconds",
			"Seconds since the last successful NTP sync, -1 before the first one", nil, labels),
		healthy: prometheus.NewDesc("ore_clock_healthy",
			"1 when the last NTP sync succeeded", nil, labels),
	}
}

func (c *healthCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.offset
	ch <- c.staleness
	ch <- c.healthy
}

func (c *healthCollector) Collect(ch chan<- prometheus.Metric) {
	ok, offset, lastSync, _ := c.source.Health()

	age := -1.0
	if !lastSync.IsZero() {
		age = c.now().Sub(lastSync).Seconds()
	}
	up := 0.0
	if ok {
		up = 1
	}
	ch <- prometheus.MustNewConstMetric(c.offset, prometheus.GaugeValue, offset.Seconds())
	ch <- prometheus.MustNewConstMetric(c.staleness, prometheus.GaugeValue, age)
	ch <- prometheus.MustNewConstMetric(c.healthy, prometheus.GaugeValue, up)
}

// RegisterClockMetrics 把 NTP 时钟的健康快照注册为 ore_clock_* 指标
func RegisterClockMetrics(reg prometheus.Registerer, source infraClock.HealthReporter, server string) error {
	return reg.Register(newHealthCollector(source, server))
}
