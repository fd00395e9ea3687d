package buffer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes pool and reclaimer statistics as Prometheus metrics.
// Register it with any prometheus.Registerer:
//
//	prometheus.MustRegister(buffer.NewCollector(pool, reclaimer))
type Collector struct {
	pool      *Pool
	reclaimer *Reclaimer

	allocatedBytes *prometheus.Desc
	activeBuffers  *prometheus.Desc
	pendingRelease *prometheus.Desc
	reclaimedTotal *prometheus.Desc
	leakedTotal    *prometheus.Desc
	epochsTotal    *prometheus.Desc
}

// NewCollector creates a collector over pool. The reclaimer may be nil when
// only allocation metrics are wanted.
func NewCollector(pool *Pool, reclaimer *Reclaimer) *Collector {
	return &Collector{
		pool:      pool,
		reclaimer: reclaimer,
		allocatedBytes: prometheus.NewDesc(
			"plugkit_buffer_allocated_bytes",
			"Bytes held by live shared buffers.",
			nil, nil),
		activeBuffers: prometheus.NewDesc(
			"plugkit_buffer_active",
			"Number of live shared buffers.",
			nil, nil),
		pendingRelease: prometheus.NewDesc(
			"plugkit_buffer_pending_release",
			"Handles waiting for the next reclamation epoch.",
			nil, nil),
		reclaimedTotal: prometheus.NewDesc(
			"plugkit_buffer_reclaimed_total",
			"Buffers freed by the reclaimer.",
			nil, nil),
		leakedTotal: prometheus.NewDesc(
			"plugkit_buffer_leaked_total",
			"Buffers leaked after reclaim invariant violations.",
			nil, nil),
		epochsTotal: prometheus.NewDesc(
			"plugkit_buffer_reclaim_epochs_total",
			"Completed reclamation epochs.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allocatedBytes
	ch <- c.activeBuffers
	ch <- c.pendingRelease
	if c.reclaimer != nil {
		ch <- c.reclaimedTotal
		ch <- c.leakedTotal
		ch <- c.epochsTotal
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.allocatedBytes,
		prometheus.GaugeValue, float64(c.pool.AllocatedBytes()))
	ch <- prometheus.MustNewConstMetric(c.activeBuffers,
		prometheus.GaugeValue, float64(c.pool.Active()))
	ch <- prometheus.MustNewConstMetric(c.pendingRelease,
		prometheus.GaugeValue, float64(c.pool.PendingReleases()))

	if c.reclaimer != nil {
		ch <- prometheus.MustNewConstMetric(c.reclaimedTotal,
			prometheus.CounterValue, float64(c.reclaimer.Reclaimed()))
		ch <- prometheus.MustNewConstMetric(c.leakedTotal,
			prometheus.CounterValue, float64(c.reclaimer.Leaked()))
		ch <- prometheus.MustNewConstMetric(c.epochsTotal,
			prometheus.CounterValue, float64(c.reclaimer.Epochs()))
	}
}
