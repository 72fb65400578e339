package storage

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the gateway's size and health signals. All metrics are
// registered under the dentora_storage namespace.
type Metrics struct {
	DocumentBytes    prometheus.Gauge
	PercentOfLimit   prometheus.Gauge
	Saves            prometheus.Counter
	CapacityRefusals prometheus.Counter
	QuotaFailures    prometheus.Counter
	NearCapacity     prometheus.Gauge
}

// NewMetrics builds and registers the storage metrics on reg. A nil
// registerer yields metrics that are collected but never exported, which
// is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocumentBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dentora", Subsystem: "storage",
			Name: "document_bytes", Help: "Serialized size of the persisted document.",
		}),
		PercentOfLimit: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dentora", Subsystem: "storage",
			Name: "percent_of_limit", Help: "Document size as a percentage of the assumed 10 MB slot limit.",
		}),
		Saves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dentora", Subsystem: "storage",
			Name: "saves_total", Help: "Successful document writes.",
		}),
		CapacityRefusals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dentora", Subsystem: "storage",
			Name: "capacity_refusals_total", Help: "Writes refused because the document crossed the hard size ceiling.",
		}),
		QuotaFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dentora", Subsystem: "storage",
			Name: "quota_failures_total", Help: "Writes rejected by the host storage itself.",
		}),
		NearCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dentora", Subsystem: "storage",
			Name: "near_capacity", Help: "1 when the document is above the warn threshold.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.DocumentBytes, m.PercentOfLimit, m.Saves,
			m.CapacityRefusals, m.QuotaFailures, m.NearCapacity)
	}
	return m
}

func (m *Metrics) observeSize(bytes int, nearLimit bool) {
	if m == nil {
		return
	}
	m.DocumentBytes.Set(float64(bytes))
	m.PercentOfLimit.Set(float64(bytes) / float64(assumedLimitBytes) * 100)
	if nearLimit {
		m.NearCapacity.Set(1)
	} else {
		m.NearCapacity.Set(0)
	}
}
