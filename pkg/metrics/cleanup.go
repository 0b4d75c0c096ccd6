package metrics

import "github.com/prometheus/client_golang/prometheus"

// CleanupMetrics tracks background image deletions.
type CleanupMetrics struct {
	deleted prometheus.Counter
	failed  prometheus.Counter
	retries prometheus.Counter
	dropped prometheus.Counter
}

// NewCleanupMetrics registers the asset cleanup counters on the provided registerer.
func NewCleanupMetrics(reg prometheus.Registerer) *CleanupMetrics {
	if reg == nil {
		return &CleanupMetrics{}
	}
	m := &CleanupMetrics{
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asset_cleanup_deleted_total",
			Help: "Image files removed by the cleaner.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asset_cleanup_failed_total",
			Help: "Image deletions abandoned after exhausting retries.",
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asset_cleanup_retries_total",
			Help: "Retried image deletion attempts.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asset_cleanup_dropped_total",
			Help: "Image deletions that could not be scheduled.",
		}),
	}
	reg.MustRegister(m.deleted, m.failed, m.retries, m.dropped)
	return m
}

func (m *CleanupMetrics) IncDeleted() {
	if m == nil || m.deleted == nil {
		return
	}
	m.deleted.Inc()
}

func (m *CleanupMetrics) IncFailed() {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.Inc()
}

func (m *CleanupMetrics) IncRetry() {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.Inc()
}

func (m *CleanupMetrics) IncDropped() {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.Inc()
}
