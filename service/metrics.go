package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	admittedImages prometheus.Counter
	rejectedImages *prometheus.CounterVec
	inflightProbes prometheus.Gauge
	probeDuration  prometheus.Histogram
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		admittedImages: factory.NewCounter(prometheus.CounterOpts{
			Name: "image_guard_admitted_images_total",
			Help: "Count of images that passed all validation stages",
		}),
		rejectedImages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "image_guard_rejected_images_total",
			Help: "Count of rejected images by validation stage",
		}, []string{"stage"}),
		inflightProbes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "image_guard_inflight_probes",
			Help: "Count of probes holding a validation slot",
		}),
		probeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "image_guard_probe_duration_seconds",
			Help:    "Duration of decode and header probe",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) ObserveAdmission() {
	m.admittedImages.Inc()
}

func (m *Metrics) ObserveRejection(stage string) {
	m.rejectedImages.WithLabelValues(stage).Inc()
}

func (m *Metrics) ProbeStarted() {
	m.inflightProbes.Inc()
}

func (m *Metrics) ProbeFinished(startedAt time.Time) {
	m.inflightProbes.Dec()
	m.probeDuration.Observe(time.Since(startedAt).Seconds())
}
