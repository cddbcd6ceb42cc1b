package audio

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lectern_audio_operations_total",
		Help: "Asset pipeline operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	uploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lectern_audio_upload_bytes",
		Help:    "Size of audio payloads written to the asset store.",
		Buckets: prometheus.ExponentialBuckets(64*1024, 4, 8),
	})
)
