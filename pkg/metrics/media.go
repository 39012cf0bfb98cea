package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MediaMetrics records ingestion and deletion activity.
type MediaMetrics struct {
	ingested    *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	uploadBytes prometheus.Counter
	deleted     *prometheus.CounterVec
}

// NewMediaMetrics registers the media metrics on the provided registerer.
// A nil registerer yields a no-op collector.
func NewMediaMetrics(reg prometheus.Registerer) *MediaMetrics {
	if reg == nil {
		return &MediaMetrics{}
	}
	ingested := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_ingested_total",
		Help: "Assets created, by ingestion source and media type.",
	}, []string{"source", "media_type"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_rejected_total",
		Help: "Ingestion attempts rejected, by error code.",
	}, []string{"reason"})
	uploadBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "media_upload_bytes_total",
		Help: "Bytes written to storage by uploads.",
	})
	deleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_deleted_total",
		Help: "Assets deleted, by whether a stored file was cleaned up.",
	}, []string{"file_removed"})
	reg.MustRegister(ingested, rejected, uploadBytes, deleted)
	return &MediaMetrics{
		ingested:    ingested,
		rejected:    rejected,
		uploadBytes: uploadBytes,
		deleted:     deleted,
	}
}

func (m *MediaMetrics) IncIngested(source, mediaType string) {
	if m == nil || m.ingested == nil {
		return
	}
	m.ingested.WithLabelValues(normalizeLabel(source), normalizeLabel(mediaType)).Inc()
}

func (m *MediaMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *MediaMetrics) AddUploadBytes(n int64) {
	if m == nil || m.uploadBytes == nil || n <= 0 {
		return
	}
	m.uploadBytes.Add(float64(n))
}

func (m *MediaMetrics) IncDeleted(fileRemoved bool) {
	if m == nil || m.deleted == nil {
		return
	}
	label := "false"
	if fileRemoved {
		label = "true"
	}
	m.deleted.WithLabelValues(label).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
