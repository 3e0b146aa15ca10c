package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for transfers, crypto
// operations, FEC reconstruction, and search queries. The handler it
// exposes is mounted by the host process; filecore itself never listens
// on a socket.
type Metrics struct {
	TransfersTotal        *prometheus.CounterVec
	TransfersActive       prometheus.Gauge
	TransferDuration      prometheus.Histogram
	BytesTransferredTotal *prometheus.CounterVec
	ChunksProcessedTotal  *prometheus.CounterVec

	CryptoOperationsTotal    *prometheus.CounterVec
	CryptoOperationDuration  prometheus.Histogram
	MerkleVerificationsTotal *prometheus.CounterVec

	FECReconstructionsTotal *prometheus.CounterVec

	SearchQueriesTotal *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers a fresh Metrics set against reg. Passing nil
// registers against a private registry scoped to the returned Metrics
// (safe to call more than once in the same process, e.g. per-test).
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		TransfersTotal: f.NewCounterVec(
			prometheus.CounterOpts{Name: "filecore_transfers_total", Help: "Total transfer sessions started"},
			[]string{"status"},
		),
		TransfersActive: f.NewGauge(
			prometheus.GaugeOpts{Name: "filecore_transfers_active", Help: "Currently open transfer sessions"},
		),
		TransferDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "filecore_transfer_duration_seconds",
				Help:    "Transfer completion time distribution",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
			},
		),
		BytesTransferredTotal: f.NewCounterVec(
			prometheus.CounterOpts{Name: "filecore_bytes_transferred_total", Help: "Total bytes transferred"},
			[]string{"direction"},
		),
		ChunksProcessedTotal: f.NewCounterVec(
			prometheus.CounterOpts{Name: "filecore_chunks_processed_total", Help: "Chunks encrypted or decrypted"},
			[]string{"direction"},
		),
		CryptoOperationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{Name: "filecore_crypto_operations_total", Help: "Cryptographic operations performed"},
			[]string{"operation", "result"},
		),
		CryptoOperationDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "filecore_crypto_operation_duration_seconds",
				Help:    "Crypto operation latency",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),
		MerkleVerificationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{Name: "filecore_merkle_verifications_total", Help: "Merkle root verifications"},
			[]string{"result"},
		),
		FECReconstructionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{Name: "filecore_fec_reconstructions_total", Help: "FEC shard reconstructions"},
			[]string{"result"},
		),
		SearchQueriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{Name: "filecore_search_queries_total", Help: "Search queries served"},
			[]string{"variant"},
		),
	}
}

// RecordTransferStart marks a new active transfer session.
func (m *Metrics) RecordTransferStart() {
	m.TransfersActive.Inc()
}

// RecordTransferComplete records a session's outcome and duration.
func (m *Metrics) RecordTransferComplete(success bool, durationSeconds float64) {
	m.TransfersActive.Dec()
	status := "success"
	if !success {
		status = "failure"
	}
	m.TransfersTotal.WithLabelValues(status).Inc()
	m.TransferDuration.Observe(durationSeconds)
}

// RecordChunk records one chunk's bytes for a given direction
// ("encrypt"/"decrypt" or "sent"/"received" depending on caller context).
func (m *Metrics) RecordChunk(direction string, bytes int) {
	m.ChunksProcessedTotal.WithLabelValues(direction).Inc()
	m.BytesTransferredTotal.WithLabelValues(direction).Add(float64(bytes))
}

// RecordCryptoOperation records one AEAD/KDF/identity operation.
func (m *Metrics) RecordCryptoOperation(operation string, success bool, durationSeconds float64) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.CryptoOperationsTotal.WithLabelValues(operation, result).Inc()
	m.CryptoOperationDuration.Observe(durationSeconds)
}

// RecordMerkleVerification records one Merkle root comparison outcome.
func (m *Metrics) RecordMerkleVerification(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.MerkleVerificationsTotal.WithLabelValues(result).Inc()
}

// RecordFECReconstruction records one FEC reconstruction attempt outcome.
func (m *Metrics) RecordFECReconstruction(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.FECReconstructionsTotal.WithLabelValues(result).Inc()
}

// RecordSearchQuery records one served query by variant
// ("exact"/"prefix"/"account").
func (m *Metrics) RecordSearchQuery(variant string) {
	m.SearchQueriesTotal.WithLabelValues(variant).Inc()
}

// Handler exposes the Prometheus scrape endpoint for this Metrics set's
// registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
