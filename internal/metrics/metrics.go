package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "billing"

// Metrics groups the collectors recorded by the allocator and the document service. A nil
// *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	DocumentsCreated    *prometheus.CounterVec
	DocumentsEdited     *prometheus.CounterVec
	DocumentsDeleted    *prometheus.CounterVec
	NumbersAllocated    *prometheus.CounterVec
	AllocationConflicts *prometheus.CounterVec
	SequenceExhausted   *prometheus.CounterVec
	PaymentsApplied     prometheus.Counter
	PaymentsReplayed    prometheus.Counter
	Failures            *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		DocumentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_created_total",
			Help:      "Documents created, by document prefix.",
		}, []string{"prefix"}),
		DocumentsEdited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_edited_total",
			Help:      "Documents edited, by document prefix.",
		}, []string{"prefix"}),
		DocumentsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_deleted_total",
			Help:      "Documents deleted, by document prefix.",
		}, []string{"prefix"}),
		NumbersAllocated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "numbers_allocated_total",
			Help:      "Sequence numbers handed out by the allocator, by document prefix.",
		}, []string{"prefix"}),
		AllocationConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_conflicts_total",
			Help:      "Allocated numbers rejected by the record store as already taken.",
		}, []string{"prefix"}),
		SequenceExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequence_exhausted_total",
			Help:      "Allocation attempts refused because the scope is full.",
		}, []string{"prefix"}),
		PaymentsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_applied_total",
			Help:      "Payments added to invoices.",
		}),
		PaymentsReplayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_replayed_total",
			Help:      "Payments ignored because their idempotency key was already used.",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Failed lifecycle operations, by operation and error kind.",
		}, []string{"op", "kind"}),
	}

	m.Registry.MustRegister(
		m.DocumentsCreated,
		m.DocumentsEdited,
		m.DocumentsDeleted,
		m.NumbersAllocated,
		m.AllocationConflicts,
		m.SequenceExhausted,
		m.PaymentsApplied,
		m.PaymentsReplayed,
		m.Failures,
	)

	return m
}

func (m *Metrics) IncCreated(prefix string) {
	if m != nil {
		m.DocumentsCreated.WithLabelValues(prefix).Inc()
	}
}

func (m *Metrics) IncEdited(prefix string) {
	if m != nil {
		m.DocumentsEdited.WithLabelValues(prefix).Inc()
	}
}

func (m *Metrics) IncDeleted(prefix string) {
	if m != nil {
		m.DocumentsDeleted.WithLabelValues(prefix).Inc()
	}
}

func (m *Metrics) IncAllocated(prefix string) {
	if m != nil {
		m.NumbersAllocated.WithLabelValues(prefix).Inc()
	}
}

func (m *Metrics) IncAllocationConflict(prefix string) {
	if m != nil {
		m.AllocationConflicts.WithLabelValues(prefix).Inc()
	}
}

func (m *Metrics) IncExhausted(prefix string) {
	if m != nil {
		m.SequenceExhausted.WithLabelValues(prefix).Inc()
	}
}

func (m *Metrics) IncPayment() {
	if m != nil {
		m.PaymentsApplied.Inc()
	}
}

func (m *Metrics) IncPaymentReplay() {
	if m != nil {
		m.PaymentsReplayed.Inc()
	}
}

func (m *Metrics) IncFailure(op, kind string) {
	if m != nil {
		m.Failures.WithLabelValues(op, kind).Inc()
	}
}

// Push sends the registry to a Prometheus Pushgateway. The CLI is short lived, so it pushes once
// per command instead of exposing a scrape endpoint.
func (m *Metrics) Push(url, job string) error {
	if m == nil || url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(m.Registry).Push(); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
