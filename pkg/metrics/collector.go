package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector receives the engine's operational events.
type Collector interface {
	// OperationHandled counts a successfully executed operation.
	OperationHandled(operation string)
	// OperationRejected counts an operation that failed with the given error kind.
	OperationRejected(operation string, kind string)
	// TransferEmitted counts an emitted transfer instruction and its amount.
	TransferEmitted(memo string, amount uint64)
	// Custodied sets the amount currently held by the engine.
	Custodied(total uint64)
}

type EngineCollector struct {
	handled   *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	transfers *prometheus.CounterVec
	paid      *prometheus.CounterVec
	custodied prometheus.Gauge
}

var _ Collector = (*EngineCollector)(nil)

// NewEngineCollector registers the engine metrics with reg.
func NewEngineCollector(reg prometheus.Registerer) *EngineCollector {
	factory := promauto.With(reg)
	return &EngineCollector{
		handled: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "operations_handled_total",
			Namespace: namespaceFury,
			Subsystem: subsystemEngine,
			Help:      "the number of operations executed successfully",
		}, []string{LabelOperation}),

		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "operations_rejected_total",
			Namespace: namespaceFury,
			Subsystem: subsystemEngine,
			Help:      "the number of operations rejected, by error kind",
		}, []string{LabelOperation, LabelKind}),

		transfers: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "transfers_emitted_total",
			Namespace: namespaceFury,
			Subsystem: subsystemEngine,
			Help:      "the number of transfer instructions emitted",
		}, []string{LabelMemo}),

		paid: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "transferred_amount_total",
			Namespace: namespaceFury,
			Subsystem: subsystemEngine,
			Help:      "the amount of staking denom instructed for transfer",
		}, []string{LabelMemo}),

		custodied: factory.NewGauge(prometheus.GaugeOpts{
			Name:      "custodied_amount",
			Namespace: namespaceFury,
			Subsystem: subsystemEngine,
			Help:      "the amount currently held in custody",
		}),
	}
}

func (ec *EngineCollector) OperationHandled(operation string) {
	ec.handled.With(prometheus.Labels{LabelOperation: operation}).Inc()
}

func (ec *EngineCollector) OperationRejected(operation string, kind string) {
	ec.rejected.With(prometheus.Labels{LabelOperation: operation, LabelKind: kind}).Inc()
}

func (ec *EngineCollector) TransferEmitted(memo string, amount uint64) {
	ec.transfers.With(prometheus.Labels{LabelMemo: memo}).Inc()
	ec.paid.With(prometheus.Labels{LabelMemo: memo}).Add(float64(amount))
}

func (ec *EngineCollector) Custodied(total uint64) {
	ec.custodied.Set(float64(total))
}
