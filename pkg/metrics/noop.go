package metrics

type NoopCollector struct{}

var _ Collector = (*NoopCollector)(nil)

func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

func (nc *NoopCollector) OperationHandled(operation string)               {}
func (nc *NoopCollector) OperationRejected(operation string, kind string) {}
func (nc *NoopCollector) TransferEmitted(memo string, amount uint64)      {}
func (nc *NoopCollector) Custodied(total uint64)                          {}
