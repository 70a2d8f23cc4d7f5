package metrics

const (
	namespaceFury   = "fury"
	subsystemEngine = "engine"
)

const (
	LabelOperation = "operation"
	LabelKind      = "kind"
	LabelMemo      = "memo"
)
