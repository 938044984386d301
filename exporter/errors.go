package exporter

// Operation identifies which backend call failed.
type Operation string

const (
	OpCreateTrace     Operation = "createTrace"
	OpCreateSpan      Operation = "createSpan"
	OpCreateSpanBatch Operation = "createSpanBatch"
	OpUpdateSpan      Operation = "updateSpan"
)

// ErrorContext locates a per-item failure within an export batch.
type ErrorContext struct {
	Operation  Operation
	ExternalID string
	ItemType   string // "trace" or "span"
}

// ErrorHook receives per-item failures. Export itself never returns them.
type ErrorHook func(err error, ctx ErrorContext)
