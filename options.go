package heap

import "go.uber.org/zap"

// Option configures a Heap at construction time.
type Option[T any] func(*Heap[T])

// WithLogger attaches a structured logger that receives Debug-level traces
// of percolation hand-offs and terminations. The default is a no-op
// logger.
func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(h *Heap[T]) {
		if logger != nil {
			h.logger = logger
		}
	}
}
