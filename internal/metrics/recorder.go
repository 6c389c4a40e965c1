// Package metrics provides observability hooks for the store and its
// persistence effects.
package metrics

// ResultLabel enumerates persistence result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailure ResultLabel = "failure"
)

// Recorder defines observability hooks for store activity. Implementations
// may forward to Prometheus, OpenTelemetry, etc. The NoopRecorder allows
// optional injection.
type Recorder interface {
	IncAction(action string)
	IncPersistOp(op string, result ResultLabel)
	IncDebounceFired(key string)
	IncDebounceCanceled(key string)
	SetItemCount(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncAction(string)                  {}
func (NoopRecorder) IncPersistOp(string, ResultLabel)  {}
func (NoopRecorder) IncDebounceFired(string)           {}
func (NoopRecorder) IncDebounceCanceled(string)        {}
func (NoopRecorder) SetItemCount(int)                  {}
