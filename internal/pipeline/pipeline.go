package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// Handler is the contract each pipeline stage implements. Execute runs the
// stage body; sub-steps inside the body check for their terminal outputs
// before recomputing, so re-running a completed stage performs no redundant
// expensive work.
type Handler interface {
	Execute(ctx context.Context) error
	// HealthCheck reports whether the stage could run now (required binaries
	// resolvable, required directories reachable). It must not mutate the
	// working tree.
	HealthCheck(ctx context.Context) Health
}

// LoggerAware is implemented by handlers that want the stage-scoped logger
// injected before Execute runs.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}

// Health summarizes the readiness of a pipeline stage.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs an unhealthy Health record with context detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}

// Stage couples an index and name to the handler that does the work. Indices
// order the pipeline and are the unit of range selection.
type Stage struct {
	Index   int
	Name    string
	Handler Handler
}

// Range selects stages by inclusive index bounds. A stage runs iff
// Lo <= Index <= Hi.
type Range struct {
	Lo int
	Hi int
}

// Contains reports whether index falls inside the range.
func (r Range) Contains(index int) bool {
	return index >= r.Lo && index <= r.Hi
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Lo, r.Hi)
}
