package application

import "time"

const (
	OutcomeEdited = "edited"
	OutcomeNoop   = "noop"
	OutcomeFailed = "failed"
)

type Metrics interface {
	ObserveCommand(id, outcome string, elapsed time.Duration)
}

type NoopMetrics struct{}

func (NoopMetrics) ObserveCommand(_, _ string, _ time.Duration) {}
