package tools

import (
	"context"

	"github.com/qiniu/seqmcp/internal/seq/model"
)

const defaultHealthMessage = "Seq server is operational"

type SignalSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	FilterCount int    `json:"filterCount"`
}

type ListSignalsResult struct {
	Signals []SignalSummary `json:"signals"`
	Count   int             `json:"count"`
}

type HealthResult struct {
	Status    model.HealthState `json:"status"`
	Message   string            `json:"message"`
	Timestamp string            `json:"timestamp"`
}

func (d *Dispatcher) listSignals(ctx context.Context, _ map[string]any) (any, error) {
	signals, err := d.source.GetSignals(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]SignalSummary, 0, len(signals))
	for _, s := range signals {
		out = append(out, SignalSummary{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			FilterCount: len(s.Filters),
		})
	}
	return ListSignalsResult{Signals: out, Count: len(out)}, nil
}

// checkHealth never fails; upstream problems are part of the result.
func (d *Dispatcher) checkHealth(ctx context.Context, _ map[string]any) (any, error) {
	health := d.source.GetHealthStatus(ctx)

	message := health.Message
	if message == "" {
		message = defaultHealthMessage
	}
	return HealthResult{
		Status:    health.Status,
		Message:   message,
		Timestamp: d.now().UTC().Format(isoMillis),
	}, nil
}
