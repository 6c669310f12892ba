package webhook

import (
	"context"
	"log/slog"

	"skin-assessment-service/internal/domain"
	"skin-assessment-service/internal/infra/outbound"
)

// Dispatcher forwards completed leads to the lead system's inbound webhook.
// It implements app.LeadDispatcher: one attempt, never awaited, failures only logged.
type Dispatcher struct {
	url    string
	sender *outbound.Sender
	log    *slog.Logger
}

func NewDispatcher(url string, sender *outbound.Sender, log *slog.Logger) *Dispatcher {
	return &Dispatcher{url: url, sender: sender, log: log}
}

func (d *Dispatcher) Dispatch(payload domain.SubmissionPayload) {
	if d.url == "" {
		d.log.Warn("lead webhook not configured, lead not forwarded",
			"fitzpatrick_type", payload.FitzpatrickType)
		return
	}
	d.sender.Send(d.url, payload, "lead webhook",
		"fitzpatrick_type", payload.FitzpatrickType,
		"submitted_at", payload.SubmittedAt)
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	return d.sender.Wait(ctx)
}
