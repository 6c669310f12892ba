package pixel

import (
	"context"
	"log/slog"
	"net/url"

	"skin-assessment-service/internal/domain"
	"skin-assessment-service/internal/infra/outbound"
)

// Config selects where pixel events go.
type Config struct {
	Enabled     bool
	TestMode    bool
	PixelID     string
	Endpoint    string // e.g. https://graph.facebook.com/v19.0/{pixel}/events
	AccessToken string
}

// Tracker implements app.EventTracker against a server-side pixel events endpoint.
// When disabled it only logs what it would have sent.
type Tracker struct {
	cfg    Config
	target string
	sender *outbound.Sender
	log    *slog.Logger
}

func NewTracker(cfg Config, sender *outbound.Sender, log *slog.Logger) *Tracker {
	t := &Tracker{cfg: cfg, sender: sender, log: log}
	if cfg.Endpoint != "" {
		target, err := url.Parse(cfg.Endpoint)
		if err != nil {
			log.Warn("pixel endpoint invalid, tracking disabled", "error", err)
			t.cfg.Enabled = false
			return t
		}
		if cfg.AccessToken != "" {
			q := target.Query()
			q.Set("access_token", cfg.AccessToken)
			target.RawQuery = q.Encode()
		}
		t.target = target.String()
	}
	return t
}

type serverEvent struct {
	EventName    string            `json:"event_name"`
	EventTime    int64             `json:"event_time"`
	EventID      string            `json:"event_id"`
	ActionSource string            `json:"action_source"`
	CustomData   map[string]string `json:"custom_data,omitempty"`
}

type eventBatch struct {
	PixelID string        `json:"pixel_id,omitempty"`
	Data    []serverEvent `json:"data"`
}

func (t *Tracker) Track(event domain.TrackingEvent) {
	if !t.cfg.Enabled || t.target == "" {
		t.log.Debug("pixel disabled, would track", "event", event.Name, "params", event.Params)
		return
	}
	if t.cfg.TestMode {
		t.log.Info("pixel test event", "event", event.Name, "params", event.Params)
	}
	t.sender.Send(t.target, eventBatch{
		PixelID: t.cfg.PixelID,
		Data: []serverEvent{{
			EventName:    event.Name,
			EventTime:    event.OccurredAt.Unix(),
			EventID:      event.ID(),
			ActionSource: "website",
			CustomData:   event.Params,
		}},
	}, "pixel", "event", event.Name)
}

// Wait blocks until in-flight events are sent or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	return t.sender.Wait(ctx)
}
