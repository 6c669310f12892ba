package outbound

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Sender posts JSON bodies in the background. Nothing is retried and no failure reaches the caller.
type Sender struct {
	client  *http.Client
	timeout time.Duration
	log     *slog.Logger
	wg      sync.WaitGroup
}

func NewSender(client *http.Client, timeout time.Duration, log *slog.Logger) *Sender {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{client: client, timeout: timeout, log: log}
}

// Send posts body to url on its own goroutine and returns immediately.
// kind and attrs only label the log lines.
func (s *Sender) Send(url string, body any, kind string, attrs ...any) {
	data, err := json.Marshal(body)
	if err != nil {
		s.log.Error("outbound encode failed", append([]any{"kind", kind, "error", err}, attrs...)...)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Detached from any request: the caller may be gone by the time this runs.
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		if err := s.post(ctx, url, data); err != nil {
			s.log.Warn("outbound send failed", append([]any{"kind", kind, "error", err}, attrs...)...)
			return
		}
		s.log.Debug("outbound sent", append([]any{"kind", kind, "elapsed", time.Since(start)}, attrs...)...)
	}()
}

func (s *Sender) post(ctx context.Context, url string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Wait blocks until every in-flight send has finished or ctx is done.
func (s *Sender) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
