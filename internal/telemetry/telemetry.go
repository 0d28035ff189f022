// Package telemetry emits usage spans for completion calls to an
// optional HTTP sink. Recording is fire-and-forget: the sender runs in
// the background, a full queue drops spans, and sink failures are
// logged without ever touching the primary response path.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"
)

// Span describes one summarization/chat call.
type Span struct {
	Name             string    `json:"name"`
	RequestID        string    `json:"requestId,omitempty"`
	Model            string    `json:"model,omitempty"`
	StartedAt        time.Time `json:"startedAt"`
	DurationMs       int64     `json:"durationMs"`
	PromptTokens     int       `json:"promptTokens,omitempty"`
	CompletionTokens int       `json:"completionTokens,omitempty"`
	Error            string    `json:"error,omitempty"`
}

// Tracer queues spans and posts them to the sink in the background.
// A nil Tracer is valid and records nothing.
type Tracer struct {
	sinkURL    string
	httpClient *http.Client

	spans   chan Span
	pending sync.WaitGroup
	closed  chan struct{}
	once    sync.Once
}

// NewTracer creates a tracer posting to sinkURL. An empty sinkURL
// returns nil, which disables telemetry everywhere.
func NewTracer(sinkURL string) *Tracer {
	if sinkURL == "" {
		return nil
	}

	t := &Tracer{
		sinkURL:    sinkURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		spans:      make(chan Span, 64),
		closed:     make(chan struct{}),
	}
	go t.send()
	return t
}

// Record enqueues a span without blocking. Spans are dropped when the
// queue is full or the tracer is shut down.
func (t *Tracer) Record(span Span) {
	if t == nil {
		return
	}

	t.pending.Add(1)
	select {
	case t.spans <- span:
	case <-t.closed:
		t.pending.Done()
	default:
		t.pending.Done()
		log.Printf("telemetry: queue full, dropping span %q", span.Name)
	}
}

// Flush waits for queued spans to be delivered, bounded by ctx. It is
// best-effort: a deadline simply abandons whatever is still in flight.
func (t *Tracer) Flush(ctx context.Context) {
	if t == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		t.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Printf("telemetry: flush abandoned: %v", ctx.Err())
	}
}

// Close stops accepting spans. Pending spans already queued are still
// delivered by the sender.
func (t *Tracer) Close() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.closed) })
}

func (t *Tracer) send() {
	for {
		select {
		case span := <-t.spans:
			t.post(span)
			t.pending.Done()
		case <-t.closed:
			// drain what is already queued
			for {
				select {
				case span := <-t.spans:
					t.post(span)
					t.pending.Done()
				default:
					return
				}
			}
		}
	}
}

func (t *Tracer) post(span Span) {
	body, err := json.Marshal(span)
	if err != nil {
		log.Printf("telemetry: marshal span: %v", err)
		return
	}

	resp, err := t.httpClient.Post(t.sinkURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("telemetry: post span: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("telemetry: sink returned status %d", resp.StatusCode)
	}
}
