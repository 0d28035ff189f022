package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubebrief.dev/tubebrief/internal/prompt"
)

func newTestService(t *testing.T, handler http.HandlerFunc, timeout time.Duration) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	client := openai.NewClientWithConfig(cfg)

	return NewService(client, "gpt-4o-mini", timeout, nil), srv
}

func TestComplete(t *testing.T) {
	var gotReq openai.ChatCompletionRequest
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"choices": [{"message": {"role": "assistant", "content": "A summary."}}],
			"usage": {"prompt_tokens": 42, "completion_tokens": 7}
		}`)
	}, time.Second)

	messages := []prompt.Message{
		{Role: prompt.RoleSystem, Content: "be helpful"},
		{Role: prompt.RoleUser, Content: "summarize this"},
	}

	reply, err := svc.Complete(context.Background(), messages)
	require.NoError(t, err)
	assert.Equal(t, "A summary.", reply)

	// full ordered history resent, no truncation
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "summarize this", gotReq.Messages[1].Content)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
}

func TestStream(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, chunk := range []string{"Hel", "lo ", "world"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", chunk)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}, time.Second)

	var b strings.Builder
	err := svc.Stream(context.Background(), []prompt.Message{{Role: prompt.RoleUser, Content: "hi"}}, func(chunk string) error {
		b.WriteString(chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", b.String())
}

func TestStreamEmitErrorAborts(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i := 0; i < 10; i++ {
			fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n")
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}, time.Second)

	calls := 0
	err := svc.Stream(context.Background(), []prompt.Message{{Role: prompt.RoleUser, Content: "hi"}}, func(chunk string) error {
		calls++
		return fmt.Errorf("client went away")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestCompleteTimeout(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}, 50*time.Millisecond)

	_, err := svc.Complete(context.Background(), []prompt.Message{{Role: prompt.RoleUser, Content: "hi"}})
	require.ErrorIs(t, err, ErrTimeout)
}

func TestStreamTimeout(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}, 50*time.Millisecond)

	err := svc.Stream(context.Background(), []prompt.Message{{Role: prompt.RoleUser, Content: "hi"}}, func(string) error { return nil })
	require.ErrorIs(t, err, ErrTimeout)
}

func TestCompleteUpstreamError(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusServiceUnavailable)
	}, time.Second)

	_, err := svc.Complete(context.Background(), []prompt.Message{{Role: prompt.RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}
