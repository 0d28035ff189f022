// Package chat is the client of the hosted chat-completion endpoint.
// It resends the full ordered message history on every call and
// supports buffered and streamed delivery, both bounded by a
// wall-clock ceiling.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"tubebrief.dev/tubebrief/internal/prompt"
	"tubebrief.dev/tubebrief/internal/telemetry"
)

// ErrTimeout is returned when a completion call exceeds the service
// ceiling. Timeouts are surfaced, never retried.
var ErrTimeout = errors.New("chat completion timed out")

// DefaultTimeout is the wall-clock ceiling for one completion call.
const DefaultTimeout = 30 * time.Second

// Service wraps the completion client with timeout enforcement and
// fire-and-forget telemetry.
type Service struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	tracer  *telemetry.Tracer
}

// NewService creates a chat service. tracer may be nil, which disables
// telemetry. A non-positive timeout falls back to DefaultTimeout.
func NewService(client *openai.Client, model string, timeout time.Duration, tracer *telemetry.Tracer) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		client:  client,
		model:   model,
		timeout: timeout,
		tracer:  tracer,
	}
}

// Complete sends the conversation and waits for the full assistant
// reply (buffered mode).
func (s *Service) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	span := telemetry.Span{Name: "chat.completion", Model: s.model, StartedAt: time.Now()}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: toOpenAI(messages),
	})

	span.DurationMs = time.Since(span.StartedAt).Milliseconds()
	if err != nil {
		err = s.mapErr(err)
		span.Error = err.Error()
		s.tracer.Record(span)
		return "", err
	}

	span.PromptTokens = resp.Usage.PromptTokens
	span.CompletionTokens = resp.Usage.CompletionTokens
	s.tracer.Record(span)

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream sends the conversation and emits incremental chunks of the
// assistant reply as they are generated. emit returning an error
// aborts the stream. Stream completion is the terminal state.
func (s *Service) Stream(ctx context.Context, messages []prompt.Message, emit func(chunk string) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	span := telemetry.Span{Name: "chat.completion.stream", Model: s.model, StartedAt: time.Now()}

	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:         s.model,
		Messages:      toOpenAI(messages),
		Stream:        true,
		StreamOptions: &openai.StreamOptions{IncludeUsage: true},
	})
	if err != nil {
		err = s.mapErr(err)
		span.DurationMs = time.Since(span.StartedAt).Milliseconds()
		span.Error = err.Error()
		s.tracer.Record(span)
		return err
	}
	defer stream.Close()

	for {
		resp, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			recvErr = s.mapErr(recvErr)
			span.DurationMs = time.Since(span.StartedAt).Milliseconds()
			span.Error = recvErr.Error()
			s.tracer.Record(span)
			return recvErr
		}

		if resp.Usage != nil {
			span.PromptTokens = resp.Usage.PromptTokens
			span.CompletionTokens = resp.Usage.CompletionTokens
		}
		if len(resp.Choices) == 0 {
			continue
		}

		if chunk := resp.Choices[0].Delta.Content; chunk != "" {
			if err := emit(chunk); err != nil {
				span.DurationMs = time.Since(span.StartedAt).Milliseconds()
				span.Error = err.Error()
				s.tracer.Record(span)
				return fmt.Errorf("emit chunk: %w", err)
			}
		}
	}

	span.DurationMs = time.Since(span.StartedAt).Milliseconds()
	s.tracer.Record(span)
	return nil
}

func (s *Service) mapErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, s.timeout)
	}
	return fmt.Errorf("chat completion: %w", err)
}

func toOpenAI(messages []prompt.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
