// Package session drives one video-summarization dialogue: resolve a
// URL, seed the conversation, stream the summary, answer follow-ups.
// State is owned exclusively by one client; nothing is shared across
// sessions or persisted.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"tubebrief.dev/tubebrief/internal/prompt"
	"tubebrief.dev/tubebrief/internal/youtube"
)

// State of the session's dialogue machine.
type State int

const (
	// Idle: no video loaded.
	Idle State = iota
	// Resolving: metadata and transcript fetches in flight.
	Resolving
	// Summarizing: first assistant turn streaming.
	Summarizing
	// Ready: active video, chat input enabled.
	Ready
	// Answering: follow-up reply streaming.
	Answering
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Resolving:
		return "resolving"
	case Summarizing:
		return "summarizing"
	case Ready:
		return "ready"
	case Answering:
		return "answering"
	default:
		return "unknown"
	}
}

// ErrInvalidURL is returned by Submit for input that matches no known
// YouTube URL shape.
var ErrInvalidURL = errors.New("invalid YouTube URL")

// ErrNotReady is returned by Ask when no video is loaded or a reply
// is still streaming.
var ErrNotReady = errors.New("no active video to ask about")

// MetadataFetcher resolves oEmbed metadata for a watch URL.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, videoURL string) (*youtube.VideoMetadata, error)
}

// TranscriptFetcher retrieves the normalized transcript for a video ID.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoID string) (string, error)
}

// ChatStreamer streams an assistant reply for a conversation.
type ChatStreamer interface {
	Stream(ctx context.Context, messages []prompt.Message, emit func(chunk string) error) error
}

// Session is one dialogue. Safe for concurrent use: a Submit from any
// goroutine cancels whatever stream is in flight and its output is
// discarded, never merged into the new conversation.
type Session struct {
	metadata    MetadataFetcher
	transcripts TranscriptFetcher
	chat        ChatStreamer
	composer    *prompt.Composer

	mu      sync.Mutex
	state   State
	gen     int
	cancel  context.CancelFunc
	conv    []prompt.Message
	meta    *youtube.VideoMetadata
	videoID string
}

func New(metadata MetadataFetcher, transcripts TranscriptFetcher, chat ChatStreamer, composer *prompt.Composer) *Session {
	return &Session{
		metadata:    metadata,
		transcripts: transcripts,
		chat:        chat,
		composer:    composer,
		state:       Idle,
	}
}

// State returns the current dialogue state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Conversation returns a copy of the message history.
func (s *Session) Conversation() []prompt.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]prompt.Message, len(s.conv))
	copy(out, s.conv)
	return out
}

// Metadata returns the active video's metadata, nil when Idle.
func (s *Session) Metadata() *youtube.VideoMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// VideoID returns the active video's identifier, empty when Idle.
func (s *Session) VideoID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoID
}

// Submit loads a new video: it cancels any in-flight stream, resets
// the conversation, resolves metadata and transcript, seeds the
// conversation and streams the summary through emit. It returns once
// the summary stream terminates. Any failure leaves the session Idle
// with no partial video state.
func (s *Session) Submit(ctx context.Context, rawURL string, length prompt.SummaryLength, emit func(chunk string)) error {
	videoID, ok := youtube.ExtractVideoID(rawURL)
	if !ok {
		s.mu.Lock()
		s.reset(Idle)
		s.mu.Unlock()
		return ErrInvalidURL
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.reset(Resolving)
	s.mu.Unlock()
	defer cancel()

	videoURL := youtube.WatchURL(videoID)

	type metadataResult struct {
		meta *youtube.VideoMetadata
		err  error
	}
	metaCh := make(chan metadataResult, 1)
	go func() {
		meta, err := s.metadata.FetchMetadata(ctx, videoURL)
		metaCh <- metadataResult{meta: meta, err: err}
	}()

	transcript, terr := s.transcripts.FetchTranscript(ctx, videoID)
	mr := <-metaCh

	if err := firstError(mr.err, terr); err != nil {
		s.fail(gen)
		return err
	}

	seed := s.composer.Seed(mr.meta.Title, mr.meta.AuthorName, transcript, length)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return context.Canceled
	}
	s.conv = seed
	s.meta = mr.meta
	s.videoID = videoID
	s.state = Summarizing
	messages := snapshot(s.conv)
	s.mu.Unlock()

	return s.stream(ctx, gen, messages, emit)
}

// Ask appends a follow-up user question and streams the reply through
// emit. The session must be Ready.
func (s *Session) Ask(ctx context.Context, question string, emit func(chunk string)) error {
	s.mu.Lock()
	if s.state != Ready {
		s.mu.Unlock()
		return ErrNotReady
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.conv = append(s.conv, prompt.Message{Role: prompt.RoleUser, Content: question})
	s.state = Answering
	gen := s.gen
	messages := snapshot(s.conv)
	s.mu.Unlock()
	defer cancel()

	return s.stream(ctx, gen, messages, emit)
}

// stream runs one completion, appending the assistant reply when the
// stream terminates normally and this generation is still current.
func (s *Session) stream(ctx context.Context, gen int, messages []prompt.Message, emit func(chunk string)) error {
	var reply strings.Builder
	err := s.chat.Stream(ctx, messages, func(chunk string) error {
		reply.WriteString(chunk)
		if emit != nil {
			emit(chunk)
		}
		return nil
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		// superseded by a newer Submit; discard this stream's output
		return context.Canceled
	}

	if err != nil {
		if s.state == Summarizing {
			// first turn failed: no partial video state survives
			s.reset(Idle)
		} else {
			s.state = Ready
		}
		return err
	}

	s.conv = append(s.conv, prompt.Message{Role: prompt.RoleAssistant, Content: reply.String()})
	s.state = Ready
	return nil
}

// fail returns the session to Idle unless a newer Submit took over.
func (s *Session) fail(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.reset(Idle)
	}
}

// reset clears all video state. Callers hold s.mu.
func (s *Session) reset(state State) {
	s.conv = nil
	s.meta = nil
	s.videoID = ""
	s.state = state
}

func snapshot(messages []prompt.Message) []prompt.Message {
	out := make([]prompt.Message, len(messages))
	copy(out, messages)
	return out
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
