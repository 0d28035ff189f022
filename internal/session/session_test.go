package session

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubebrief.dev/tubebrief/internal/prompt"
	"tubebrief.dev/tubebrief/internal/youtube"
)

type fakeMetadata struct {
	err error
}

func (f *fakeMetadata) FetchMetadata(ctx context.Context, videoURL string) (*youtube.VideoMetadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	id, _ := youtube.ExtractVideoID(videoURL)
	return &youtube.VideoMetadata{Title: "title-" + id, AuthorName: "author"}, nil
}

type fakeTranscripts struct {
	err error
}

func (f *fakeTranscripts) FetchTranscript(ctx context.Context, videoID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "transcript of " + videoID, nil
}

type scriptedChat struct {
	replies []string
	err     error
}

func (c *scriptedChat) Stream(ctx context.Context, messages []prompt.Message, emit func(string) error) error {
	if c.err != nil {
		return c.err
	}
	reply := "a summary"
	if len(c.replies) > 0 {
		reply = c.replies[0]
		c.replies = c.replies[1:]
	}
	return emit(reply)
}

func newTestSession(chat ChatStreamer) *Session {
	return New(&fakeMetadata{}, &fakeTranscripts{}, chat, prompt.NewComposer(0))
}

func TestSubmitSeedsAndSummarizes(t *testing.T) {
	sess := newTestSession(&scriptedChat{replies: []string{"the summary"}})

	var streamed strings.Builder
	err := sess.Submit(context.Background(), "https://youtu.be/abc12345678", prompt.LengthBalanced, func(chunk string) {
		streamed.WriteString(chunk)
	})
	require.NoError(t, err)

	assert.Equal(t, Ready, sess.State())
	assert.Equal(t, "abc12345678", sess.VideoID())
	assert.Equal(t, "the summary", streamed.String())

	conv := sess.Conversation()
	require.Len(t, conv, 3)
	assert.Equal(t, prompt.RoleSystem, conv[0].Role)
	assert.Equal(t, prompt.RoleUser, conv[1].Role)
	assert.Contains(t, conv[1].Content, "title-abc12345678")
	assert.Contains(t, conv[1].Content, "transcript of abc12345678")
	assert.Equal(t, prompt.RoleAssistant, conv[2].Role)
	assert.Equal(t, "the summary", conv[2].Content)
}

func TestSubmitInvalidURL(t *testing.T) {
	sess := newTestSession(&scriptedChat{})

	err := sess.Submit(context.Background(), "not a url", prompt.LengthBalanced, nil)
	require.ErrorIs(t, err, ErrInvalidURL)
	assert.Equal(t, Idle, sess.State())
	assert.Empty(t, sess.Conversation())
}

func TestSubmitMetadataFailureLeavesNoPartialState(t *testing.T) {
	sess := New(
		&fakeMetadata{err: &youtube.FetchError{Endpoint: "oembed", StatusCode: 500}},
		&fakeTranscripts{},
		&scriptedChat{},
		prompt.NewComposer(0),
	)

	err := sess.Submit(context.Background(), "https://youtu.be/abc12345678", prompt.LengthBalanced, nil)
	require.Error(t, err)

	assert.Equal(t, Idle, sess.State())
	assert.Empty(t, sess.Conversation())
	assert.Nil(t, sess.Metadata())
	assert.Empty(t, sess.VideoID())
}

func TestSubmitSummarizeFailureReturnsToIdle(t *testing.T) {
	sess := newTestSession(&scriptedChat{err: fmt.Errorf("model unavailable")})

	err := sess.Submit(context.Background(), "https://youtu.be/abc12345678", prompt.LengthBalanced, nil)
	require.Error(t, err)
	assert.Equal(t, Idle, sess.State())
	assert.Empty(t, sess.Conversation())
}

func TestAskAppendsTurns(t *testing.T) {
	sess := newTestSession(&scriptedChat{replies: []string{"the summary", "the answer"}})

	require.NoError(t, sess.Submit(context.Background(), "https://youtu.be/abc12345678", prompt.LengthBalanced, nil))
	require.NoError(t, sess.Ask(context.Background(), "what about X?", nil))

	conv := sess.Conversation()
	require.Len(t, conv, 5)
	assert.Equal(t, "what about X?", conv[3].Content)
	assert.Equal(t, prompt.RoleUser, conv[3].Role)
	assert.Equal(t, "the answer", conv[4].Content)
	assert.Equal(t, prompt.RoleAssistant, conv[4].Role)
	assert.Equal(t, Ready, sess.State())
}

func TestAskRequiresActiveVideo(t *testing.T) {
	sess := newTestSession(&scriptedChat{})
	err := sess.Ask(context.Background(), "anyone there?", nil)
	require.ErrorIs(t, err, ErrNotReady)
}

// switchingChat blocks its first stream until cancelled; later streams
// report the conversation they were given and finish immediately.
type switchingChat struct {
	calls        int32
	firstStarted chan struct{}
	session      *Session
	observed     []prompt.Message
}

func (c *switchingChat) Stream(ctx context.Context, messages []prompt.Message, emit func(string) error) error {
	if atomic.AddInt32(&c.calls, 1) == 1 {
		close(c.firstStarted)
		<-ctx.Done()
		return ctx.Err()
	}

	// conversation as seen before any assistant reply arrives
	c.observed = c.session.Conversation()
	return emit("fresh summary")
}

func TestNewSubmitCancelsInFlightStream(t *testing.T) {
	chat := &switchingChat{firstStarted: make(chan struct{})}
	sess := newTestSession(chat)
	chat.session = sess

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- sess.Submit(context.Background(), "https://youtu.be/first1234id", prompt.LengthBalanced, nil)
	}()

	select {
	case <-chat.firstStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("first summarization stream never started")
	}

	err := sess.Submit(context.Background(), "https://youtu.be/second123id", prompt.LengthBalanced, nil)
	require.NoError(t, err)

	select {
	case err := <-firstErr:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled submit never returned")
	}

	// before the new assistant reply, the conversation held exactly the
	// new video's seed
	require.Len(t, chat.observed, 2)
	assert.Equal(t, prompt.RoleSystem, chat.observed[0].Role)
	assert.Equal(t, prompt.RoleUser, chat.observed[1].Role)
	assert.Contains(t, chat.observed[1].Content, "title-second123id")
	assert.NotContains(t, chat.observed[1].Content, "first1234id")

	// the abandoned stream's output was discarded, not merged
	conv := sess.Conversation()
	require.Len(t, conv, 3)
	assert.Equal(t, "fresh summary", conv[2].Content)
	assert.Equal(t, "second123id", sess.VideoID())
	assert.Equal(t, Ready, sess.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "resolving", Resolving.String())
	assert.Equal(t, "summarizing", Summarizing.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "answering", Answering.String())
}
