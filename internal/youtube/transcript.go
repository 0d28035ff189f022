package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimedtextURL = "https://www.youtube.com/api/timedtext"

// CaptionSegment is one timed caption entry, in chronological order.
type CaptionSegment struct {
	Text        string
	StartOffset time.Duration
	Duration    time.Duration
}

// TranscriptClient fetches captions from YouTube's timedtext API and
// normalizes them into a single text blob for prompt embedding.
type TranscriptClient struct {
	httpClient *http.Client
	baseURL    string
	lang       string
}

func NewTranscriptClient() *TranscriptClient {
	return &TranscriptClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultTimedtextURL,
		lang:       "en",
	}
}

// NewTranscriptClientWithBaseURL is used by tests to point the client
// at a fake endpoint.
func NewTranscriptClientWithBaseURL(baseURL string) *TranscriptClient {
	c := NewTranscriptClient()
	c.baseURL = baseURL
	return c
}

// timedtext json3 response shapes.
type timedtextResponse struct {
	Events []timedtextEvent `json:"events"`
}

type timedtextEvent struct {
	StartMs    int64              `json:"tStartMs"`
	DurationMs int64              `json:"dDurationMs"`
	Segs       []timedtextSegment `json:"segs,omitempty"`
}

type timedtextSegment struct {
	UTF8 string `json:"utf8"`
}

// FetchSegments retrieves the ordered caption segments for a video.
// ErrNoTranscript is returned when captions are unavailable or
// disabled; transport failures surface as *FetchError.
func (c *TranscriptClient) FetchSegments(ctx context.Context, videoID string) ([]CaptionSegment, error) {
	if videoID == "" {
		return nil, fmt.Errorf("video ID is required")
	}

	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", c.lang)
	params.Set("fmt", "json3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, &FetchError{Endpoint: "timedtext", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Endpoint: "timedtext", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// captions may still be absent; checked below
	case http.StatusNotFound, http.StatusForbidden:
		return nil, fmt.Errorf("video %s: %w", videoID, ErrNoTranscript)
	default:
		return nil, &FetchError{Endpoint: "timedtext", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Endpoint: "timedtext", Err: err}
	}

	// The timedtext endpoint answers 200 with an empty body for videos
	// that have no caption track.
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrNoTranscript)
	}

	segments, err := parseTimedtext(body)
	if err != nil {
		return nil, fmt.Errorf("parse timedtext response: %w", err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrNoTranscript)
	}

	return segments, nil
}

// FetchTranscript retrieves the captions for a video and joins them
// into one normalized string.
func (c *TranscriptClient) FetchTranscript(ctx context.Context, videoID string) (string, error) {
	segments, err := c.FetchSegments(ctx, videoID)
	if err != nil {
		return "", err
	}
	return JoinSegments(segments), nil
}

func parseTimedtext(data []byte) ([]CaptionSegment, error) {
	var resp timedtextResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal timedtext JSON: %w", err)
	}

	var segments []CaptionSegment
	for _, event := range resp.Events {
		// events without segs carry window metadata, not text
		if len(event.Segs) == 0 {
			continue
		}

		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}

		segments = append(segments, CaptionSegment{
			Text:        text.String(),
			StartOffset: time.Duration(event.StartMs) * time.Millisecond,
			Duration:    time.Duration(event.DurationMs) * time.Millisecond,
		})
	}

	return segments, nil
}

// JoinSegments concatenates caption segments in their original order
// with single-space separators, decoding HTML entities. Caption feeds
// double-escape apostrophes (`it&amp;#39;s`), so unescaping repeats
// until the text is stable.
func JoinSegments(segments []CaptionSegment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(strings.ReplaceAll(seg.Text, "\n", " "))
		if text == "" {
			continue
		}
		parts = append(parts, unescapeFully(text))
	}
	return strings.Join(parts, " ")
}

func unescapeFully(s string) string {
	for i := 0; i < 3; i++ {
		unescaped := html.UnescapeString(s)
		if unescaped == s {
			break
		}
		s = unescaped
	}
	return s
}
