package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultOEmbedURL = "https://www.youtube.com/oembed"

// VideoMetadata is the subset of YouTube's oEmbed response the
// pipeline consumes. Fetched once per submission, never cached.
type VideoMetadata struct {
	Title           string `json:"title"`
	AuthorName      string `json:"author_name"`
	AuthorURL       string `json:"author_url"`
	Type            string `json:"type"`
	ProviderName    string `json:"provider_name"`
	ProviderURL     string `json:"provider_url"`
	ThumbnailURL    string `json:"thumbnail_url"`
	ThumbnailWidth  int    `json:"thumbnail_width"`
	ThumbnailHeight int    `json:"thumbnail_height"`
	HTML            string `json:"html"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
}

// OEmbedClient fetches video metadata from YouTube's public oEmbed
// endpoint. The zero value is not usable; construct with NewOEmbedClient.
type OEmbedClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewOEmbedClient() *OEmbedClient {
	return &OEmbedClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultOEmbedURL,
	}
}

// NewOEmbedClientWithBaseURL is used by tests to point the client at a
// fake endpoint.
func NewOEmbedClientWithBaseURL(baseURL string) *OEmbedClient {
	c := NewOEmbedClient()
	c.baseURL = baseURL
	return c
}

// FetchMetadata retrieves title/author/provider fields for the given
// watch URL. It does not retry: transport failures and non-2xx
// responses surface as *FetchError, unexpected bodies as *SchemaError.
func (c *OEmbedClient) FetchMetadata(ctx context.Context, videoURL string) (*VideoMetadata, error) {
	params := url.Values{}
	params.Set("url", videoURL)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, &FetchError{Endpoint: "oembed", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Endpoint: "oembed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{Endpoint: "oembed", StatusCode: resp.StatusCode}
	}

	var meta VideoMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, &SchemaError{Endpoint: "oembed", Missing: "valid JSON body"}
	}

	if meta.Title == "" {
		return nil, &SchemaError{Endpoint: "oembed", Missing: "title"}
	}
	if meta.AuthorName == "" {
		return nil, &SchemaError{Endpoint: "oembed", Missing: "author_name"}
	}

	return &meta, nil
}
