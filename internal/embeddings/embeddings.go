// Package embeddings converts text to vectors for the transcript
// archive's semantic search.
package embeddings

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Client wraps the embedding endpoint. The underlying completion
// client is shared with the chat service.
type Client struct {
	api *openai.Client
}

func New(api *openai.Client) *Client {
	return &Client{api: api}
}

// Embed converts text to an embedding vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.AdaEmbeddingV2,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding creation failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}

	return resp.Data[0].Embedding, nil
}
