// Package storage archives transcripts for semantic search. The
// archive is optional and best-effort: the summarization pipeline
// itself stays stateless and never depends on it.
package storage

import (
	"context"
	"fmt"

	"tubebrief.dev/tubebrief/internal/storage/models"
	"tubebrief.dev/tubebrief/internal/storage/postgres"
)

// Embedder converts text to embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Archiver stores transcripts and serves semantic search over their
// embedded chunks.
type Archiver struct {
	repo     *postgres.ArchiveRepository
	embedder Embedder
}

func NewArchiver(repo *postgres.ArchiveRepository, embedder Embedder) *Archiver {
	return &Archiver{repo: repo, embedder: embedder}
}

// Archive saves the transcript and its embedded chunks. Called
// asynchronously after a successful intake; errors are the caller's
// to log, never to surface to the user.
func (a *Archiver) Archive(ctx context.Context, video *models.Video) error {
	rowID, err := a.repo.SaveVideo(ctx, video)
	if err != nil {
		return fmt.Errorf("archive video %s: %w", video.VideoID, err)
	}

	chunks := SplitChunks(video.Transcript)
	for i := range chunks {
		embedding, err := a.embedder.Embed(ctx, chunks[i].Text)
		if err != nil {
			return fmt.Errorf("embed chunk %d of video %s: %w", i, video.VideoID, err)
		}
		chunks[i].Embedding = embedding
	}

	if err := a.repo.ReplaceChunks(ctx, rowID, chunks); err != nil {
		return fmt.Errorf("archive chunks of video %s: %w", video.VideoID, err)
	}
	return nil
}

// Search embeds the query and returns the closest archived chunks.
func (a *Archiver) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	embedding, err := a.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed search query: %w", err)
	}

	return a.repo.Search(ctx, embedding, limit)
}
