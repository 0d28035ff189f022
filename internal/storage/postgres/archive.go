package postgres

import (
	"context"
	"database/sql"
	"fmt"

	pgvector "github.com/pgvector/pgvector-go"

	"tubebrief.dev/tubebrief/internal/storage/models"
)

// ArchiveRepository persists archived transcripts and their
// embedded chunks. Schema lives in schema.sql at the repo root.
type ArchiveRepository struct {
	db *sql.DB
}

func NewArchiveRepository(db *sql.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// SaveVideo upserts one archived transcript keyed by video ID and
// returns the row ID. Re-submitting the same video refreshes the
// stored transcript.
func (r *ArchiveRepository) SaveVideo(ctx context.Context, video *models.Video) (string, error) {
	const query = `
		INSERT INTO videos (id, video_id, video_url, title, author_name, transcript, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (video_id) DO UPDATE
		SET title = EXCLUDED.title,
		    author_name = EXCLUDED.author_name,
		    transcript = EXCLUDED.transcript,
		    updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		video.VideoID,
		video.VideoURL,
		video.Title,
		video.AuthorName,
		video.Transcript,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("video upsert failed: %w", err)
	}
	return id, nil
}

// ReplaceChunks deletes any previous chunks for the video row and
// inserts the new set.
func (r *ArchiveRepository) ReplaceChunks(ctx context.Context, videoRowID string, chunks []models.Chunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM video_chunks WHERE video_id = $1`, videoRowID); err != nil {
		return fmt.Errorf("delete stale chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO video_chunks (video_id, chunk_text, chunk_embedding, chunk_start, chunk_end)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("prepare statement failed: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		_, err = stmt.ExecContext(ctx,
			videoRowID,
			chunk.Text,
			pgvector.NewVector(chunk.Embedding),
			chunk.Start,
			chunk.End,
		)
		if err != nil {
			return fmt.Errorf("chunk insert failed: %w", err)
		}
	}

	return tx.Commit()
}

// Search returns the chunks closest to the query embedding by cosine
// similarity.
func (r *ArchiveRepository) Search(ctx context.Context, embedding []float32, limit int) ([]models.SearchResult, error) {
	vector := pgvector.NewVector(embedding)

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			v.video_id,
			v.title,
			vc.chunk_text,
			vc.chunk_start,
			vc.chunk_end,
			1 - (vc.chunk_embedding <=> $1) AS similarity
		FROM video_chunks vc
		JOIN videos v ON v.id = vc.video_id
		ORDER BY vc.chunk_embedding <=> $1
		LIMIT $2
	`, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("chunk search failed: %w", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var result models.SearchResult
		err := rows.Scan(
			&result.VideoID,
			&result.Title,
			&result.ChunkText,
			&result.Start,
			&result.End,
			&result.Similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}
