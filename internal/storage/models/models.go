package models

import "time"

// Video is one archived transcript, keyed by the canonical 11-char
// video identifier.
type Video struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"videoId"`
	VideoURL   string    `json:"videoUrl"`
	Title      string    `json:"title"`
	AuthorName string    `json:"authorName"`
	Transcript string    `json:"transcript"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Chunk is a contiguous slice of a transcript with its embedding,
// used for semantic search. Start and End are rune offsets into the
// normalized transcript.
type Chunk struct {
	Text      string
	Start     int
	End       int
	Embedding []float32
}

// SearchResult is one semantic-search hit over archived chunks.
type SearchResult struct {
	VideoID    string  `json:"videoId"`
	Title      string  `json:"title"`
	ChunkText  string  `json:"chunkText"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Similarity float64 `json:"similarity"`
}
