package storage

import (
	"strings"

	"tubebrief.dev/tubebrief/internal/storage/models"
)

// chunkTargetLen is the approximate character length of one search
// chunk; sentences accumulate until it is exceeded.
const chunkTargetLen = 500

// overlapSentences is how many trailing sentences carry over into the
// next chunk so search hits do not lose context at chunk edges.
const overlapSentences = 2

// SplitChunks breaks a normalized transcript into overlapping chunks
// suitable for embedding. Embeddings are filled in by the Archiver.
func SplitChunks(text string) []models.Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := strings.Split(text, ". ")

	var chunks []models.Chunk
	var current strings.Builder
	chunkStart := 0

	for i, sentence := range sentences {
		current.WriteString(sentence)
		if i < len(sentences)-1 {
			current.WriteString(". ")
		}

		if i == len(sentences)-1 || current.Len() > chunkTargetLen {
			chunkText := strings.TrimSpace(current.String())
			chunks = append(chunks, models.Chunk{
				Text:  chunkText,
				Start: chunkStart,
				End:   chunkStart + len(chunkText),
			})

			if i < len(sentences)-1 {
				current.Reset()
				overlapFrom := i - overlapSentences + 1
				if overlapFrom < 0 {
					overlapFrom = 0
				}
				// replay the overlap so the next chunk keeps trailing context
				for j := overlapFrom; j <= i; j++ {
					current.WriteString(sentences[j])
					current.WriteString(". ")
				}
				chunkStart = offsetOfSentence(sentences, overlapFrom)
			}
		}
	}

	return chunks
}

func offsetOfSentence(sentences []string, index int) int {
	offset := 0
	for i := 0; i < index; i++ {
		offset += len(sentences[i]) + 2 // ". " separator
	}
	return offset
}
