package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"tubebrief.dev/tubebrief/internal/chat"
	"tubebrief.dev/tubebrief/internal/prompt"
	"tubebrief.dev/tubebrief/internal/storage/models"
	"tubebrief.dev/tubebrief/internal/youtube"
)

// archiveTimeout bounds the background archival of a transcript.
const archiveTimeout = 60 * time.Second

// getVideo handles GET /video?url=&length=. It validates the URL,
// fetches metadata and transcript concurrently, and returns the
// conversation's first user turn. Partial success aborts the whole
// intake: no seed is returned unless both fetches succeed.
func (r *Router) getVideo(w http.ResponseWriter, req *http.Request) {
	rawURL := req.URL.Query().Get("url")
	if rawURL == "" {
		r.writeError(w, http.StatusBadRequest, "Missing url")
		return
	}

	videoID, ok := youtube.ExtractVideoID(rawURL)
	if !ok {
		r.writeError(w, http.StatusBadRequest, "Invalid YouTube URL")
		return
	}
	length := prompt.ParseSummaryLength(req.URL.Query().Get("length"))

	ctx := req.Context()
	videoURL := youtube.WatchURL(videoID)

	type metadataResult struct {
		meta *youtube.VideoMetadata
		err  error
	}
	metaCh := make(chan metadataResult, 1)
	go func() {
		meta, err := r.deps.Metadata.FetchMetadata(ctx, videoURL)
		metaCh <- metadataResult{meta: meta, err: err}
	}()

	transcript, err := r.deps.Transcripts.FetchTranscript(ctx, videoID)
	mr := <-metaCh

	if mr.err != nil {
		log.Printf("video %s: metadata fetch failed: %v", videoID, mr.err)
		r.writeFetchError(w, mr.err)
		return
	}
	if err != nil {
		log.Printf("video %s: transcript fetch failed: %v", videoID, err)
		r.writeFetchError(w, err)
		return
	}

	seed := r.deps.Composer.Seed(mr.meta.Title, mr.meta.AuthorName, transcript, length)

	if r.deps.Archive != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
			defer cancel()
			archiveErr := r.deps.Archive.Archive(ctx, &models.Video{
				VideoID:    videoID,
				VideoURL:   videoURL,
				Title:      mr.meta.Title,
				AuthorName: mr.meta.AuthorName,
				Transcript: transcript,
			})
			if archiveErr != nil {
				log.Printf("video %s: archive failed: %v", videoID, archiveErr)
			}
		}()
	}

	r.writeJSON(w, http.StatusOK, VideoResponse{
		Title:              mr.meta.Title,
		AuthorName:         mr.meta.AuthorName,
		AuthorURL:          mr.meta.AuthorURL,
		VideoID:            videoID,
		SummaryUserMessage: seed[1],
	})
}

// postChat handles POST /chat: it streams the assistant reply as
// chunked plain text. The system instruction is prepended server-side
// when the client history does not carry one.
func (r *Router) postChat(w http.ResponseWriter, req *http.Request) {
	var chatReq ChatRequest
	if err := json.NewDecoder(req.Body).Decode(&chatReq); err != nil {
		r.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(chatReq.Messages) == 0 {
		r.writeError(w, http.StatusBadRequest, "Messages must not be empty")
		return
	}

	messages := chatReq.Messages
	if messages[0].Role != prompt.RoleSystem {
		messages = append([]prompt.Message{r.deps.Composer.System()}, messages...)
	}

	flusher, canFlush := w.(http.Flusher)
	wrote := false

	err := r.deps.Chat.Stream(req.Context(), messages, func(chunk string) error {
		if !wrote {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("X-Accel-Buffering", "no")
			w.WriteHeader(http.StatusOK)
			wrote = true
		}
		if _, werr := io.WriteString(w, chunk); werr != nil {
			return werr
		}
		if canFlush {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		log.Printf("chat stream failed: %v", err)
		if wrote {
			// headers are gone; the truncated stream is the signal
			return
		}
		if errors.Is(err, chat.ErrTimeout) {
			r.writeError(w, http.StatusGatewayTimeout, "Chat completion timed out")
			return
		}
		r.writeError(w, http.StatusBadGateway, "Chat completion failed")
	}
}

// searchTranscripts handles POST /search over the archived chunks.
func (r *Router) searchTranscripts(w http.ResponseWriter, req *http.Request) {
	var searchReq SearchRequest
	if err := json.NewDecoder(req.Body).Decode(&searchReq); err != nil {
		r.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if searchReq.Query == "" {
		r.writeError(w, http.StatusBadRequest, "Query must not be empty")
		return
	}
	if searchReq.Limit == 0 {
		searchReq.Limit = 5
	}

	results, err := r.deps.Archive.Search(req.Context(), searchReq.Query, searchReq.Limit)
	if err != nil {
		log.Printf("search failed: %v", err)
		r.writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	r.writeJSON(w, http.StatusOK, map[string][]models.SearchResult{"results": results})
}

func (r *Router) writeFetchError(w http.ResponseWriter, err error) {
	var schemaErr *youtube.SchemaError
	switch {
	case errors.Is(err, youtube.ErrNoTranscript):
		r.writeError(w, http.StatusNotFound, "No transcript is available for this video")
	case errors.As(err, &schemaErr):
		r.writeError(w, http.StatusBadGateway, "Unexpected response from video metadata service")
	default:
		r.writeError(w, http.StatusBadGateway, "Failed to process video")
	}
}

func (r *Router) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func (r *Router) writeError(w http.ResponseWriter, status int, msg string) {
	r.writeJSON(w, status, ErrorResponse{Error: msg})
}
