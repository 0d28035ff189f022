package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"tubebrief.dev/tubebrief/internal/prompt"
	"tubebrief.dev/tubebrief/internal/storage/models"
	"tubebrief.dev/tubebrief/internal/youtube"
)

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

// Archiver stores transcripts and searches over them. Optional; a nil
// Archiver disables /search and archiving.
type Archiver interface {
	Archive(ctx context.Context, video *models.Video) error
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

// Deps are the injected collaborators of the HTTP API.
type Deps struct {
	Metadata    MetadataFetcher
	Transcripts TranscriptFetcher
	Chat        ChatStreamer
	Composer    *prompt.Composer

	// Archive may be nil.
	Archive Archiver

	// APIKey gates non-public routes when non-empty.
	APIKey string

	// AllowedOrigins configures CORS for the SPA; empty allows all.
	AllowedOrigins []string
}

type Router struct {
	*mux.Router
	deps Deps
}

func NewRouter(deps Deps) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		deps:   deps,
	}

	c := cors.New(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "X-API-Key", requestIDHeader},
	})
	r.Use(c.Handler)
	r.Use(requestIDMiddleware)

	// Public routes
	public := r.Router.PathPrefix("/public").Subrouter()
	public.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Protected routes
	protected := r.Router.PathPrefix("").Subrouter()
	if deps.APIKey != "" {
		protected.Use(newAuthMiddleware(deps.APIKey))
	}

	protected.HandleFunc("/video", r.getVideo).Methods(http.MethodGet)
	protected.HandleFunc("/chat", r.postChat).Methods(http.MethodPost)
	if deps.Archive != nil {
		protected.HandleFunc("/search", r.searchTranscripts).Methods(http.MethodPost)
	}

	return r
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
