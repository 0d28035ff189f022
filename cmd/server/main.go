// HTTP server for the video summarization API.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"

	"tubebrief.dev/tubebrief/internal/api"
	"tubebrief.dev/tubebrief/internal/chat"
	"tubebrief.dev/tubebrief/internal/config"
	"tubebrief.dev/tubebrief/internal/embeddings"
	"tubebrief.dev/tubebrief/internal/prompt"
	"tubebrief.dev/tubebrief/internal/storage"
	"tubebrief.dev/tubebrief/internal/storage/db"
	"tubebrief.dev/tubebrief/internal/storage/postgres"
	"tubebrief.dev/tubebrief/internal/telemetry"
	"tubebrief.dev/tubebrief/internal/youtube"
)

// flushGrace bounds the final telemetry flush during shutdown.
const flushGrace = 5 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	openaiClient := openai.NewClient(cfg.OpenAIKey)
	tracer := telemetry.NewTracer(cfg.TelemetryURL)
	defer tracer.Close()

	deps := api.Deps{
		Metadata:       youtube.NewOEmbedClient(),
		Transcripts:    youtube.NewTranscriptClient(),
		Chat:           chat.NewService(openaiClient, cfg.OpenAIModel, cfg.ChatTimeout, tracer),
		Composer:       prompt.NewComposer(cfg.MaxTranscriptChars),
		APIKey:         cfg.APIKey,
		AllowedOrigins: cfg.AllowedOrigins,
	}

	if cfg.DatabaseURL != "" {
		database, err := db.NewConnection(db.Config{URL: cfg.DatabaseURL})
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer database.Close()

		deps.Archive = storage.NewArchiver(
			postgres.NewArchiveRepository(database),
			embeddings.New(openaiClient),
		)
		log.Println("Transcript archive enabled")
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewRouter(deps),
	}

	go func() {
		log.Printf("Starting HTTP server on :%s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), flushGrace)
	defer flushCancel()
	tracer.Flush(flushCtx)
}
