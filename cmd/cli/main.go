// Interactive terminal client: paste a YouTube URL, read the streamed
// summary, ask follow-up questions. Pasting a new URL mid-stream
// abandons the current summary and starts over.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"

	"tubebrief.dev/tubebrief/internal/chat"
	"tubebrief.dev/tubebrief/internal/config"
	"tubebrief.dev/tubebrief/internal/prompt"
	"tubebrief.dev/tubebrief/internal/session"
	"tubebrief.dev/tubebrief/internal/telemetry"
	"tubebrief.dev/tubebrief/internal/youtube"
)

func main() {
	urlFlag := flag.String("url", "", "summarize one URL and exit (buffered mode)")
	lengthFlag := flag.String("length", "balanced", "summary length: brief, balanced or thorough")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client := openai.NewClient(cfg.OpenAIKey)
	tracer := telemetry.NewTracer(cfg.TelemetryURL)
	defer func() {
		tracer.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tracer.Flush(ctx)
	}()

	svc := chat.NewService(client, cfg.OpenAIModel, cfg.ChatTimeout, tracer)
	composer := prompt.NewComposer(cfg.MaxTranscriptChars)
	metadata := youtube.NewOEmbedClient()
	transcripts := youtube.NewTranscriptClient()
	length := prompt.ParseSummaryLength(*lengthFlag)

	if *urlFlag != "" {
		if err := summarizeOnce(svc, composer, metadata, transcripts, *urlFlag, length); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	}

	sess := session.New(metadata, transcripts, svc, composer)
	runInteractive(sess, length)
}

// summarizeOnce runs the pipeline in buffered mode and prints the
// complete summary.
func summarizeOnce(svc *chat.Service, composer *prompt.Composer, metadata *youtube.OEmbedClient, transcripts *youtube.TranscriptClient, rawURL string, length prompt.SummaryLength) error {
	videoID, ok := youtube.ExtractVideoID(rawURL)
	if !ok {
		return session.ErrInvalidURL
	}

	ctx := context.Background()
	meta, err := metadata.FetchMetadata(ctx, youtube.WatchURL(videoID))
	if err != nil {
		return err
	}
	transcript, err := transcripts.FetchTranscript(ctx, videoID)
	if err != nil {
		return err
	}

	summary, err := svc.Complete(ctx, composer.Seed(meta.Title, meta.AuthorName, transcript, length))
	if err != nil {
		return err
	}

	fmt.Printf("%s — %s\n\n%s\n", meta.Title, meta.AuthorName, summary)
	return nil
}

func runInteractive(sess *session.Session, length prompt.SummaryLength) {
	fmt.Println("Paste a YouTube URL to summarize it. Ask anything afterwards.")
	fmt.Println("Commands: /new <url>, /quit")

	emit := func(chunk string) { fmt.Print(chunk) }
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("\n[%s] > ", sess.State())
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit", line == "/exit":
			return
		case strings.HasPrefix(line, "/new "):
			line = strings.TrimSpace(strings.TrimPrefix(line, "/new "))
			fallthrough
		case youtube.IsValidYouTubeURL(line):
			if err := submit(sess, line, length, emit); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		default:
			if err := sess.Ask(context.Background(), line, emit); err != nil {
				if errors.Is(err, session.ErrNotReady) {
					fmt.Println("Load a video first by pasting its URL.")
					continue
				}
				fmt.Printf("Error: %v\n", err)
			}
			fmt.Println()
		}
	}
}

func submit(sess *session.Session, url string, length prompt.SummaryLength, emit func(string)) error {
	if meta := sess.Metadata(); meta != nil {
		fmt.Printf("Discarding %q.\n", meta.Title)
	}

	err := sess.Submit(context.Background(), url, length, emit)
	if err != nil {
		return err
	}

	if meta := sess.Metadata(); meta != nil {
		fmt.Printf("\n\nLoaded %q by %s. Ask away.\n", meta.Title, meta.AuthorName)
	}
	return nil
}
