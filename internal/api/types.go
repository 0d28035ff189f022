package api

import "tubebrief.dev/tubebrief/internal/prompt"

// VideoResponse is the payload of GET /video: resolved metadata plus
// the synthesized first user turn. The client seeds its conversation
// with [system, summaryUserMessage].
type VideoResponse struct {
	Title              string         `json:"title"`
	AuthorName         string         `json:"authorName"`
	AuthorURL          string         `json:"authorUrl"`
	VideoID            string         `json:"videoId"`
	SummaryUserMessage prompt.Message `json:"summaryUserMessage"`
}

// ChatRequest is the payload of POST /chat: the full ordered message
// history, resent on every call.
type ChatRequest struct {
	Messages []prompt.Message `json:"messages"`
}

// SearchRequest is the payload of POST /search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
