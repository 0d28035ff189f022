// Package prompt builds the conversation seed sent to the chat model:
// a fixed system instruction plus one user turn interpolating the
// video's title, author and transcript.
package prompt

import "strings"

// Message roles, matching the chat-completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation. An ordered slice of messages
// forms the full history resent on every completion call.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SummaryLength selects which instruction template the composer uses.
// It affects nothing outside this package.
type SummaryLength string

const (
	LengthBrief    SummaryLength = "brief"
	LengthBalanced SummaryLength = "balanced"
	LengthThorough SummaryLength = "thorough"
)

// ParseSummaryLength maps user input onto a known length, defaulting
// to balanced for empty or unrecognized values.
func ParseSummaryLength(s string) SummaryLength {
	switch SummaryLength(strings.ToLower(strings.TrimSpace(s))) {
	case LengthBrief:
		return LengthBrief
	case LengthThorough:
		return LengthThorough
	default:
		return LengthBalanced
	}
}

const systemInstruction = "You are a helpful assistant that provides concise summaries of YouTube videos and answers follow-up questions grounded in the video's transcript."

var lengthInstructions = map[SummaryLength]string{
	LengthBrief:    "Provide a very concise summary in 2-3 sentences.",
	LengthBalanced: "Provide a balanced summary with key points. Aim for 4-5 sentences.",
	LengthThorough: "Provide a comprehensive summary covering all major points. Use 6-8 sentences.",
}

// Composer produces conversation seeds. Transcripts longer than
// maxTranscriptChars are clipped on a word boundary before embedding,
// keeping the head of the transcript.
type Composer struct {
	maxTranscriptChars int
}

// NewComposer creates a Composer. maxTranscriptChars <= 0 disables
// clipping.
func NewComposer(maxTranscriptChars int) *Composer {
	return &Composer{maxTranscriptChars: maxTranscriptChars}
}

// System returns the fixed system instruction, always index 0 of a
// conversation.
func (c *Composer) System() Message {
	return Message{Role: RoleSystem, Content: systemInstruction}
}

// Seed returns the two-message conversation seed for a freshly
// resolved video. Interpolation is literal substitution; transcript
// content is not escaped.
func (c *Composer) Seed(title, author, transcript string, length SummaryLength) []Message {
	instruction, ok := lengthInstructions[length]
	if !ok {
		instruction = lengthInstructions[LengthBalanced]
	}

	var b strings.Builder
	b.WriteString("Please provide a summary of the YouTube video \"")
	b.WriteString(title)
	b.WriteString("\" by ")
	b.WriteString(author)
	b.WriteString(". ")
	b.WriteString(instruction)
	b.WriteString(" Focus on the main points and key takeaways.\n\nTranscript:\n")
	b.WriteString(c.clip(transcript))
	b.WriteString("\n")

	return []Message{
		c.System(),
		{Role: RoleUser, Content: b.String()},
	}
}

func (c *Composer) clip(transcript string) string {
	if c.maxTranscriptChars <= 0 || len(transcript) <= c.maxTranscriptChars {
		return transcript
	}
	clipped := transcript[:c.maxTranscriptChars]
	if i := strings.LastIndexByte(clipped, ' '); i > 0 {
		clipped = clipped[:i]
	}
	return clipped
}
