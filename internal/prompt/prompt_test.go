package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	c := NewComposer(0)
	messages := c.Seed("T", "A", "x y z", LengthBalanced)

	require.Len(t, messages, 2)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.NotEmpty(t, messages[0].Content)

	assert.Equal(t, RoleUser, messages[1].Role)
	assert.Contains(t, messages[1].Content, "T")
	assert.Contains(t, messages[1].Content, "A")
	assert.Contains(t, messages[1].Content, "x y z")
}

func TestSeedLengthVariants(t *testing.T) {
	tests := []struct {
		length SummaryLength
		want   string
	}{
		{LengthBrief, "2-3 sentences"},
		{LengthBalanced, "4-5 sentences"},
		{LengthThorough, "6-8 sentences"},
		{SummaryLength("bogus"), "4-5 sentences"}, // falls back to balanced
	}

	c := NewComposer(0)
	for _, tt := range tests {
		t.Run(string(tt.length), func(t *testing.T) {
			messages := c.Seed("Title", "Author", "transcript", tt.length)
			assert.Contains(t, messages[1].Content, tt.want)
		})
	}
}

func TestSeedClipsLongTranscript(t *testing.T) {
	transcript := strings.Repeat("word ", 100) // 500 chars
	c := NewComposer(103)

	messages := c.Seed("Title", "Author", transcript, LengthBalanced)
	content := messages[1].Content

	assert.NotContains(t, content, strings.Repeat("word ", 25))
	// clipped on a word boundary, no partial token
	assert.Contains(t, content, "Transcript:\nword word")
	assert.NotContains(t, content, "wor\n")
}

func TestSeedNoClipWhenDisabled(t *testing.T) {
	transcript := strings.Repeat("word ", 10000)
	c := NewComposer(0)

	messages := c.Seed("Title", "Author", transcript, LengthBalanced)
	assert.Contains(t, messages[1].Content, transcript)
}

func TestParseSummaryLength(t *testing.T) {
	tests := []struct {
		in   string
		want SummaryLength
	}{
		{"brief", LengthBrief},
		{"Brief", LengthBrief},
		{" thorough ", LengthThorough},
		{"balanced", LengthBalanced},
		{"", LengthBalanced},
		{"nonsense", LengthBalanced},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSummaryLength(tt.in), "input %q", tt.in)
	}
}
