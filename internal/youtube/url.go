package youtube

import "regexp"

// videoIDLen is the length of every canonical YouTube video identifier.
const videoIDLen = 11

// Supported URL shapes:
//   - youtube.com/watch?v=VIDEO_ID (including m.youtube.com)
//   - youtu.be/VIDEO_ID
//   - youtube.com/embed/VIDEO_ID
//   - youtube.com/v/VIDEO_ID
//   - youtube.com/u/<channel>/... with ?v=VIDEO_ID
//   - youtube.com/shorts/VIDEO_ID
//   - youtube.com/live/VIDEO_ID
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:m\.)?youtube\.com/watch\?(?:[^#&?]*&)*v=([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`),
	regexp.MustCompile(`youtube\.com/(?:embed|v)/([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`),
	regexp.MustCompile(`youtube\.com/u/\w+/.*[?&]v=([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`),
	regexp.MustCompile(`youtube\.com/(?:shorts|live)/([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`),
}

// ExtractVideoID pulls the 11-character video identifier out of any
// recognized YouTube URL shape. It is a pure function over arbitrary
// input: unrecognized or malformed strings return ok=false, never an
// error or a panic.
func ExtractVideoID(url string) (string, bool) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(url); len(m) > 1 && len(m[1]) == videoIDLen {
			return m[1], true
		}
	}
	return "", false
}

// IsValidYouTubeURL reports whether a video ID can be extracted from url.
func IsValidYouTubeURL(url string) bool {
	_, ok := ExtractVideoID(url)
	return ok
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
