package youtube

import "regexp"

// watchPattern matches the known YouTube URL shapes and captures the video id:
// youtu.be/<id>, youtube.com/watch?v=<id>, youtube.com/embed/<id>,
// youtube.com/v/<id>.
var watchPattern = regexp.MustCompile(`(?:youtu\.be/|youtube\.com/(?:watch\?v=|embed/|v/))([^&?\s]+)`)

// EmbedURL normalizes a YouTube link to its embeddable form. Unrecognized
// URLs are returned unchanged so the client can still open them directly.
func EmbedURL(url string) string {
	match := watchPattern.FindStringSubmatch(url)
	if match == nil {
		return url
	}
	return "https://www.youtube.com/embed/" + match[1]
}

// VideoID extracts the video identifier from a YouTube link, if present.
func VideoID(url string) (string, bool) {
	match := watchPattern.FindStringSubmatch(url)
	if match == nil {
		return "", false
	}
	return match[1], true
}
