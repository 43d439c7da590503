package youtube

import "testing"

func TestEmbedURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"short", "https://youtu.be/dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"embed already", "https://www.youtube.com/embed/dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"v path", "https://www.youtube.com/v/dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"watch with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"unrecognized stays as-is", "https://vimeo.com/123456", "https://vimeo.com/123456"},
		{"not a url", "hello world", "hello world"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EmbedURL(tc.in); got != tc.want {
				t.Fatalf("EmbedURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestVideoID(t *testing.T) {
	id, ok := VideoID("https://youtu.be/abc123XYZ_-")
	if !ok || id != "abc123XYZ_-" {
		t.Fatalf("got (%q, %v), want (abc123XYZ_-, true)", id, ok)
	}

	if _, ok := VideoID("https://example.com/watch?v=abc"); ok {
		t.Fatal("expected no match for non-YouTube host path")
	}
}
