package deduplication

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercases scheme and host",
			in:   "HTTPS://Example.COM/Path",
			want: "https://example.com/Path",
		},
		{
			name: "strips tracking params keeps the rest",
			in:   "https://example.com/post?utm_source=feed&utm_medium=rss&id=42",
			want: "https://example.com/post?id=42",
		},
		{
			name: "strips fbclid and gclid",
			in:   "https://example.com/post?fbclid=abc&gclid=def",
			want: "https://example.com/post",
		},
		{
			name: "drops fragment",
			in:   "https://example.com/post#comments",
			want: "https://example.com/post",
		},
		{
			name: "trims trailing slash",
			in:   "https://example.com/post/",
			want: "https://example.com/post",
		},
		{
			name: "surrounding whitespace",
			in:   "  https://example.com/post  ",
			want: "https://example.com/post",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.in); got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeURLCollapsesVariants(t *testing.T) {
	variants := []string{
		"https://example.com/post",
		"https://example.com/post/",
		"https://example.com/post#top",
		"https://EXAMPLE.com/post?utm_campaign=x",
	}
	want := NormalizeURL(variants[0])
	for _, v := range variants[1:] {
		if got := NormalizeURL(v); got != want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", v, got, want)
		}
	}
}
