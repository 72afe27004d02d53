package util

import (
	"testing"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		href   string
		want   string
	}{
		{
			name:   "Relative path",
			origin: "https://www.yad2.co.il",
			href:   "/realestate/item/abc123",
			want:   "https://www.yad2.co.il/realestate/item/abc123",
		},
		{
			name:   "Relative path without leading slash",
			origin: "https://www.yad2.co.il",
			href:   "realestate/item/abc123",
			want:   "https://www.yad2.co.il/realestate/item/abc123",
		},
		{
			name:   "Absolute link kept",
			origin: "https://www.yad2.co.il",
			href:   "https://other.example.com/x",
			want:   "https://other.example.com/x",
		},
		{
			name:   "Empty href",
			origin: "https://www.yad2.co.il",
			href:   "",
			want:   "",
		},
		{
			name:   "Whitespace href",
			origin: "https://www.yad2.co.il",
			href:   "   ",
			want:   "",
		},
		{
			name:   "Remove UTM params",
			origin: "https://www.yad2.co.il",
			href:   "/realestate/item/abc?utm_source=foo&utm_medium=bar",
			want:   "https://www.yad2.co.il/realestate/item/abc",
		},
		{
			name:   "Keep functional params",
			origin: "https://www.yad2.co.il",
			href:   "/realestate/item/abc?opened-from=feed",
			want:   "https://www.yad2.co.il/realestate/item/abc?opened-from=feed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveURL(tt.origin, tt.href); got != tt.want {
				t.Errorf("ResolveURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsHTTPURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://www.yad2.co.il/realestate/rent", true},
		{"http://127.0.0.1:8080/list", true},
		{"ftp://example.com/file", false},
		{"/relative/path", false},
		{"https://", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsHTTPURL(tt.input); got != tt.want {
			t.Errorf("IsHTTPURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	got := CleanText("  דירה,\n\t 3 חדרים   ")
	if got != "דירה, 3 חדרים" {
		t.Errorf("CleanText() = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{"Short string kept", "abc", 5, "abc"},
		{"Exact length kept", "abcde", 5, "abcde"},
		{"Cut with ellipsis", "abcdef", 5, "abcd…"},
		{"Multibyte runes", "שלום עולם", 4, "שלו…"},
		{"Zero limit", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.limit); got != tt.want {
				t.Errorf("Truncate() = %q, want %q", got, tt.want)
			}
		})
	}
}
