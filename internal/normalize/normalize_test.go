package normalize

import (
	"reflect"
	"testing"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"single", "work", []string{"work"}},
		{"trims and lowercases", "  Work , RESEARCH ", []string{"work", "research"}},
		{"drops empties", "a,,b, ,c", []string{"a", "b", "c"}},
		{"dedupes keeping first", "go,Go,GO,rust", []string{"go", "rust"}},
		{"only separators", " , , ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTags(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTags(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" A", "a", "", "b "})
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags = %v, want %v", got, want)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello   world  ", "hello world"},
		{"one\n\ttwo", "one two"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := CleanText(tt.in); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 100); got != "short" {
		t.Errorf("Truncate short = %q", got)
	}
	got := Truncate("abcdefghij", 8)
	if got != "abcde..." {
		t.Errorf("Truncate = %q, want %q", got, "abcde...")
	}
}

func TestValidURL(t *testing.T) {
	valid := []string{"https://example.com/page", "http://localhost:8080"}
	invalid := []string{"", "ftp://example.com", "not a url", "example.com"}
	for _, u := range valid {
		if !ValidURL(u) {
			t.Errorf("ValidURL(%q) = false, want true", u)
		}
	}
	for _, u := range invalid {
		if ValidURL(u) {
			t.Errorf("ValidURL(%q) = true, want false", u)
		}
	}
}

func TestDomain(t *testing.T) {
	if got := Domain("https://blog.example.com/post/1"); got != "blog.example.com" {
		t.Errorf("Domain = %q", got)
	}
	if got := Domain("::bad::"); got != "" {
		t.Errorf("Domain of garbage = %q, want empty", got)
	}
}
