package main

import (
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestReadableDates(t *testing.T) {
	date := time.Date(2023, 11, 23, 22, 30, 0, 0, time.FixedZone("CET", 3600))

	if got := readableDate(date); got != "Nov 2023" {
		t.Errorf("expected %v, got %v", "Nov 2023", got)
	}
	if got := htmlDateString(date); got != "2023-11-23" {
		t.Errorf("expected %v, got %v", "2023-11-23", got)
	}
	if got := yearFromDate(time.Date(2024, 1, 1, 0, 30, 0, 0, time.FixedZone("CET", 3600))); got != 2023 {
		t.Errorf("expected %v, got %v", 2023, got)
	}
}

func TestReadableDateFromISO(t *testing.T) {
	got, err := readableDateFromISO("2021-03-05T14:30:00+01:00")
	if err != nil {
		t.Fatal(err)
	}
	if got != "05 Mar 2021 at 02:30PM" {
		t.Errorf("expected %v, got %v", "05 Mar 2021 at 02:30PM", got)
	}

	got, err = readableDateFromISO("2021-03-05T14:30:00Z", "2006")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2021" {
		t.Errorf("expected %v, got %v", "2021", got)
	}

	if _, err := readableDateFromISO("yesterday"); err == nil {
		t.Error("expected an error for an invalid timestamp")
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"<p>Short post.</p>", "Short..."},
		{"<p>nospaces</p>", "..."},
		{"", "..."},
		{"<p>" + strings.Repeat("word ", 40) + "</p>", strings.TrimSuffix(strings.Repeat("word ", 30), " ") + "..."},
	}

	for _, tc := range tests {
		if got := excerpt(tc.input); got != tc.expected {
			t.Errorf("expected %q, got %q", tc.expected, got)
		}
	}
}

func TestAddNbsp(t *testing.T) {
	tests := []struct {
		input    string
		expected template.HTML
	}{
		{"Hello, world!", "Hello,&nbsp;world!"},
		{"One two three", "One two&nbsp;three"},
		{"Single", "Single"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := addNbsp(tc.input); got != tc.expected {
			t.Errorf("expected %q, got %q", tc.expected, got)
		}
	}
}

func TestWebmentions(t *testing.T) {
	feed := map[string]any{
		"children": []any{
			map[string]any{"wm-target": "https://example.com/a/", "like-of": "https://example.com/a/"},
			map[string]any{"wm-target": "https://example.com/a/", "in-reply-to": "https://example.com/a/"},
			map[string]any{"wm-target": "https://example.com/a/", "like-of": ""},
			map[string]any{"wm-target": "https://example.com/b/", "like-of": "https://example.com/b/"},
		},
	}

	mentions := getWebmentionsForUrl(feed, "https://example.com/a/")
	if size(mentions) != 3 {
		t.Fatalf("expected 3 mentions, got %d", size(mentions))
	}
	if got := size(webmentionsByType(mentions, "like-of")); got != 1 {
		t.Errorf("expected 1 like, got %d", got)
	}
	if got := size(webmentionsByType(mentions, "in-reply-to")); got != 1 {
		t.Errorf("expected 1 reply, got %d", got)
	}
	if got := getWebmentionsForUrl(nil, "https://example.com/a/"); len(got) != 0 {
		t.Errorf("expected no mentions, got %v", got)
	}
}

func TestSize(t *testing.T) {
	tests := []struct {
		input    any
		expected int
	}{
		{nil, 0},
		{[]int{1, 2, 3}, 3},
		{map[string]int{"a": 1}, 1},
		{"four", 4},
		{42, 0},
	}

	for _, tc := range tests {
		if got := size(tc.input); got != tc.expected {
			t.Errorf("size(%v): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}

func TestEmojiReadTime(t *testing.T) {
	s := &Site{}
	s.setDefaults()

	tests := []struct {
		words    int
		expected string
	}{
		{0, "☕  1 min. read"},
		{400, "☕  1 min. read"},
		{2000, "☕  5 min. read"},
		{6000, "☕☕☕  15 min. read"},
	}

	for _, tc := range tests {
		content := strings.Repeat("word ", tc.words)
		if got := s.emojiReadTime(content); got != tc.expected {
			t.Errorf("%d words: expected %q, got %q", tc.words, tc.expected, got)
		}
	}

	s.ReadTime.ShowEmoji = false
	if got := s.emojiReadTime("word"); got != "1 min. read" {
		t.Errorf("expected %q, got %q", "1 min. read", got)
	}
}

func TestGroupByYear(t *testing.T) {
	posts := []Page{
		{Title: "c", DatePublished: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "b", DatePublished: time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "a", DatePublished: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	groups := groupByYear(posts)
	years := make([]int, 0, len(groups))
	counts := make([]int, 0, len(groups))
	for _, g := range groups {
		years = append(years, g.Year)
		counts = append(counts, len(g.Posts))
	}
	if diff := cmp.Diff([]int{2024, 2023}, years); diff != "" {
		t.Errorf("years mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestAbsoluteUrl(t *testing.T) {
	s := &Site{SiteUrl: "https://example.com/"}
	tests := map[string]string{
		"/about/":                "https://example.com/about/",
		"posts/hello/":           "https://example.com/posts/hello/",
		"https://other.org/page": "https://other.org/page",
	}

	for input, expected := range tests {
		if got := s.absoluteUrl(input); got != expected {
			t.Errorf("expected %v, got %v", expected, got)
		}
	}
}

func TestStripTags(t *testing.T) {
	if got := stripTags("<p>Fish &amp; <em>chips</em></p>"); got != "Fish & chips" {
		t.Errorf("expected %q, got %q", "Fish & chips", got)
	}
}
