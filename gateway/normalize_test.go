package gateway

import (
	"strings"
	"testing"
	"time"

	terminal "github.com/0xmeta/terminal-go"
)

var testNow = time.Unix(1700000000, 0)

func TestNormalizeOrdersArticlesBeforePosts(t *testing.T) {
	resp := terminal.NewsResponse{
		CryptoNews: []terminal.ApiNewsItem{
			{Source: "Blockworks", Title: "First article", Text: "a", Timestamp: testNow.Unix() - 60},
		},
		Twitter: []terminal.ApiNewsItem{
			{Source: "@desk", Text: "a post", Timestamp: testNow.Unix() - 30},
		},
	}

	items := Normalize("defi", resp, testNow)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Source != "Blockworks" || items[1].Source != "@desk" {
		t.Errorf("articles must come before posts: %s, %s", items[0].Source, items[1].Source)
	}
	if items[0].ID != "defi-Blockworks-0" {
		t.Errorf("id = %s", items[0].ID)
	}
}

func TestNormalizeTitleFallback(t *testing.T) {
	long := strings.Repeat("word ", 40) // 200 chars, forces truncation
	resp := terminal.NewsResponse{
		Twitter: []terminal.ApiNewsItem{
			{Source: "@desk", Text: long, Timestamp: testNow.Unix()},
		},
	}

	items := Normalize("ai", resp, testNow)
	title := items[0].Title
	if len(title) > maxTitleLen+len("…") {
		t.Errorf("title not truncated: %d chars", len(title))
	}
	if !strings.HasSuffix(title, "…") {
		t.Errorf("truncated title missing ellipsis: %q", title)
	}
}

func TestNormalizeSummaryPrefersShortContext(t *testing.T) {
	tests := []struct {
		name string
		item terminal.ApiNewsItem
		want string
	}{
		{"short context wins", terminal.ApiNewsItem{Text: "t", ShortContext: "short", LongContext: "long"}, "short"},
		{"long context fallback", terminal.ApiNewsItem{Text: "t", LongContext: "long"}, "long"},
		{"no context", terminal.ApiNewsItem{Text: "t"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Normalize("ai", terminal.NewsResponse{CryptoNews: []terminal.ApiNewsItem{tt.item}}, testNow)
			if items[0].Summary != tt.want {
				t.Errorf("summary = %q, want %q", items[0].Summary, tt.want)
			}
		})
	}
}

func TestClassifySentiment(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Token breaks out to new all-time high after massive rally", terminal.SentimentBullish},
		{"Protocol exploited, funds dumped as price plunges", terminal.SentimentBearish},
		{"Team publishes quarterly development report", terminal.SentimentNeutral},
		{"Price surges then crashes in volatile session", terminal.SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := classifySentiment(tt.text); got != tt.want {
				t.Errorf("classifySentiment(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		name string
		ts   int64
		want string
	}{
		{"just now", testNow.Unix() - 10, "now"},
		{"minutes", testNow.Unix() - 300, "5m"},
		{"hours", testNow.Unix() - 7200, "2h"},
		{"days", testNow.Unix() - 3*86400, "3d"},
		{"missing timestamp", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relativeTime(tt.ts, testNow); got != tt.want {
				t.Errorf("relativeTime = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildColumnTallies(t *testing.T) {
	items := []terminal.NewsItem{
		{Sentiment: terminal.SentimentBullish},
		{Sentiment: terminal.SentimentBullish},
		{Sentiment: terminal.SentimentBearish},
		{Sentiment: terminal.SentimentNeutral},
	}

	col := BuildColumn("defi", "Defi", items)
	if col.BullishCount != 2 || col.BearishCount != 1 || col.NeutralCount != 1 {
		t.Errorf("tallies = %d/%d/%d, want 2/1/1", col.BullishCount, col.BearishCount, col.NeutralCount)
	}
	if col.ID != "defi" || col.Title != "Defi" {
		t.Errorf("column identity = %s/%s", col.ID, col.Title)
	}
}
