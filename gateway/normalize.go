package gateway

import (
	"fmt"
	"strings"
	"time"

	terminal "github.com/0xmeta/terminal-go"
)

const maxTitleLen = 120

var bullishMarkers = []string{"surge", "rally", "soar", "gain", "pump", "breakout", "all-time high", "ath", "bullish"}
var bearishMarkers = []string{"drop", "crash", "dump", "plunge", "fall", "liquidat", "selloff", "bearish", "exploit", "hack"}

// Normalize flattens a raw gated feed into display items: articles first,
// then social posts, each classified into a sentiment bucket.
func Normalize(category string, resp terminal.NewsResponse, now time.Time) []terminal.NewsItem {
	items := make([]terminal.NewsItem, 0, len(resp.CryptoNews)+len(resp.Twitter))
	for i, raw := range resp.CryptoNews {
		items = append(items, normalizeItem(category, "cryptonews", i, raw, now))
	}
	for i, raw := range resp.Twitter {
		items = append(items, normalizeItem(category, "twitter", i, raw, now))
	}
	return items
}

// BuildColumn assembles a dashboard column with per-sentiment tallies.
func BuildColumn(category string, title string, items []terminal.NewsItem) terminal.ColumnData {
	col := terminal.ColumnData{ID: category, Title: title, Items: items}
	for _, item := range items {
		switch item.Sentiment {
		case terminal.SentimentBullish:
			col.BullishCount++
		case terminal.SentimentBearish:
			col.BearishCount++
		default:
			col.NeutralCount++
		}
	}
	return col
}

func normalizeItem(category string, source string, index int, raw terminal.ApiNewsItem, now time.Time) terminal.NewsItem {
	title := raw.Title
	if title == "" {
		title = truncate(raw.Text, maxTitleLen)
	}

	summary := raw.ShortContext
	if summary == "" {
		summary = raw.LongContext
	}

	src := raw.Source
	if src == "" {
		src = source
	}

	return terminal.NewsItem{
		ID:        fmt.Sprintf("%s-%s-%d", category, src, index),
		Title:     title,
		Source:    src,
		Time:      relativeTime(raw.Timestamp, now),
		Sentiment: classifySentiment(title + " " + raw.Text),
		URL:       raw.URL,
		Tags:      raw.Tokens,
		Summary:   summary,
	}
}

func classifySentiment(text string) string {
	lower := strings.ToLower(text)
	bullish, bearish := 0, 0
	for _, marker := range bullishMarkers {
		if strings.Contains(lower, marker) {
			bullish++
		}
	}
	for _, marker := range bearishMarkers {
		if strings.Contains(lower, marker) {
			bearish++
		}
	}
	switch {
	case bullish > bearish:
		return terminal.SentimentBullish
	case bearish > bullish:
		return terminal.SentimentBearish
	default:
		return terminal.SentimentNeutral
	}
}

func relativeTime(unixSeconds int64, now time.Time) string {
	if unixSeconds <= 0 {
		return ""
	}
	age := now.Sub(time.Unix(unixSeconds, 0))
	switch {
	case age < time.Minute:
		return "now"
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd", int(age.Hours()/24))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndex(cut, " "); idx > max/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
