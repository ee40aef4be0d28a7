package news

import (
	"html"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsdesk/internal/feeds"
	"newsdesk/internal/fetch"
)

const (
	// DescriptionLimit caps stripped descriptions, in runes, before the
	// ellipsis marker is added.
	DescriptionLimit = 200

	// DisplayTimeFormat is the single canonical timestamp format. It is
	// chosen so that descending lexicographic order equals descending
	// chronological order, which lets the ranker sort plain strings.
	DisplayTimeFormat = "2006-01-02 15:04"

	placeholderTitle = "No Title"
)

// publishedFormats are tried in order against raw feed timestamps.
// Covers RFC822-style dates with numeric and named zones plus ISO-8601
// offsets, the shapes BBC/NYT and most Atom feeds emit.
var publishedFormats = []string{
	time.RFC1123Z,                   // Wed, 02 Oct 2024 15:30:00 +0000
	time.RFC1123,                    // Wed, 02 Oct 2024 15:30:00 GMT
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC3339,                    // 2024-10-02T15:30:00Z / +02:00
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Normalize maps one raw feed item to the canonical Article shape.
func Normalize(item fetch.RawItem, source feeds.Source, category string) Article {
	title := strings.TrimSpace(StripHTML(item.Title))
	if title == "" {
		title = placeholderTitle
	}

	return Article{
		Title:       title,
		Description: Truncate(StripHTML(item.Description), DescriptionLimit),
		URL:         strings.TrimSpace(item.Link),
		ImageURL:    resolveImage(item),
		Source:      source.Name,
		Published:   FormatPublished(item.Published),
		Category:    category,
	}
}

// StripHTML returns the text content of an HTML fragment with entities
// decoded and whitespace collapsed. Inputs without markup pass through.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		// Unparseable fragment: fall back to a raw tag scan.
		return strings.Join(strings.Fields(html.UnescapeString(stripTags(s))), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// stripTags drops everything between < and > without interpreting the
// markup.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Truncate cuts s to limit runes, appending "..." when anything was
// removed.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

// FormatPublished renders a raw feed timestamp in the canonical display
// format. Timestamps that match none of the known layouts become the
// empty string so downstream sorting never sees a half-parsed date.
func FormatPublished(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range publishedFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DisplayTimeFormat)
		}
	}
	return ""
}

// resolveImage picks the first usable image candidate from the feed
// conventions. When a feed carries no explicit media, the description
// HTML is checked for an embedded <img>.
func resolveImage(item fetch.RawItem) string {
	for _, url := range item.ImageCandidates {
		if url = strings.TrimSpace(url); url != "" {
			return url
		}
	}
	if strings.Contains(item.Description, "<img") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(item.Description))
		if err == nil {
			if src, ok := doc.Find("img").First().Attr("src"); ok {
				return strings.TrimSpace(src)
			}
		}
	}
	return ""
}
