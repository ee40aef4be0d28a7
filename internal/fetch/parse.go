package fetch

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// RawItem is the feed-shaped record handed to the normalizer. It lives
// only for the duration of one parse call.
type RawItem struct {
	Title           string
	Link            string
	Description     string
	Published       string
	ImageCandidates []string
}

// Parse extracts up to limit items from a raw feed payload. RSS and Atom
// are both accepted; items without a title are dropped. Malformed
// payloads return an error and no items.
func Parse(payload []byte, limit int) ([]RawItem, error) {
	parser := gofeed.NewParser()
	feed, err := parser.Parse(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	items := make([]RawItem, 0, min(limit, len(feed.Items)))
	for _, item := range feed.Items {
		if len(items) >= limit {
			break
		}
		if strings.TrimSpace(item.Title) == "" {
			continue
		}

		description := item.Description
		if description == "" {
			description = item.Content
		}
		published := item.Published
		if published == "" {
			published = item.Updated
		}

		items = append(items, RawItem{
			Title:           item.Title,
			Link:            item.Link,
			Description:     description,
			Published:       published,
			ImageCandidates: imageCandidates(item),
		})
	}
	return items, nil
}

// imageCandidates collects possible image URLs in preference order:
// media:content, media:thumbnail, image enclosures, then the item-level
// image. The first non-empty candidate wins downstream.
func imageCandidates(item *gofeed.Item) []string {
	var out []string

	if media, ok := item.Extensions["media"]; ok {
		for _, name := range []string{"content", "thumbnail"} {
			for _, ext := range media[name] {
				if url := ext.Attrs["url"]; url != "" {
					out = append(out, url)
				}
			}
		}
	}

	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "image/") {
			out = append(out, enc.URL)
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		out = append(out, item.Image.URL)
	}

	return out
}
