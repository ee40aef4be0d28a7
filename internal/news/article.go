// Package news defines the canonical article record and the
// normalization from raw feed items.
package news

// Article is the canonical representation of one feed item after
// stripping, truncation and date formatting. Description never contains
// markup; Published is either in "2006-01-02 15:04" form or empty.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url,omitempty"`
	Source      string `json:"source"`
	Published   string `json:"published"`
	Category    string `json:"category"`
}
