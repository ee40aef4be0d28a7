// Package translate provides best-effort text translation for article
// fields. Every provider failure degrades to the original text; nothing
// in this package is fatal to the aggregation pipeline.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsdesk/internal/logger"
	"newsdesk/internal/metrics"
	"newsdesk/internal/news"
	"newsdesk/internal/retry"
)

const (
	googleEndpoint   = "https://translate.googleapis.com/translate_a/single"
	maxResponseBytes = 256 * 1024
	maxTextLen       = 4000
)

// Translator converts text between languages. Implementations must
// treat empty input as a no-op and must not be accessed through global
// state; they are injected where needed.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// GoogleTranslator uses the public Google Translate endpoint
// (client=gtx, no API key).
type GoogleTranslator struct {
	client  *http.Client
	baseURL string
	retries int
}

func NewGoogleTranslator(timeout time.Duration, retries int) *GoogleTranslator {
	return &GoogleTranslator{
		client:  &http.Client{Timeout: timeout},
		baseURL: googleEndpoint,
		retries: retries,
	}
}

// WithBaseURL points the translator at a different endpoint. Used by
// tests to stand in a fake server.
func (g *GoogleTranslator) WithBaseURL(u string) *GoogleTranslator {
	g.baseURL = u
	return g
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	if text == "" {
		return text, nil
	}
	if runes := []rune(text); len(runes) > maxTextLen {
		text = string(runes[:maxTextLen]) + "..."
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", from)
	params.Set("tl", to)
	params.Set("dt", "t")
	params.Set("q", text)
	fullURL := g.baseURL + "?" + params.Encode()

	var translated string
	attempts := g.retries
	if attempts < 1 {
		attempts = 1
	}
	err := retry.Do(ctx, retry.Config{MaxAttempts: attempts, Delay: 300 * time.Millisecond}, func() error {
		out, err := g.fetchTranslation(ctx, fullURL)
		if err != nil {
			return err
		}
		translated = out
		return nil
	})
	if err != nil {
		return "", err
	}
	if translated == "" {
		return "", errors.New("empty translation from Google Translate")
	}
	return translated, nil
}

func (g *GoogleTranslator) fetchTranslation(ctx context.Context, fullURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; newsdesk/1.0)")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google Translate returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return parseGoogleResponse(body)
}

// parseGoogleResponse decodes the undocumented array-of-arrays payload:
// [[["translated","original",...],...],...]
func parseGoogleResponse(body []byte) (string, error) {
	var response []interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response) == 0 {
		return "", errors.New("empty response from Google Translate")
	}

	segments, ok := response[0].([]interface{})
	if !ok {
		return "", errors.New("unexpected response format")
	}

	var result strings.Builder
	for _, segment := range segments {
		pair, ok := segment.([]interface{})
		if !ok || len(pair) == 0 {
			continue
		}
		if part, ok := pair[0].(string); ok {
			result.WriteString(part)
		}
	}
	return result.String(), nil
}

// Chain tries providers in order and returns the first usable
// translation.
type Chain struct {
	providers []Translator
}

func NewChain(providers ...Translator) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) Translate(ctx context.Context, text, from, to string) (string, error) {
	if text == "" {
		return text, nil
	}
	var lastErr error
	for _, p := range c.providers {
		out, err := p.Translate(ctx, text, from, to)
		if err == nil && out != "" {
			return out, nil
		}
		if err != nil {
			lastErr = err
			logger.Debug("translation provider failed, trying next", "error", err)
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no translation provider configured")
	}
	return "", lastErr
}

// Enricher rewrites article text fields in the target language. It is
// optional and decoupled from normalization: a disabled or failing
// enricher leaves articles exactly as normalized.
type Enricher struct {
	translator Translator
	from, to   string
}

func NewEnricher(t Translator, from, to string) *Enricher {
	return &Enricher{translator: t, from: from, to: to}
}

// Enrich translates the title and description in place. The two fields
// are independent: a failure in one leaves the other translated.
func (e *Enricher) Enrich(ctx context.Context, a *news.Article) {
	a.Title = e.translateField(ctx, a.Title, "title")
	a.Description = e.translateField(ctx, a.Description, "description")
}

func (e *Enricher) translateField(ctx context.Context, text, field string) string {
	if text == "" {
		return text
	}
	out, err := e.translator.Translate(ctx, text, e.from, e.to)
	if err != nil || out == "" {
		metrics.Global.IncrementFailedTranslations()
		logger.Warn("translation failed, keeping original text", "field", field, "error", err)
		return text
	}
	metrics.Global.IncrementSuccessfulTranslations()
	return out
}
