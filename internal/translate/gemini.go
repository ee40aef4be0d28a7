package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"newsdesk/internal/ratelimit"
)

// GeminiTranslator is an optional provider used when an API key is
// configured. It sits behind a request quota so a busy instance cannot
// burn through the daily allowance.
type GeminiTranslator struct {
	client  *genai.Client
	model   string
	limiter *ratelimit.Limiter
}

func NewGeminiTranslator(ctx context.Context, apiKey string, limiter *ratelimit.Limiter) (*GeminiTranslator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiTranslator{
		client:  client,
		model:   "gemini-1.5-flash",
		limiter: limiter,
	}, nil
}

func (g *GeminiTranslator) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

func (g *GeminiTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	if text == "" {
		return text, nil
	}
	if g.limiter != nil && !g.limiter.Allow() {
		used, max := g.limiter.Usage()
		return "", fmt.Errorf("gemini request quota reached (%d/%d)", used, max)
	}

	prompt := fmt.Sprintf(`Translate the following news text from %s to %s.
Keep the meaning and journalistic tone. Do not translate proper names of
brands or organizations. Return only the translation, without comments.

Text:
%s`, languageName(from), languageName(to), text)

	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini")
	}

	out := strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if out == "" {
		return "", errors.New("empty translation from Gemini")
	}
	return out, nil
}

// languageName expands the locale codes the service is configured with;
// unknown codes pass through so the prompt still reads sensibly.
func languageName(code string) string {
	switch code {
	case "en":
		return "English"
	case "zh-TW":
		return "Traditional Chinese"
	case "zh-CN":
		return "Simplified Chinese"
	case "uk":
		return "Ukrainian"
	case "da":
		return "Danish"
	case "de":
		return "German"
	case "fr":
		return "French"
	case "es":
		return "Spanish"
	case "ja":
		return "Japanese"
	default:
		return code
	}
}
