package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"newsdesk/internal/news"
)

type stubTranslator struct {
	out   string
	err   error
	calls int32
}

func (s *stubTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	if text == "" {
		return text, nil
	}
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

func TestGoogleTranslatorParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "hello world" {
			t.Errorf("q = %q", got)
		}
		if got := r.URL.Query().Get("tl"); got != "zh-TW" {
			t.Errorf("tl = %q", got)
		}
		w.Write([]byte(`[[["你好","hello",null],["世界","world",null]],null,"en"]`))
	}))
	defer srv.Close()

	g := NewGoogleTranslator(2*time.Second, 1).WithBaseURL(srv.URL)
	out, err := g.Translate(context.Background(), "hello world", "en", "zh-TW")
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if out != "你好世界" {
		t.Errorf("out = %q, want %q", out, "你好世界")
	}
}

func TestGoogleTranslatorEmptyInputSkipsNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	g := NewGoogleTranslator(2*time.Second, 1).WithBaseURL(srv.URL)
	out, err := g.Translate(context.Background(), "", "en", "zh-TW")
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if out != "" {
		t.Errorf("out = %q, want empty", out)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("empty input made %d network calls, want 0", hits)
	}
}

func TestGoogleTranslatorUpstreamErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>captcha</html>"))
		}},
		{"empty array", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			g := NewGoogleTranslator(2*time.Second, 1).WithBaseURL(srv.URL)
			if _, err := g.Translate(context.Background(), "hello", "en", "zh-TW"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGoogleTranslatorRetriesOnFailure(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			http.Error(w, "flaky", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[[["ok","hello",null]]]`))
	}))
	defer srv.Close()

	g := NewGoogleTranslator(2*time.Second, 2).WithBaseURL(srv.URL)
	out, err := g.Translate(context.Background(), "hello", "en", "zh-TW")
	if err != nil {
		t.Fatalf("Translate error after retry: %v", err)
	}
	if out != "ok" {
		t.Errorf("out = %q", out)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("hits = %d, want 2", hits)
	}
}

func TestChainFallsThroughToNextProvider(t *testing.T) {
	broken := &stubTranslator{err: errors.New("down")}
	working := &stubTranslator{out: "translated"}

	chain := NewChain(broken, working)
	out, err := chain.Translate(context.Background(), "text", "en", "zh-TW")
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if out != "translated" {
		t.Errorf("out = %q", out)
	}
	if broken.calls != 1 || working.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", broken.calls, working.calls)
	}
}

func TestChainAllProvidersFail(t *testing.T) {
	chain := NewChain(&stubTranslator{err: errors.New("a")}, &stubTranslator{err: errors.New("b")})
	if _, err := chain.Translate(context.Background(), "text", "en", "zh-TW"); err == nil {
		t.Fatal("expected error when every provider fails")
	}
}

func TestEnricherTranslatesBothFields(t *testing.T) {
	e := NewEnricher(&stubTranslator{out: "翻译"}, "en", "zh-TW")
	a := news.Article{Title: "Title", Description: "Description"}

	e.Enrich(context.Background(), &a)
	if a.Title != "翻译" || a.Description != "翻译" {
		t.Errorf("article = %+v, both text fields should be translated", a)
	}
}

func TestEnricherKeepsOriginalOnFailure(t *testing.T) {
	e := NewEnricher(&stubTranslator{err: errors.New("provider down")}, "en", "zh-TW")
	a := news.Article{Title: "Original title", Description: "Original description", URL: "https://example.com"}

	e.Enrich(context.Background(), &a)
	if a.Title != "Original title" {
		t.Errorf("Title = %q, want original preserved", a.Title)
	}
	if a.Description != "Original description" {
		t.Errorf("Description = %q, want original preserved", a.Description)
	}
	if a.URL != "https://example.com" {
		t.Errorf("structural field changed: %q", a.URL)
	}
}

func TestEnricherEmptyFieldsMakeNoCalls(t *testing.T) {
	stub := &stubTranslator{out: "x"}
	e := NewEnricher(stub, "en", "zh-TW")
	a := news.Article{}

	e.Enrich(context.Background(), &a)
	if stub.calls != 0 {
		t.Errorf("calls = %d, want 0 for empty fields", stub.calls)
	}
}

func TestParseGoogleResponseCollectsAllSegments(t *testing.T) {
	body := []byte(`[[["first ","a",null],["second","b",null],[null,"c",null]],null,"en"]`)
	out, err := parseGoogleResponse(body)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if out != "first second" {
		t.Errorf("out = %q, want %q", out, "first second")
	}
}
