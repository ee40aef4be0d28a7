package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"newsdesk/internal/aggregate"
	"newsdesk/internal/feeds"
	"newsdesk/internal/fetch"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func feedXML(prefix string, n int) string {
	var b strings.Builder
	b.WriteString(`<rss version="2.0"><channel><title>t</title>`)
	base := time.Date(2024, 10, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		fmt.Fprintf(&b, `<item><title>%s %d</title><link>https://example.com/%s/%d</link><pubDate>%s</pubDate></item>`,
			prefix, i, prefix, i, ts.Format(time.RFC1123Z))
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func newTestServer(t *testing.T, sources ...feeds.Source) *Server {
	t.Helper()

	var b strings.Builder
	b.WriteString("default: tech\ncategories:\n  - name: tech\n    sources:\n")
	for _, s := range sources {
		fmt.Fprintf(&b, "      - name: %s\n        url: %s\n", s.Name, s.URL)
	}
	path := t.TempDir() + "/feeds.yaml"
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	registry, err := feeds.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	svc := aggregate.NewService(registry, fetch.NewClient(2*time.Second), nil, nil, aggregate.Options{
		RequestTimeout: 2 * time.Second,
	})
	return New(svc, registry, nil)
}

type newsResponse struct {
	Success  bool   `json:"success"`
	Category string `json:"category"`
	Count    int    `json:"count"`
	Articles []struct {
		Title     string `json:"title"`
		Source    string `json:"source"`
		Published string `json:"published"`
		Category  string `json:"category"`
	} `json:"articles"`
}

func TestGetNewsEndToEnd(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedXML("story", 10)))
	}))
	defer good.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer failing.Close()

	s := newTestServer(t,
		feeds.Source{Name: "Good", URL: good.URL},
		feeds.Source{Name: "Failing", URL: failing.URL},
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/news?category=tech", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp newsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.Category != "tech" {
		t.Errorf("category = %q", resp.Category)
	}
	if resp.Count != 10 || len(resp.Articles) != 10 {
		t.Fatalf("count = %d, articles = %d, want the 10 items from the working source", resp.Count, len(resp.Articles))
	}
	for i, a := range resp.Articles {
		if a.Source != "Good" {
			t.Errorf("article %d source = %q", i, a.Source)
		}
		if !strings.HasPrefix(a.Title, "story ") {
			t.Errorf("article %d title = %q, should be untranslated", i, a.Title)
		}
	}
	for i := 1; i < len(resp.Articles); i++ {
		if resp.Articles[i-1].Published < resp.Articles[i].Published {
			t.Fatalf("articles not sorted newest-first at %d", i)
		}
	}
}

func TestGetNewsDefaultsCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedXML("x", 1)))
	}))
	defer srv.Close()

	s := newTestServer(t, feeds.Source{Name: "X", URL: srv.URL})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	s.Router().ServeHTTP(w, req)

	var resp newsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Category != "tech" {
		t.Errorf("category = %q, want the default", resp.Category)
	}
}

func TestGetNewsEmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	s := newTestServer(t, feeds.Source{Name: "Down", URL: srv.URL})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/news?category=tech", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, degraded results must still be 200", w.Code)
	}
	var resp newsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Count != 0 {
		t.Errorf("success = %v, count = %d, want success with empty list", resp.Success, resp.Count)
	}
	if resp.Articles == nil {
		t.Error("articles should encode as [] rather than null")
	}
}

func TestPostTranslateEchoesWithoutEnricher(t *testing.T) {
	s := newTestServer(t, feeds.Source{Name: "X", URL: "https://example.com/rss"})

	body := strings.NewReader(`{"title":"Hello","description":"World"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/translate", body)
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Success               bool   `json:"success"`
		TranslatedTitle       string `json:"translated_title"`
		TranslatedDescription string `json:"translated_description"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.TranslatedTitle != "Hello" || resp.TranslatedDescription != "World" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestPostTranslateRejectsBadBody(t *testing.T) {
	s := newTestServer(t, feeds.Source{Name: "X", URL: "https://example.com/rss"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/translate", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetSourcesListsRegistry(t *testing.T) {
	s := newTestServer(t, feeds.Source{Name: "X", URL: "https://example.com/rss"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sources", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Success    bool   `json:"success"`
		Default    string `json:"default"`
		Categories []struct {
			Name    string `json:"name"`
			Sources []struct {
				Name string `json:"name"`
				URL  string `json:"url"`
			} `json:"sources"`
		} `json:"categories"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Default != "tech" || len(resp.Categories) != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Categories[0].Sources[0].Name != "X" {
		t.Errorf("source = %+v", resp.Categories[0].Sources[0])
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, feeds.Source{Name: "X", URL: "https://example.com/rss"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if _, ok := resp["status"]; !ok {
		t.Error("health response missing status field")
	}
}
