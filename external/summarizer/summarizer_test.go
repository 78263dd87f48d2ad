package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/validation"
)

func TestHTTPSummarizer_Success(t *testing.T) {
	var got summaryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("unexpected auth header: %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"summary":" Shipped v2. ","actionItems":["Ada: write notes",""]}`))
	}))
	defer server.Close()

	s := NewHTTPSummarizer(server.URL, "k")
	res, err := s.Summarize(context.Background(), "we shipped v2")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.Transcript != "we shipped v2" {
		t.Fatalf("unexpected transcript sent: %q", got.Transcript)
	}
	if res.Summary != "Shipped v2." || len(res.ActionItems) != 1 || res.ActionItems[0] != "Ada: write notes" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestHTTPSummarizer_ErrorsAreFormattable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewHTTPSummarizer(server.URL, "").Summarize(context.Background(), "x")
	var statusErr *apperror.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 status error, got %v", err)
	}

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer bad.Close()
	_, err = NewHTTPSummarizer(bad.URL, "").Summarize(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "JSON") {
		t.Fatalf("expected JSON error, got %v", err)
	}
	if msg := validation.FormatErrorMessage(err); msg == err.Error() {
		t.Fatalf("expected a categorized message, got %q", msg)
	}
}

func TestParseResult_StripsCodeFence(t *testing.T) {
	raw := "```json\n{\"summary\":\"ok\",\"actionItems\":[\"a\",\"b\"]}\n```"
	res, err := parseResult(raw)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if res.Summary != "ok" || len(res.ActionItems) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, err := parseResult("Sure! Here is the summary"); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestGeminiSummarizer_RotatesOnQuota(t *testing.T) {
	s := NewGeminiSummarizer(GeminiConfig{APIKeys: []string{"k1", "k2"}, Model: "m"}).(*GeminiSummarizer)
	var keys []string
	s.generate = func(_ context.Context, apiKey, _ string) (string, error) {
		keys = append(keys, apiKey)
		if apiKey == "k1" {
			return "", errors.New("Error 429, RESOURCE_EXHAUSTED")
		}
		return `{"summary":"done","actionItems":[]}`, nil
	}

	res, err := s.Summarize(context.Background(), "t")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if res.Summary != "done" || len(res.ActionItems) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if strings.Join(keys, ",") != "k1,k2" {
		t.Fatalf("unexpected key order: %v", keys)
	}
	if s.currentKey != 1 {
		t.Fatalf("expected rotation to stick, got %d", s.currentKey)
	}
}

func TestGeminiSummarizer_AllKeysExhausted(t *testing.T) {
	s := NewGeminiSummarizer(GeminiConfig{APIKeys: []string{"k1", "k2"}}).(*GeminiSummarizer)
	calls := 0
	s.generate = func(context.Context, string, string) (string, error) {
		calls++
		return "", errors.New("quota exceeded")
	}
	_, err := s.Summarize(context.Background(), "t")
	if err == nil || !strings.Contains(err.Error(), "all API keys exhausted") {
		t.Fatalf("expected exhausted error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected one call per key, got %d", calls)
	}
}

func TestGeminiSummarizer_NonQuotaErrorStops(t *testing.T) {
	s := NewGeminiSummarizer(GeminiConfig{APIKeys: []string{"k1", "k2"}}).(*GeminiSummarizer)
	calls := 0
	s.generate = func(context.Context, string, string) (string, error) {
		calls++
		return "", errors.New("invalid argument")
	}
	if _, err := s.Summarize(context.Background(), "t"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestLoadSystemPrompt(t *testing.T) {
	got, err := LoadSystemPrompt("")
	if err != nil || got != DefaultSystemPrompt {
		t.Fatalf("expected default prompt, got %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "prompt.toml")
	if err := os.WriteFile(path, []byte("system_prompt = \"\"\"\nSummarize briefly.\n\"\"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = LoadSystemPrompt(path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != "Summarize briefly.\n" {
		t.Fatalf("unexpected prompt: %q", got)
	}

	if _, err := LoadSystemPrompt(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
