package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/summarizer"
)

const maxErrorBodyBytes = 2048

// HTTPSummarizer posts {"transcript": ...} and expects {"summary", "actionItems"} back.
type HTTPSummarizer struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTPSummarizer(url, apiKey string) summarizer.Summarizer {
	return &HTTPSummarizer{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{},
	}
}

type summaryRequest struct {
	Transcript string `json:"transcript"`
}

func (s *HTTPSummarizer) Summarize(ctx context.Context, transcript string) (summarizer.Result, error) {
	b, err := json.Marshal(summaryRequest{Transcript: transcript})
	if err != nil {
		return summarizer.Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(b))
	if err != nil {
		return summarizer.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return summarizer.Result{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return summarizer.Result{}, &apperror.StatusError{Service: "summary service", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var p summaryPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return summarizer.Result{}, fmt.Errorf("invalid JSON from summary service: %w", err)
	}
	return toResult(p), nil
}
