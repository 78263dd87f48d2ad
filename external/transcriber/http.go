package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/audio"
	"github.com/foxseedlab/debrief/internal/transcriber"
)

const maxErrorBodyBytes = 2048

type HTTPConfig struct {
	URL      string
	APIKey   string
	Model    string
	Language string
}

// HTTPTranscriber posts the artifact as multipart form data and reads a
// {"text": "..."} response.
type HTTPTranscriber struct {
	url      string
	apiKey   string
	model    string
	language string
	client   *http.Client
}

func NewHTTPTranscriber(cfg HTTPConfig) transcriber.Transcriber {
	return &HTTPTranscriber{
		url:      cfg.URL,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		language: languageTag(cfg.Language),
		client:   &http.Client{},
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, artifact audio.Artifact) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if t.model != "" {
		if err := writer.WriteField("model", t.model); err != nil {
			return "", err
		}
	}
	if t.language != "" {
		if err := writer.WriteField("language", t.language); err != nil {
			return "", err
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", multipart.FileContentDisposition("file", artifact.Name))
	header.Set("Content-Type", artifact.MediaType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(artifact.Data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", &apperror.StatusError{Service: "transcription service", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var out transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("invalid JSON from transcription service: %w", err)
	}
	return out.Text, nil
}

// languageTag turns "en-US" into "en", which is what most transcription APIs expect.
func languageTag(lang string) string {
	base, _, _ := strings.Cut(strings.TrimSpace(lang), "-")
	return strings.ToLower(base)
}
