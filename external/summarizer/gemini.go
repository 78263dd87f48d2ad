package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/foxseedlab/debrief/internal/summarizer"
	"google.golang.org/genai"
)

var errEmptyResponse = errors.New("empty response from Gemini")

type GeminiConfig struct {
	APIKeys      []string
	Model        string
	SystemPrompt string
}

// GeminiSummarizer asks Gemini for a JSON summary. On 429 or quota errors it
// moves on to the next API key until every key has been tried once.
type GeminiSummarizer struct {
	apiKeys      []string
	model        string
	systemPrompt string

	mu         sync.Mutex
	currentKey int

	generate func(ctx context.Context, apiKey, prompt string) (string, error)
}

func NewGeminiSummarizer(cfg GeminiConfig) summarizer.Summarizer {
	s := &GeminiSummarizer{
		apiKeys:      cfg.APIKeys,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
	}
	s.generate = s.callGemini
	return s
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, transcript string) (summarizer.Result, error) {
	if len(s.apiKeys) == 0 {
		return summarizer.Result{}, errors.New("no Gemini API key configured")
	}
	var lastErr error
	for range len(s.apiKeys) {
		idx, key := s.key()
		text, err := s.generate(ctx, key, transcript)
		if err != nil {
			if isRateLimited(err) {
				slog.Warn("gemini key rate limited, rotating", "key_index", idx+1)
				s.rotateKey(idx)
				lastErr = err
				continue
			}
			return summarizer.Result{}, fmt.Errorf("generate content: %w", err)
		}
		return parseResult(text)
	}
	return summarizer.Result{}, fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *GeminiSummarizer) callGemini(ctx context.Context, apiKey, transcript string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(transcript), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(s.systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    summarySchema,
	})
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}
	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", errEmptyResponse
	}
	return text.String(), nil
}

var summarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {Type: genai.TypeString},
		"actionItems": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"summary", "actionItems"},
}

func (s *GeminiSummarizer) key() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentKey, s.apiKeys[s.currentKey]
}

// rotateKey advances past idx unless another request already moved on.
func (s *GeminiSummarizer) rotateKey(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentKey == idx {
		s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
