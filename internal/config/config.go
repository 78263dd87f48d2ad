package config

import (
	"fmt"
	"time"
)

const (
	TranscriberHTTP        = "http"
	TranscriberCloudSpeech = "cloud_speech"

	SummarizerHTTP   = "http"
	SummarizerGemini = "gemini"
)

type Config struct {
	Env                string
	HTTPAddr           string
	CORSAllowedOrigins []string

	Transcriber                string
	TranscribeLanguage         string
	TranscriptionAPIURL        string
	TranscriptionAPIKey        string
	TranscriptionModel         string
	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string

	Summarizer        string
	SummaryAPIURL     string
	SummaryAPIKey     string
	GeminiAPIKeys     []string
	GeminiModel       string
	SummaryPromptFile string

	EmailAPIURL  string
	EmailAPIKey  string
	EmailSubject string

	ShareDiscordWebhookURL string

	CaptureFinalizeTimeout time.Duration
	WorkflowIdleTTL        time.Duration
	CaptureIdleTTL         time.Duration

	InboxDir           string
	InboxOutputDir     string
	InboxMaxConcurrent int
	InboxAutoSummarize bool

	FFmpegPath        string
	FFmpegInputFormat string
	FFmpegInputDevice string
}

func (c *Config) Validate() error {
	switch c.Transcriber {
	case TranscriberHTTP, TranscriberCloudSpeech:
	default:
		return fmt.Errorf("TRANSCRIBER must be %q or %q, got %q", TranscriberHTTP, TranscriberCloudSpeech, c.Transcriber)
	}
	switch c.Summarizer {
	case SummarizerHTTP, SummarizerGemini:
	default:
		return fmt.Errorf("SUMMARIZER must be %q or %q, got %q", SummarizerHTTP, SummarizerGemini, c.Summarizer)
	}
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.Summarizer == SummarizerGemini && len(c.GeminiAPIKeys) == 0 {
		return fmt.Errorf("GEMINI_API_KEYS is required when SUMMARIZER=%s", SummarizerGemini)
	}
	if c.CaptureFinalizeTimeout <= 0 {
		return fmt.Errorf("CAPTURE_FINALIZE_TIMEOUT must be positive, got %s", c.CaptureFinalizeTimeout)
	}
	if c.WorkflowIdleTTL <= 0 {
		return fmt.Errorf("WORKFLOW_IDLE_TTL must be positive, got %s", c.WorkflowIdleTTL)
	}
	if c.CaptureIdleTTL <= 0 {
		return fmt.Errorf("CAPTURE_IDLE_TTL must be positive, got %s", c.CaptureIdleTTL)
	}
	if c.InboxDir != "" {
		if c.InboxOutputDir == "" {
			return fmt.Errorf("INBOX_OUTPUT_DIR is required when INBOX_DIR is set")
		}
		if c.InboxMaxConcurrent <= 0 {
			return fmt.Errorf("INBOX_MAX_CONCURRENT must be positive, got %d", c.InboxMaxConcurrent)
		}
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	fields := []requiredEnvField{
		{name: "HTTP_ADDR", value: c.HTTPAddr},
		{name: "TRANSCRIBE_LANGUAGE", value: c.TranscribeLanguage},
	}
	switch c.Transcriber {
	case TranscriberHTTP:
		fields = append(fields, requiredEnvField{name: "TRANSCRIPTION_API_URL", value: c.TranscriptionAPIURL})
	case TranscriberCloudSpeech:
		fields = append(fields,
			requiredEnvField{name: "GOOGLE_CLOUD_PROJECT_ID", value: c.GoogleCloudProjectID},
			requiredEnvField{name: "GOOGLE_CLOUD_CREDENTIALS_JSON", value: c.GoogleCloudCredentialsJSON},
		)
	}
	if c.Summarizer == SummarizerHTTP {
		fields = append(fields, requiredEnvField{name: "SUMMARY_API_URL", value: c.SummaryAPIURL})
	}
	return fields
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
