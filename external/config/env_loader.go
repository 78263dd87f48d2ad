package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/debrief/internal/config"
)

type envConfig struct {
	Env                        string        `env:"ENV" envDefault:"production"`
	HTTPAddr                   string        `env:"HTTP_ADDR" envDefault:":8080"`
	CORSAllowedOrigins         []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	Transcriber                string        `env:"TRANSCRIBER" envDefault:"http"`
	TranscribeLanguage         string        `env:"TRANSCRIBE_LANGUAGE" envDefault:"en-US"`
	TranscriptionAPIURL        string        `env:"TRANSCRIPTION_API_URL"`
	TranscriptionAPIKey        string        `env:"TRANSCRIPTION_API_KEY"`
	TranscriptionModel         string        `env:"TRANSCRIPTION_MODEL" envDefault:"whisper-1"`
	GoogleCloudProjectID       string        `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudCredentialsJSON string        `env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechLocation  string        `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel     string        `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"long"`
	Summarizer                 string        `env:"SUMMARIZER" envDefault:"http"`
	SummaryAPIURL              string        `env:"SUMMARY_API_URL"`
	SummaryAPIKey              string        `env:"SUMMARY_API_KEY"`
	GeminiAPIKeys              []string      `env:"GEMINI_API_KEYS" envSeparator:","`
	GeminiModel                string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	SummaryPromptFile          string        `env:"SUMMARY_PROMPT_FILE"`
	EmailAPIURL                string        `env:"EMAIL_API_URL"`
	EmailAPIKey                string        `env:"EMAIL_API_KEY"`
	EmailSubject               string        `env:"EMAIL_SUBJECT" envDefault:"Meeting Summary"`
	ShareDiscordWebhookURL     string        `env:"SHARE_DISCORD_WEBHOOK_URL"`
	CaptureFinalizeTimeout     time.Duration `env:"CAPTURE_FINALIZE_TIMEOUT" envDefault:"5s"`
	WorkflowIdleTTL            time.Duration `env:"WORKFLOW_IDLE_TTL" envDefault:"2h"`
	CaptureIdleTTL             time.Duration `env:"CAPTURE_IDLE_TTL" envDefault:"30m"`
	InboxDir                   string        `env:"INBOX_DIR"`
	InboxOutputDir             string        `env:"INBOX_OUTPUT_DIR"`
	InboxMaxConcurrent         int           `env:"INBOX_MAX_CONCURRENT" envDefault:"2"`
	InboxAutoSummarize         bool          `env:"INBOX_AUTO_SUMMARIZE" envDefault:"false"`
	FFmpegPath                 string        `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	FFmpegInputFormat          string        `env:"FFMPEG_INPUT_FORMAT" envDefault:"pulse"`
	FFmpegInputDevice          string        `env:"FFMPEG_INPUT_DEVICE" envDefault:"default"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		HTTPAddr:                   raw.HTTPAddr,
		CORSAllowedOrigins:         raw.CORSAllowedOrigins,
		Transcriber:                raw.Transcriber,
		TranscribeLanguage:         raw.TranscribeLanguage,
		TranscriptionAPIURL:        raw.TranscriptionAPIURL,
		TranscriptionAPIKey:        raw.TranscriptionAPIKey,
		TranscriptionModel:         raw.TranscriptionModel,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		Summarizer:                 raw.Summarizer,
		SummaryAPIURL:              raw.SummaryAPIURL,
		SummaryAPIKey:              raw.SummaryAPIKey,
		GeminiAPIKeys:              raw.GeminiAPIKeys,
		GeminiModel:                raw.GeminiModel,
		SummaryPromptFile:          raw.SummaryPromptFile,
		EmailAPIURL:                raw.EmailAPIURL,
		EmailAPIKey:                raw.EmailAPIKey,
		EmailSubject:               raw.EmailSubject,
		ShareDiscordWebhookURL:     raw.ShareDiscordWebhookURL,
		CaptureFinalizeTimeout:     raw.CaptureFinalizeTimeout,
		WorkflowIdleTTL:            raw.WorkflowIdleTTL,
		CaptureIdleTTL:             raw.CaptureIdleTTL,
		InboxDir:                   raw.InboxDir,
		InboxOutputDir:             raw.InboxOutputDir,
		InboxMaxConcurrent:         raw.InboxMaxConcurrent,
		InboxAutoSummarize:         raw.InboxAutoSummarize,
		FFmpegPath:                 raw.FFmpegPath,
		FFmpegInputFormat:          raw.FFmpegInputFormat,
		FFmpegInputDevice:          raw.FFmpegInputDevice,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
