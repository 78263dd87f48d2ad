package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Env:                    "development",
		HTTPAddr:               ":8080",
		Transcriber:            TranscriberHTTP,
		TranscribeLanguage:     "en-US",
		TranscriptionAPIURL:    "http://localhost:9000/transcribe",
		Summarizer:             SummarizerHTTP,
		SummaryAPIURL:          "http://localhost:9000/summarize",
		CaptureFinalizeTimeout: 5 * time.Second,
		WorkflowIdleTTL:        2 * time.Hour,
		CaptureIdleTTL:         30 * time.Minute,
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_UnknownTranscriber(t *testing.T) {
	cfg := validConfig()
	cfg.Transcriber = "whisper"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown transcriber")
	}
}

func TestValidate_CloudSpeechRequiresCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Transcriber = TranscriberCloudSpeech
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when cloud speech credentials are missing")
	}
	cfg.GoogleCloudProjectID = "project-id"
	cfg.GoogleCloudCredentialsJSON = `{"type":"service_account"}`
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_GeminiRequiresKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Summarizer = SummarizerGemini
	cfg.SummaryAPIURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when gemini keys are missing")
	}
	cfg.GeminiAPIKeys = []string{"key-1"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_InvalidFinalizeTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.CaptureFinalizeTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive finalize timeout")
	}
}

func TestValidate_InboxRequiresOutputDir(t *testing.T) {
	cfg := validConfig()
	cfg.InboxDir = "/tmp/inbox"
	cfg.InboxMaxConcurrent = 2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when inbox output dir is missing")
	}
	cfg.InboxOutputDir = "/tmp/out"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when required fields are missing")
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{Env: "development"}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development mode")
	}
	cfg.Env = "production"
	if cfg.IsDevelopment() {
		t.Fatal("expected non-development mode")
	}
}

func TestValidate_IdleTTLsMustBePositive(t *testing.T) {
	cfg := validConfig()
	cfg.CaptureIdleTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero capture idle TTL")
	}
	cfg = validConfig()
	cfg.WorkflowIdleTTL = -time.Minute
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative workflow idle TTL")
	}
}
