package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TRANSCRIPTION_API_URL", "http://localhost:9000/transcribe")
	t.Setenv("SUMMARY_API_URL", "http://localhost:9000/summarize")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CaptureFinalizeTimeout != 5*time.Second {
		t.Fatalf("unexpected finalize timeout: %s", cfg.CaptureFinalizeTimeout)
	}
	if cfg.Transcriber != "http" || cfg.Summarizer != "http" {
		t.Fatalf("unexpected providers: %s/%s", cfg.Transcriber, cfg.Summarizer)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.WorkflowIdleTTL != 2*time.Hour || cfg.CaptureIdleTTL != 30*time.Minute {
		t.Fatalf("unexpected idle TTLs: %s/%s", cfg.WorkflowIdleTTL, cfg.CaptureIdleTTL)
	}
	if cfg.EmailSubject != "Meeting Summary" {
		t.Fatalf("unexpected email subject: %q", cfg.EmailSubject)
	}
}

func TestLoad_InvalidProvider(t *testing.T) {
	t.Setenv("TRANSCRIBER", "unknown")
	t.Setenv("TRANSCRIPTION_API_URL", "http://localhost:9000/transcribe")
	t.Setenv("SUMMARY_API_URL", "http://localhost:9000/summarize")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown transcriber")
	}
}
