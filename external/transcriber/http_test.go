package transcriber

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/audio"
)

func TestHTTPTranscriber_SendsMultipartFile(t *testing.T) {
	var gotAuth, gotModel, gotLanguage, gotName, gotType, gotData string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotName = header.Filename
		gotType = header.Header.Get("Content-Type")
		gotData = string(data)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"hello team"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(HTTPConfig{URL: srv.URL, APIKey: "secret", Model: "whisper-1", Language: "en-US"})
	text, err := tr.Transcribe(context.Background(), audio.Artifact{
		Name:      "standup.mp3",
		MediaType: "audio/mpeg",
		Data:      []byte("ID3data"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello team" {
		t.Fatalf("unexpected transcript: %q", text)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotModel != "whisper-1" || gotLanguage != "en" {
		t.Fatalf("unexpected fields: model=%q language=%q", gotModel, gotLanguage)
	}
	if gotName != "standup.mp3" || gotType != "audio/mpeg" || gotData != "ID3data" {
		t.Fatalf("unexpected file part: %q %q %q", gotName, gotType, gotData)
	}
}

func TestHTTPTranscriber_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("no such route"))
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(HTTPConfig{URL: srv.URL})
	_, err := tr.Transcribe(context.Background(), audio.Artifact{Name: "a.wav", MediaType: "audio/wav"})
	var statusErr *apperror.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected status error, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound || statusErr.Body != "no such route" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}

func TestHTTPTranscriber_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(HTTPConfig{URL: srv.URL})
	if _, err := tr.Transcribe(context.Background(), audio.Artifact{Name: "a.wav", MediaType: "audio/wav"}); err == nil {
		t.Fatal("expected JSON error")
	}
}
