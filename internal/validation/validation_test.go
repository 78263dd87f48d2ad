package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"testing"

	"github.com/foxseedlab/debrief/internal/apperror"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestValidateAudioFile_UnsupportedType(t *testing.T) {
	for _, mediaType := range []string{"", "video/mp4", "text/plain", "audio/flac", "application/octet-stream"} {
		err := ValidateAudioFile(AudioFile{Name: "a", MediaType: mediaType, Size: 10})
		if err == nil {
			t.Fatalf("expected error for %q", mediaType)
		}
		if err.Error() != MessageUnsupportedAudioType {
			t.Fatalf("unexpected message for %q: %s", mediaType, err.Error())
		}
		if apperror.KindOf(err) != apperror.KindValidation {
			t.Fatalf("unexpected kind: %s", apperror.KindOf(err))
		}
	}
}

func TestValidateAudioFile_SizeBoundary(t *testing.T) {
	for _, mediaType := range SupportedAudioTypes() {
		if err := ValidateAudioFile(AudioFile{MediaType: mediaType, Size: MaxAudioFileSize}); err != nil {
			t.Fatalf("expected %s at exactly 50MiB to pass, got %v", mediaType, err)
		}
		if err := ValidateAudioFile(AudioFile{MediaType: mediaType, Size: 0}); err != nil {
			t.Fatalf("expected empty %s to pass, got %v", mediaType, err)
		}
		err := ValidateAudioFile(AudioFile{MediaType: mediaType, Size: MaxAudioFileSize + 1})
		if err == nil || err.Error() != MessageAudioTooLarge {
			t.Fatalf("expected too-large error for %s, got %v", mediaType, err)
		}
	}
}

func TestValidateAudioFile_OversizedFailsRegardlessOfType(t *testing.T) {
	if err := ValidateAudioFile(AudioFile{MediaType: "video/mp4", Size: MaxAudioFileSize + 1}); err == nil {
		t.Fatal("expected error for oversized unsupported file")
	}
}

func TestValidateAudioFile_IgnoresParametersAndCase(t *testing.T) {
	if err := ValidateAudioFile(AudioFile{MediaType: "audio/webm;codecs=opus", Size: 1}); err != nil {
		t.Fatalf("expected parameters to be ignored, got %v", err)
	}
	if err := ValidateAudioFile(AudioFile{MediaType: "Audio/MPEG", Size: 1}); err != nil {
		t.Fatalf("expected case to be ignored, got %v", err)
	}
}

func TestValidateEmails(t *testing.T) {
	got := ValidateEmails("a@b.com, bad, c@d.com")
	if !reflect.DeepEqual(got.Valid, []string{"a@b.com", "c@d.com"}) {
		t.Fatalf("unexpected valid: %v", got.Valid)
	}
	if !reflect.DeepEqual(got.Invalid, []string{"bad"}) {
		t.Fatalf("unexpected invalid: %v", got.Invalid)
	}
}

func TestValidateEmails_DropsEmptyEntries(t *testing.T) {
	got := ValidateEmails(" , a@b.co,,  ,x y@z.io ")
	if !reflect.DeepEqual(got.Valid, []string{"a@b.co"}) {
		t.Fatalf("unexpected valid: %v", got.Valid)
	}
	if !reflect.DeepEqual(got.Invalid, []string{"x y@z.io"}) {
		t.Fatalf("unexpected invalid: %v", got.Invalid)
	}

	empty := ValidateEmails("   ")
	if empty.Valid == nil || empty.Invalid == nil || len(empty.Valid)+len(empty.Invalid) != 0 {
		t.Fatalf("expected two empty lists, got %+v", empty)
	}
}

func TestFormatErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: messageUnexpected},
		{name: "empty message", err: errors.New(""), want: messageUnexpected},
		{name: "raw fallback", err: errors.New("quota reached"), want: "quota reached"},
		{name: "dial failure", err: &url.Error{Op: "Post", URL: "http://x", Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}, want: messageNetwork},
		{name: "request timeout", err: &url.Error{Op: "Post", URL: "http://x", Err: context.DeadlineExceeded}, want: messageNetwork},
		{name: "unsupported scheme", err: &url.Error{Op: "Post", URL: "ftp://x", Err: errors.New(`unsupported protocol scheme "ftp"`)}, want: `Post "ftp://x": unsupported protocol scheme "ftp"`},
		{name: "grpc unavailable", err: status.Error(codes.Unavailable, "down"), want: messageNetwork},
		{name: "api key text", err: errors.New("invalid API key provided"), want: messageAPIKey},
		{name: "unauthorized status", err: &apperror.StatusError{Service: "summarizer", StatusCode: 401}, want: messageAPIKey},
		{name: "grpc unauthenticated", err: status.Error(codes.Unauthenticated, "no creds"), want: messageAPIKey},
		{name: "json text", err: errors.New("unexpected JSON token"), want: messageParsing},
		{name: "json syntax", err: fmt.Errorf("decode: %w", &json.SyntaxError{Offset: 1}), want: messageParsing},
		{name: "cors", err: errors.New("blocked by CORS policy"), want: messageCORS},
		{name: "not found status", err: &apperror.StatusError{Service: "mailer", StatusCode: 404}, want: messageNotFound},
		{name: "grpc not found", err: status.Error(codes.NotFound, "recognizer missing"), want: messageNotFound},
		{name: "server status", err: &apperror.StatusError{Service: "mailer", StatusCode: 503}, want: messageServer},
		{name: "server text", err: errors.New("HTTP 500"), want: messageServer},
		{name: "api key before json", err: errors.New("API key missing in JSON body"), want: messageAPIKey},
		{name: "json before 404", err: errors.New("JSON 404"), want: messageParsing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatErrorMessage(tt.err); got != tt.want {
				t.Fatalf("unexpected message: got %q, want %q", got, tt.want)
			}
		})
	}
}
