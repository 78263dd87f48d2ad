package handoff

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/foxseedlab/debrief/internal/apperror"
)

func TestRosterRoundTrip(t *testing.T) {
	in := []Participant{
		{ID: "p-1", Name: "Ada Lovelace", Email: "ada.lovelace@example.com"},
		{ID: "p-2", Name: "Grace", Email: "grace@example.com"},
	}
	token, err := EncodeRoster(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.ContainsAny(token, "+/=") {
		t.Fatalf("token is not url safe: %s", token)
	}
	out, err := DecodeRoster(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("unexpected roster: %+v", out)
	}
}

func TestTranscriptRoundTrip(t *testing.T) {
	token, err := EncodeTranscript("hello & goodbye?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := DecodeTranscript(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Source != SourceMeeting || got.Transcript != "hello & goodbye?" || got.Version != Version {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestDecode_RejectsUnknownVersion(t *testing.T) {
	token := base64.RawURLEncoding.EncodeToString([]byte(`{"v":2,"source":"meeting","transcript":"x"}`))
	_, err := DecodeTranscript(token)
	if err == nil {
		t.Fatal("expected error for unknown version")
	}
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("unexpected kind: %s", apperror.KindOf(err))
	}
}

func TestDecode_RejectsGarbage(t *testing.T) {
	if _, err := DecodeRoster("%%%"); err == nil {
		t.Fatal("expected error for bad encoding")
	}
	token := base64.RawURLEncoding.EncodeToString([]byte(`not json`))
	if _, err := DecodeRoster(token); err == nil {
		t.Fatal("expected error for bad payload")
	}
	missingID := base64.RawURLEncoding.EncodeToString([]byte(`{"v":1,"participants":[{"name":"x"}]}`))
	if _, err := DecodeRoster(missingID); err == nil {
		t.Fatal("expected error for participant without id")
	}
}
