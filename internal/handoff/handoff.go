// Package handoff encodes the payloads passed between the lobby, the capture
// session and the main workflow as versioned, URL-safe tokens.
package handoff

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/foxseedlab/debrief/internal/apperror"
)

const (
	Version       = 1
	SourceMeeting = "meeting"
)

const messageInvalidHandoff = "Invalid meeting handoff. Please start the meeting again."

type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type Roster struct {
	Version      int           `json:"v"`
	Participants []Participant `json:"participants"`
}

type Transcript struct {
	Version    int    `json:"v"`
	Source     string `json:"source"`
	Transcript string `json:"transcript"`
}

func EncodeRoster(participants []Participant) (string, error) {
	if participants == nil {
		participants = []Participant{}
	}
	return encode(Roster{Version: Version, Participants: participants})
}

func DecodeRoster(token string) ([]Participant, error) {
	var r Roster
	if err := decode(token, &r); err != nil {
		return nil, err
	}
	if r.Version != Version {
		return nil, invalid(fmt.Errorf("unsupported roster version %d", r.Version))
	}
	for _, p := range r.Participants {
		if p.ID == "" {
			return nil, invalid(fmt.Errorf("roster participant without id"))
		}
	}
	return r.Participants, nil
}

func EncodeTranscript(transcript string) (string, error) {
	return encode(Transcript{Version: Version, Source: SourceMeeting, Transcript: transcript})
}

func DecodeTranscript(token string) (Transcript, error) {
	var t Transcript
	if err := decode(token, &t); err != nil {
		return Transcript{}, err
	}
	if t.Version != Version {
		return Transcript{}, invalid(fmt.Errorf("unsupported transcript version %d", t.Version))
	}
	if t.Source == "" {
		return Transcript{}, invalid(fmt.Errorf("transcript handoff without source"))
	}
	return t, nil
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func decode(token string, v any) error {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return invalid(fmt.Errorf("decode handoff token: %w", err))
	}
	if err := json.Unmarshal(b, v); err != nil {
		return invalid(fmt.Errorf("parse handoff payload: %w", err))
	}
	return nil
}

func invalid(err error) *apperror.Error {
	return &apperror.Error{Kind: apperror.KindValidation, Message: messageInvalidHandoff, Err: err}
}
