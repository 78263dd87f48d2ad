package lobby

import (
	"strings"
	"sync"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/handoff"
	"github.com/foxseedlab/debrief/internal/validation"
	"github.com/google/uuid"
)

const (
	HostID   = "host"
	HostName = "You"

	messageInvalidParticipant   = "Please enter a valid email address"
	messageDuplicateParticipant = "This participant has already been added"
)

type Participant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	IsHost    bool   `json:"isHost"`
	IsMuted   bool   `json:"isMuted"`
	IsVideoOn bool   `json:"isVideoOn"`
}

// Lobby collects invitees before a meeting starts.
type Lobby struct {
	mu           sync.Mutex
	participants []Participant
	newID        func() string
}

func New() *Lobby {
	return &Lobby{newID: uuid.NewString}
}

func (l *Lobby) Add(email string) (Participant, error) {
	email = strings.TrimSpace(email)
	if !validation.IsValidEmail(email) {
		return Participant{}, apperror.Validation(messageInvalidParticipant)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.participants {
		if strings.EqualFold(p.Email, email) {
			return Participant{}, apperror.Validation(messageDuplicateParticipant)
		}
	}
	p := newParticipant(l.newID(), DisplayName(email), email)
	l.participants = append(l.participants, p)
	return p, nil
}

func (l *Lobby) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, p := range l.participants {
		if p.ID == id {
			l.participants = append(l.participants[:i], l.participants[i+1:]...)
			return true
		}
	}
	return false
}

func (l *Lobby) Participants() []Participant {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Participant, len(l.participants))
	copy(out, l.participants)
	return out
}

// Handoff returns the participants in the form carried to the capture session.
func (l *Lobby) Handoff() []handoff.Participant {
	participants := l.Participants()
	out := make([]handoff.Participant, 0, len(participants))
	for _, p := range participants {
		out = append(out, handoff.Participant{ID: p.ID, Name: p.Name, Email: p.Email})
	}
	return out
}

// Roster builds the in-meeting participant list with the host first.
// Everyone starts unmuted with video on.
func Roster(invitees []handoff.Participant) []Participant {
	roster := make([]Participant, 0, len(invitees)+1)
	host := newParticipant(HostID, HostName, "")
	host.IsHost = true
	roster = append(roster, host)
	for _, in := range invitees {
		name := in.Name
		if name == "" {
			name = DisplayName(in.Email)
		}
		roster = append(roster, newParticipant(in.ID, name, in.Email))
	}
	return roster
}

func newParticipant(id, name, email string) Participant {
	return Participant{ID: id, Name: name, Email: email, IsMuted: false, IsVideoOn: true}
}

// DisplayName derives a name from the local part of an email address:
// "ada.lovelace@example.com" becomes "Ada Lovelace".
func DisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.NewReplacer(".", " ", "_", " ").Replace(local)
	b := []byte(local)
	prevWord := false
	for i, c := range b {
		word := isWordByte(c)
		if word && !prevWord && 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
		prevWord = word
	}
	return string(b)
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
