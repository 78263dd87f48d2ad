package httpapi

import (
	"net/http"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/handoff"
	"github.com/foxseedlab/debrief/internal/lobby"
)

type lobbyRequest struct {
	Emails []string `json:"emails"`
}

type rejectedInvitee struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

type lobbyResponse struct {
	Participants []lobby.Participant `json:"participants"`
	Rejected     []rejectedInvitee   `json:"rejected"`
	Roster       string              `json:"roster"`
}

// handleLobby turns a list of invitee emails into a roster token that starts a capture.
func (s *Server) handleLobby(w http.ResponseWriter, r *http.Request) {
	var req lobbyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	l := lobby.New()
	rejected := []rejectedInvitee{}
	for _, email := range req.Emails {
		if _, err := l.Add(email); err != nil {
			rejected = append(rejected, rejectedInvitee{Email: email, Error: err.Error()})
		}
	}
	token, err := handoff.EncodeRoster(l.Handoff())
	if err != nil {
		writeError(w, apperror.Remote("Failed to prepare the meeting", err))
		return
	}
	participants := l.Participants()
	if participants == nil {
		participants = []lobby.Participant{}
	}
	writeJSON(w, http.StatusOK, lobbyResponse{
		Participants: participants,
		Rejected:     rejected,
		Roster:       token,
	})
}
