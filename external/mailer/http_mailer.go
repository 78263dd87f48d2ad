package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/mailer"
)

const maxErrorBodyBytes = 2048

type HTTPSender struct {
	apiURL string
	apiKey string
	client *http.Client
}

func NewHTTPSender(apiURL, apiKey string) mailer.Sender {
	return &HTTPSender{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{},
	}
}

type emailPayload struct {
	To          []string `json:"to"`
	Subject     string   `json:"subject"`
	Summary     string   `json:"summary"`
	ActionItems []string `json:"actionItems"`
	Text        string   `json:"text"`
}

// Send reports success only when the email service answers with a 2xx status.
func (s *HTTPSender) Send(ctx context.Context, msg mailer.Message) error {
	if s.apiURL == "" {
		return mailer.ErrNotConfigured
	}

	items := msg.ActionItems
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(emailPayload{
		To:          msg.Recipients,
		Subject:     msg.Subject,
		Summary:     msg.Summary,
		ActionItems: items,
		Text:        msg.Body,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if !isHTTPSuccessStatus(resp.StatusCode) {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &apperror.StatusError{Service: "email service", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	return nil
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
