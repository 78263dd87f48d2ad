package mailer

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("Email service is not configured")

type Message struct {
	Recipients  []string
	Subject     string
	Summary     string
	ActionItems []string
	Body        string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}
