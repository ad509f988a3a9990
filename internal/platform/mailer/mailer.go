// Copyright (c) 2026 Housika. All rights reserved.

/*
Package mailer sends transactional email.

Production traffic goes through the ZeptoMail REST API. Development without
an API key uses [LogMailer], which records the message instead of sending it.
*/
package mailer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// ErrInvalidMessage is returned before any network call for unusable input.
var ErrInvalidMessage = errors.New("mailer_invalid_message")

// Sender is a from-address the API is allowed to send as.
type Sender struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Message is one outbound email.
type Message struct {
	From          Sender
	To            string
	RecipientName string
	Subject       string
	HTMLBody      string
}

// Validate checks the fields every provider needs.
func (message Message) Validate() error {
	switch {
	case message.From.Address == "" || message.From.Name == "":
		return errors.Join(ErrInvalidMessage, errors.New("sender address and name are required"))
	case !strings.Contains(message.To, "@"):
		return errors.Join(ErrInvalidMessage, errors.New("recipient address is invalid"))
	case message.Subject == "" || message.HTMLBody == "":
		return errors.Join(ErrInvalidMessage, errors.New("subject and body are required"))
	}
	return nil
}

// Mailer delivers a message.
type Mailer interface {
	Send(ctx context.Context, message Message) error
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer returns a mailer for local development.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the envelope. The body is omitted because it carries reset codes.
func (mailer *LogMailer) Send(ctx context.Context, message Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	mailer.logger.InfoContext(ctx, "mail_logged",
		slog.String("from", message.From.Address),
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
	)
	return nil
}
