// Copyright (c) 2026 Housika. All rights reserved.

package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultZeptoEndpoint is the ZeptoMail v1.1 send API.
	DefaultZeptoEndpoint = "https://api.zeptomail.com/v1.1/email"

	zeptoTimeout = 10 * time.Second
)

// ZeptoMailer delivers mail through the ZeptoMail REST API.
type ZeptoMailer struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// ZeptoOption customizes a [ZeptoMailer].
type ZeptoOption func(*ZeptoMailer)

// WithEndpoint overrides the API URL.
func WithEndpoint(endpoint string) ZeptoOption {
	return func(mailer *ZeptoMailer) { mailer.endpoint = endpoint }
}

// WithHTTPClient overrides the transport.
func WithHTTPClient(client *http.Client) ZeptoOption {
	return func(mailer *ZeptoMailer) { mailer.client = client }
}

// NewZeptoMailer builds a client authenticated with apiKey ("Zoho-enczapikey ...").
func NewZeptoMailer(apiKey string, logger *slog.Logger, opts ...ZeptoOption) *ZeptoMailer {
	mailer := &ZeptoMailer{
		apiKey:   apiKey,
		endpoint: DefaultZeptoEndpoint,
		client:   &http.Client{Timeout: zeptoTimeout},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(mailer)
	}
	return mailer
}

type zeptoAddress struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

type zeptoRecipient struct {
	EmailAddress zeptoAddress `json:"email_address"`
}

type zeptoPayload struct {
	From     Sender           `json:"from"`
	To       []zeptoRecipient `json:"to"`
	Subject  string           `json:"subject"`
	HTMLBody string           `json:"htmlbody"`
}

type zeptoError struct {
	Message string `json:"message"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

/*
Send posts one message to ZeptoMail.

Parameters:
  - ctx: context.Context
  - message: Message

Returns:
  - error: ErrInvalidMessage, transport failures, or a non-2xx API response
*/
func (mailer *ZeptoMailer) Send(ctx context.Context, message Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	name := message.RecipientName
	if name == "" {
		name = "User"
	}

	body, err := json.Marshal(zeptoPayload{
		From:     message.From,
		To:       []zeptoRecipient{{EmailAddress: zeptoAddress{Address: message.To, Name: name}}},
		Subject:  message.Subject,
		HTMLBody: message.HTMLBody,
	})
	if err != nil {
		return fmt.Errorf("zepto_encode_failed: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, mailer.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("zepto_request_failed: %w", err)
	}
	request.Header.Set("Authorization", mailer.apiKey)
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := mailer.client.Do(request)
	if err != nil {
		return fmt.Errorf("zepto_send_failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusMultipleChoices {
		var apiError zeptoError
		raw, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
		_ = json.Unmarshal(raw, &apiError)

		reason := apiError.Message
		if reason == "" {
			reason = apiError.Error.Message
		}
		mailer.logger.WarnContext(ctx, "zepto_send_rejected",
			slog.Int("status", response.StatusCode),
			slog.String("from", message.From.Address),
			slog.String("reason", reason),
		)
		return fmt.Errorf("zepto_send_rejected: status %d: %s", response.StatusCode, reason)
	}

	_, _ = io.Copy(io.Discard, response.Body)
	return nil
}
