// Copyright (c) 2026 Housika. All rights reserved.

/*
Package notify lets staff desks email customers and partners.

Each [Desk] sends from its own address and is open to a fixed list of roles.
The admin desk is reserved for admins, the customer care desk for customer
care agents.
*/
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/housika/housika-api/internal/platform/apperr"
	"github.com/housika/housika-api/internal/platform/mailer"
	"github.com/housika/housika-api/internal/platform/sec"
)

// # Desks

// Desk is a staff mailbox reachable at /api/v1/emails/<Path>.
type Desk struct {
	Path   string
	Name   string
	Sender mailer.Sender
	Roles  []sec.Role
}

// AdminDesk sends platform notices on behalf of administrators.
func AdminDesk(sender mailer.Sender) Desk {
	return Desk{Path: "admin", Name: "Admin Desk", Sender: sender, Roles: []sec.Role{sec.RoleAdmin}}
}

// CustomerCareDesk answers customer enquiries.
func CustomerCareDesk(sender mailer.Sender) Desk {
	return Desk{Path: "customer-care", Name: "Customer Care", Sender: sender, Roles: []sec.Role{sec.RoleCustomerCare}}
}

// # Service Layer

const (
	// MaxMessageLength bounds the free-text body of a notice.
	MaxMessageLength = 5000

	// recipientName greets every notice; desks write to external addresses
	// that may not belong to an account.
	recipientName = "Stakeholder"

	dateLayout = "2 January 2006"
)

// Notice is one message written by a staff member.
type Notice struct {
	To      string
	Message string
	Time    time.Time
}

// Service renders and delivers desk notices.
type Service struct {
	mailer   mailer.Mailer
	branding mailer.Branding
	logger   *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(mail mailer.Mailer, branding mailer.Branding, logger *slog.Logger) *Service {
	return &Service{mailer: mail, branding: branding, logger: logger}
}

/*
Send delivers notice from desk.

Description: Unlike account mail, delivery failures are reported to the
caller, who wrote the message and can retry it.

Parameters:
  - ctx: context.Context
  - desk: Desk
  - author: *sec.SessionClaims of the staff member
  - notice: Notice

Returns:
  - error: ValidationError for an undeliverable message, ServiceUnavailable
    when the provider fails
*/
func (service *Service) Send(ctx context.Context, desk Desk, author *sec.SessionClaims, notice Notice) error {
	date := notice.Time.UTC().Format(dateLayout)

	body, err := mailer.RenderStaffNotice(mailer.StaffNoticeData{
		Branding:      service.branding,
		Desk:          desk.Name,
		RecipientName: recipientName,
		Message:       notice.Message,
		Date:          date,
	})
	if err != nil {
		return fmt.Errorf("notify_service_send_failed: %w", err)
	}

	err = service.mailer.Send(ctx, mailer.Message{
		From:          desk.Sender,
		To:            notice.To,
		RecipientName: recipientName,
		Subject:       fmt.Sprintf("%s %s notice, %s", service.branding.Brand, desk.Name, date),
		HTMLBody:      body,
	})
	switch {
	case errors.Is(err, mailer.ErrInvalidMessage):
		return apperr.ValidationError(err.Error())
	case err != nil:
		return apperr.ServiceUnavailable("Email service is temporarily unavailable", err)
	}

	service.logger.InfoContext(ctx, "staff_notice_sent",
		slog.String("desk", desk.Path),
		slog.String("to", notice.To),
		slog.String("sent_by", author.UserID),
	)
	return nil
}
