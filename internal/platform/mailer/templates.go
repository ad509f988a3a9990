// Copyright (c) 2026 Housika. All rights reserved.

package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

const layout = `<div style="font-family: 'Segoe UI', Roboto, Arial, sans-serif; padding: 40px; background-color: #f9f9f9;">
  <div style="max-width: 640px; margin: auto; background: #fff; border-radius: 8px; overflow: hidden;">
    <header style="background-color: #b31b1b; color: #fff; padding: 20px 30px;">
      <h2 style="margin: 0;">{{template "title" .}}</h2>
    </header>
    <main style="padding: 30px;">{{template "content" .}}</main>
    <footer style="background-color: #f0f0f0; padding: 20px 30px; font-size: 0.85em; color: #666;">
      <p>{{.Brand}} is a technology platform operated under Pansoft Technologies Kenya.</p>
      <p>Questions? Write to <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a>.</p>
    </footer>
  </div>
</div>`

const passwordResetBody = `
{{define "title"}}Reset your {{.Brand}} password{{end}}
{{define "content"}}
<p>Hello {{.RecipientName}},</p>
<p>We received a request to reset your password. Use the link below or enter the code in the app. Both expire in one hour.</p>
<p><a href="{{.ResetLink}}" style="background:#b31b1b;color:#fff;padding:12px 20px;border-radius:4px;text-decoration:none;">Reset password</a></p>
<p style="font-size: 1.4em; letter-spacing: 4px;"><strong>{{.OTP}}</strong></p>
<p>If you did not ask for this, you can ignore this email.</p>
{{end}}`

const welcomeBody = `
{{define "title"}}Welcome to {{.Brand}}, {{.RecipientName}}!{{end}}
{{define "content"}}
<p>An account has been created for you with the role <strong>{{.Role}}</strong>.</p>
<p>You can sign in at <a href="{{.LoginURL}}">{{.LoginURL}}</a> with this email address.</p>
{{end}}`

const staffNoticeBody = `
{{define "title"}}{{.Brand}} {{.Desk}}{{end}}
{{define "content"}}
<p style="font-size: 1.1em;">Dear {{.RecipientName}},</p>
<p style="line-height: 1.6; white-space: pre-line;">{{.Message}}</p>
<p style="margin-top: 30px; font-size: 0.95em; color: #555;">Issued by the {{.Desk}} on {{.Date}}. This message is logged for audit purposes.</p>
{{end}}`

var (
	staffNoticeTemplate   = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(staffNoticeBody))
	passwordResetTemplate = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(passwordResetBody))
	welcomeTemplate       = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(welcomeBody))
)

// Branding is shared by every template.
type Branding struct {
	Brand        string
	SupportEmail string
}

// PasswordResetData fills the password reset email.
type PasswordResetData struct {
	Branding
	RecipientName string
	ResetLink     string
	OTP           string
}

// WelcomeData fills the email sent when staff create an account.
type WelcomeData struct {
	Branding
	RecipientName string
	Role          string
	LoginURL      string
}

// StaffNoticeData fills a message written by a staff desk.
type StaffNoticeData struct {
	Branding
	Desk          string
	RecipientName string
	Message       string
	Date          string
}

// RenderStaffNotice returns the HTML body of a staff desk message. The message
// text is escaped.
func RenderStaffNotice(data StaffNoticeData) (string, error) {
	return render(staffNoticeTemplate, data)
}

// RenderPasswordReset returns the HTML body of the reset email.
func RenderPasswordReset(data PasswordResetData) (string, error) {
	return render(passwordResetTemplate, data)
}

// RenderWelcome returns the HTML body of the welcome email.
func RenderWelcome(data WelcomeData) (string, error) {
	return render(welcomeTemplate, data)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buffer bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buffer, "layout", data); err != nil {
		return "", fmt.Errorf("mailer_render_failed: %w", err)
	}
	return buffer.String(), nil
}
