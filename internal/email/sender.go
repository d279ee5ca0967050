// Package email renders and delivers outbound notification emails.
package email

import (
	"context"
	"time"
)

// Sender delivers the CRM's transactional emails. All sends are best-effort
// from the caller's perspective: failures are logged upstream, never retried
// here.
type Sender interface {
	SendLeadAssignedEmail(ctx context.Context, toEmail, employeeName, leadName string) error
	SendLeadConvertedEmail(ctx context.Context, toEmail, leadName string) error
	SendTaskReminderEmail(ctx context.Context, toEmail, taskTitle, leadName string, dueAt time.Time, window string) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NoopSender satisfies Sender without delivering anything. Used when SMTP is
// not configured, so the rest of the system keeps working.
type NoopSender struct{}

func (NoopSender) SendLeadAssignedEmail(ctx context.Context, toEmail, employeeName, leadName string) error {
	return nil
}

func (NoopSender) SendLeadConvertedEmail(ctx context.Context, toEmail, leadName string) error {
	return nil
}

func (NoopSender) SendTaskReminderEmail(ctx context.Context, toEmail, taskTitle, leadName string, dueAt time.Time, window string) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}
