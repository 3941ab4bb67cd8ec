package email

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/subscription/usecases"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/biztime"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/config"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/services/markdown"
)

// sender is the part of gomail.Dialer the notifier needs.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier mails billing operators when a subscription is suspended.
type SMTPNotifier struct {
	from       string
	fromName   string
	recipients []string
	dialer     sender
	markdown   markdown.MarkdownService
	logger     logger.Interface
}

var _ usecases.AdminNotifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(cfg config.EmailConfig, recipients []string, log logger.Interface) *SMTPNotifier {
	return newSMTPNotifier(
		cfg,
		recipients,
		gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		log,
	)
}

func newSMTPNotifier(cfg config.EmailConfig, recipients []string, dialer sender, log logger.Interface) *SMTPNotifier {
	return &SMTPNotifier{
		from:       cfg.FromAddress,
		fromName:   cfg.FromName,
		recipients: recipients,
		dialer:     dialer,
		markdown:   markdown.NewMarkdownService(),
		logger:     log.With("component", "email.smtp"),
	}
}

// NotifySubscriptionSuspended sends one message to every configured recipient.
// With no recipients it does nothing.
func (n *SMTPNotifier) NotifySubscriptionSuspended(ctx context.Context, notice usecases.SubscriptionSuspendedNotice) error {
	if len(n.recipients) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// The failure reason comes from the provider payload.
	reason := n.markdown.StripTags(notice.LastFailureReason)
	if reason == "" {
		reason = "not reported"
	}

	body := suspensionMarkdown(notice, reason)
	htmlBody, err := n.markdown.ToHTMLSanitized(body)
	if err != nil {
		return fmt.Errorf("failed to render notification: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.from, n.fromName)
	m.SetHeader("To", n.recipients...)
	m.SetHeader("Subject", fmt.Sprintf("Subscription #%d suspended after repeated payment failures", notice.SubscriptionID))
	m.SetBody("text/plain", body)
	m.AddAlternative("text/html", htmlBody)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Infow("suspension notice sent",
		"subscription_id", notice.SubscriptionID,
		"recipients", len(n.recipients),
	)
	return nil
}

func suspensionMarkdown(notice usecases.SubscriptionSuspendedNotice, reason string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Subscription #%d suspended\n\n", notice.SubscriptionID)
	fmt.Fprintf(&b, "%d failed payments within %d days expired this subscription.\n\n",
		notice.FailedPayments, int(notice.Window.Hours()/24))
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| User | %d |\n", notice.UserID)
	fmt.Fprintf(&b, "| Plan | %s |\n", notice.Plan)
	fmt.Fprintf(&b, "| Last failure | %s |\n", strings.ReplaceAll(reason, "|", "/"))
	fmt.Fprintf(&b, "| Suspended at | %s |\n", biztime.Stamp(notice.SuspendedAt))
	return b.String()
}
