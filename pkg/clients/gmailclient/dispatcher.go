package gmailclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/opencourt/playday/pkg/core/services"
)

const EMAIL_INTERVAL = 3 * time.Second

// renderTemplate maps a template name and its data to a plain-text subject
// and body. Unknown template names fall back to a generic league notice.
func renderTemplate(template string, data map[string]string) (subject, body string) {
	switch template {
	case services.TemplateEventCancelled:
		subject = fmt.Sprintf("Cancelled: %s on %s", data["title"], data["date"])
		body = fmt.Sprintf(
			"%s scheduled for %s (%s) has been cancelled.\n\nReason: %s\n\nSee you at the next play day.",
			data["title"], data["date"], data["schedule"], data["reason"])
	case services.TemplateVolunteerApproved:
		subject = fmt.Sprintf("You're the %s volunteer for %s", data["slot"], data["title"])
		body = fmt.Sprintf(
			"Hi %s,\n\nYour volunteer request was approved. You are the %s volunteer for %s on %s.\n\nThanks for helping out!",
			data["name"], data["slot"], data["title"], data["date"])
	case services.TemplateVolunteerRejected:
		subject = fmt.Sprintf("Volunteer request for %s", data["title"])
		body = fmt.Sprintf(
			"Hi %s,\n\nYour volunteer request for %s on %s was not accepted this time. You can request again for a future play day.",
			data["name"], data["title"], data["date"])
	default:
		subject = "League notice"
		var lines []string
		for k, v := range data {
			lines = append(lines, fmt.Sprintf("%s: %s", k, v))
		}
		body = strings.Join(lines, "\n")
	}
	return subject, body
}

// Send delivers one templated notification
// Throttles requests to respect Gmail API rate limits
func (c *Client) Send(ctx context.Context, template string, data map[string]string, recipient string) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if !c.lastSendTime.IsZero() {
		elapsed := time.Since(c.lastSendTime)
		if elapsed < EMAIL_INTERVAL {
			select {
			case <-time.After(EMAIL_INTERVAL - elapsed):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	subject, body := renderTemplate(template, data)

	headers := fmt.Sprintf("To: %s\r\nSubject: %s\r\n", recipient, subject)
	if c.sender != "" {
		headers = fmt.Sprintf("From: %s\r\n", c.sender) + headers
	}
	message := headers + "\r\n" + body

	encodedMessage := base64.URLEncoding.EncodeToString([]byte(message))

	gmailMessage := &gmail.Message{
		Raw: encodedMessage,
	}

	_, err := c.service.Users.Messages.Send("me", gmailMessage).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.lastSendTime = time.Now()

	return nil
}

// SendBatch delivers the same notification to every recipient, counting
// successes and failures instead of stopping at the first error
func (c *Client) SendBatch(ctx context.Context, template string, data map[string]string, recipients []string) (services.BatchStats, error) {
	var stats services.BatchStats
	var firstErr error

	for _, recipient := range recipients {
		if err := c.Send(ctx, template, data, recipient); err != nil {
			stats.Failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		stats.Sent++
	}

	return stats, firstErr
}
