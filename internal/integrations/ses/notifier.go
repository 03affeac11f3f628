package ses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"news-summarizer/internal/domain"
)

// sesAPI is the minimal SES v2 interface required by Notifier.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Notifier mails the end-of-run digest to a fixed recipient list.
type Notifier struct {
	api  sesAPI
	from string
	to   []string
}

// New creates a Notifier. Blank recipients are ignored; at least one is required.
func New(api sesAPI, from string, to []string) (*Notifier, error) {
	if api == nil {
		return nil, errors.New("ses: api must not be nil")
	}
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, errors.New("ses: sender must not be empty")
	}
	recipients := make([]string, 0, len(to))
	for _, addr := range to {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	if len(recipients) == 0 {
		return nil, errors.New("ses: at least one recipient is required")
	}
	return &Notifier{api: api, from: from, to: recipients}, nil
}

// Send delivers one email listing every item as a Markdown link.
func (n *Notifier) Send(ctx context.Context, batch []domain.NotificationItem) error {
	if len(batch) == 0 {
		return errors.New("ses: Send: batch is empty")
	}
	_, err := n.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.from),
		Destination:      &types.Destination{ToAddresses: n.to},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(Subject(batch)), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(Body(batch)), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses: Send: %w", err)
	}
	return nil
}

func Subject(batch []domain.NotificationItem) string {
	return fmt.Sprintf("News summaries (%d new)", len(batch))
}

// Body renders one "- [title](url)" line per item, in batch order.
func Body(batch []domain.NotificationItem) string {
	var b strings.Builder
	for _, item := range batch {
		fmt.Fprintf(&b, "- [%s](%s)\n", item.Title, item.URL)
	}
	return b.String()
}
