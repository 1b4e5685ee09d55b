package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pagebrief/internal/domain"
	"pagebrief/internal/markdown"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	telegramMessageMaxLength = 4096
	telegramService          = "telegram"

	summaryHeader     = "🟢 *Summary*\n"
	summaryContHeader = "🟢 *Summary \\(continue\\)*\n\n"
)

// Deliver sends the summary as one or more MarkdownV2 messages, in order.
func (b *Bot) Deliver(ctx context.Context, d domain.Delivery) error {
	messages := formatDelivery(d)
	if len(messages) == 0 {
		return nil
	}

	var errs []error

	for i, message := range messages {
		if i > 0 {
			if err := pause(ctx, b.interval); err != nil {
				errs = append(errs, fmt.Errorf("wait before message %d of %d: %w", i+1, len(messages), err))

				break
			}
		}

		_, err := b.api.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID:    b.chatID,
			Text:      message,
			ParseMode: models.ParseModeMarkdown,
			LinkPreviewOptions: &models.LinkPreviewOptions{
				IsDisabled: tgbot.True(),
			},
		})
		if err != nil {
			errs = append(errs, &domain.CallError{
				Service: telegramService,
				Kind:    domain.KindUpstream,
				Message: fmt.Sprintf("send message %d of %d", i+1, len(messages)),
				Err:     err,
			})

			continue
		}

		b.log.DebugContext(ctx, "Summary message is sent",
			"chatID", b.chatID,
			"part", i+1,
			"parts", len(messages),
			"length", len(message))
	}

	return errors.Join(errs...)
}

func formatDelivery(d domain.Delivery) []string {
	summary := strings.TrimSpace(d.Summary)
	if summary == "" {
		return nil
	}

	header := summaryHeader
	if pageURL := strings.TrimSpace(d.URL); pageURL != "" {
		header += markdown.EscapeV2(pageURL) + "\n"
	}
	header += "\n"

	return markdown.Split(header, summaryContHeader, markdown.EscapeV2(summary), telegramMessageMaxLength)
}
