package cleaner

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"pagebrief/internal/domain"

	readability "github.com/go-shiori/go-readability"
)

type Mode string

const (
	ModeText    Mode = "text"
	ModeArticle Mode = "article"

	// Below this many characters the readability result is treated as a miss.
	minArticleLength = 50
)

type Cleaner struct {
	mode Mode
	log  *slog.Logger
}

func New(mode Mode, log *slog.Logger) (*Cleaner, error) {
	switch mode {
	case ModeText, ModeArticle:
	default:
		return nil, fmt.Errorf("unknown clean mode: %q", mode)
	}

	return &Cleaner{mode: mode, log: log}, nil
}

func (c *Cleaner) Mode() Mode {
	return c.mode
}

// Clean turns the raw page markup into plain text.
func (c *Cleaner) Clean(ctx context.Context, page domain.Page) string {
	if c.mode == ModeArticle {
		return c.article(ctx, page)
	}

	return Text(page.HTML)
}

// article isolates the main content with Readability and falls back to the whole document.
func (c *Cleaner) article(ctx context.Context, page domain.Page) string {
	pageURL, err := url.Parse(page.URL)
	if err != nil {
		c.log.WarnContext(ctx, "Invalid page URL so whole document is used",
			"error", err,
			"url", page.URL)

		return Text(page.HTML)
	}

	article, err := readability.FromReader(strings.NewReader(page.HTML), pageURL)
	if err != nil {
		c.log.WarnContext(ctx, "Failed to extract article so whole document is used",
			"error", err,
			"url", page.URL)

		return Text(page.HTML)
	}

	if len(strings.TrimSpace(article.TextContent)) < minArticleLength {
		c.log.WarnContext(ctx, "Extracted article is too short so whole document is used",
			"url", page.URL,
			"articleLen", len(article.TextContent))

		return Text(page.HTML)
	}

	return Text(article.Content)
}
