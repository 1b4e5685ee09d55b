package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"pagebrief/internal/cleaner"
	"pagebrief/internal/console"
	"pagebrief/internal/domain"
	"pagebrief/internal/scraper"
	"pagebrief/internal/summarizer"
)

const DefaultPreviewChars = 1000

type Cleaner interface {
	Clean(ctx context.Context, page domain.Page) string
}

type Deliverer interface {
	Deliver(ctx context.Context, d domain.Delivery) error
}

// Deps are the collaborators of a Runner. Deliverer is optional.
type Deps struct {
	Fetcher    scraper.Fetcher
	Cleaner    Cleaner
	Summarizer summarizer.Summarizer
	Deliverer  Deliverer
	Console    *console.Console
}

type Result struct {
	Scraped     bool
	CleanedText string
	Summary     string
	Delivered   bool
}

// Runner executes scrape, clean, summarize and print once per Run call.
type Runner struct {
	deps         Deps
	previewChars int
	log          *slog.Logger
}

func New(deps Deps, previewChars int, log *slog.Logger) *Runner {
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}

	return &Runner{
		deps:         deps,
		previewChars: previewChars,
		log:          log,
	}
}

// Run processes targetURL. A failed scrape is reported on the console and ends the run
// without an error; the later stages are skipped. Summarization and delivery failures
// are returned.
func (r *Runner) Run(ctx context.Context, targetURL string) (Result, error) {
	out := r.deps.Console

	out.Step("Scraping target URL via Web Unlocker...")

	stop := out.Wait("Waiting for Web Unlocker")
	page, err := r.deps.Fetcher.Fetch(ctx, targetURL)
	stop()

	if err != nil {
		out.Failure("Scrape failed: %v", err)
		r.log.ErrorContext(ctx, "Failed to scrape page",
			"error", err,
			"kind", domain.KindOf(err),
			"targetURL", targetURL)

		return Result{}, nil
	}

	r.log.InfoContext(ctx, "Page is scraped",
		"targetURL", targetURL,
		"contentType", page.ContentType,
		"htmlLen", len(page.HTML))

	out.Success("Scrape complete. Sending to the LLM for summarization...")

	text := r.deps.Cleaner.Clean(ctx, page)
	result := Result{Scraped: true, CleanedText: text}

	r.log.InfoContext(ctx, "Page is cleaned",
		"targetURL", targetURL,
		"textLen", len(text))

	out.Section("📝", fmt.Sprintf("Cleaned page content (first %d characters):", r.previewChars))
	out.Text(cleaner.Preview(text, r.previewChars))

	out.Section("🟢", "Summary of the scraped page:")

	stop = out.Wait("Waiting for the LLM")
	summary, err := r.deps.Summarizer.Summarize(ctx, summarizer.Input{
		Text:      text,
		SourceURL: targetURL,
	})
	stop()

	if err != nil {
		return result, fmt.Errorf("summarize: %w", err)
	}

	result.Summary = summary
	out.Text(summary)

	r.log.InfoContext(ctx, "Summary is ready",
		"targetURL", targetURL,
		"summaryLen", len(summary))

	if r.deps.Deliverer == nil {
		return result, nil
	}

	if err = r.deps.Deliverer.Deliver(ctx, domain.Delivery{URL: targetURL, Summary: summary}); err != nil {
		return result, fmt.Errorf("deliver summary: %w", err)
	}
	result.Delivered = true

	r.log.InfoContext(ctx, "Summary is delivered",
		"targetURL", targetURL)

	return result, nil
}
