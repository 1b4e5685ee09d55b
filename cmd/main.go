package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"pagebrief/internal/bot"
	"pagebrief/internal/cleaner"
	"pagebrief/internal/config"
	"pagebrief/internal/console"
	"pagebrief/internal/domain"
	"pagebrief/internal/pipeline"
	"pagebrief/internal/scraper"
	"pagebrief/internal/summarizer"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
)

const dotenvPath = ".env"

func main() {
	level := new(slog.LevelVar)
	// Stdout carries the run output, so logs go to stderr.
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, level, log)
	stop()

	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, level *slog.LevelVar, log *slog.Logger) error {
	start := time.Now()

	cfg, err := config.Load(dotenvPath)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err,
			"dotenvPath", dotenvPath)

		return err
	}
	level.Set(cfg.LogLevel)

	rawURL := cfg.TargetURL
	if len(os.Args) > 1 {
		rawURL = os.Args[1]
	}

	targetURL, err := scraper.NormalizeTargetURL(rawURL)
	if err != nil {
		log.ErrorContext(ctx, "Invalid target URL",
			"error", err,
			"targetURL", rawURL)

		return err
	}

	runner, err := initRunner(ctx, cfg, log)
	if err != nil {
		return err
	}

	result, err := runner.Run(ctx, targetURL)
	if err != nil {
		log.ErrorContext(ctx, "Failed to run pipeline",
			"error", err,
			"kind", domain.KindOf(err),
			"targetURL", targetURL,
			"scraped", result.Scraped)

		return err
	}

	log.InfoContext(ctx, "Run is finished",
		"targetURL", targetURL,
		"scraped", result.Scraped,
		"delivered", result.Delivered,
		"uptimeSeconds", time.Since(start).Seconds())

	return nil
}

func initRunner(ctx context.Context, cfg config.Config, log *slog.Logger) (*pipeline.Runner, error) {
	fetcher := scraper.NewUnlocker(scraper.Options{
		Token:    cfg.Scrape.Token,
		Zone:     cfg.Scrape.Zone,
		Endpoint: cfg.Scrape.Endpoint,
	}, &http.Client{Timeout: cfg.Scrape.Timeout}, log)

	c, err := cleaner.New(cleaner.Mode(cfg.CleanMode), log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create cleaner",
			"error", err,
			"cleanMode", cfg.CleanMode)

		return nil, err
	}
	log.InfoContext(ctx, "Cleaner is initialized",
		"cleanMode", c.Mode())

	s, err := initSummarizer(ctx, cfg.LLM, log)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Fetcher:    fetcher,
		Cleaner:    c,
		Summarizer: s,
		Console:    console.New(os.Stdout, os.Stderr, cfg.Spinner && isatty.IsTerminal(os.Stderr.Fd())),
	}

	if cfg.Telegram.Enabled() {
		b, botErr := bot.New(bot.Options{
			Token:     cfg.Telegram.Token,
			ChatID:    cfg.Telegram.ChatID,
			ServerURL: cfg.Telegram.ServerURL,
		}, nil, log)
		if botErr != nil {
			log.ErrorContext(ctx, "Failed to initialize bot",
				"error", botErr,
				"chatID", cfg.Telegram.ChatID)

			return nil, botErr
		}
		deps.Deliverer = b

		log.InfoContext(ctx, "Telegram delivery is enabled",
			"chatID", cfg.Telegram.ChatID)
	}

	return pipeline.New(deps, cfg.PreviewChars, log), nil
}

func initSummarizer(
	ctx context.Context,
	cfg config.LLMConfig,
	log *slog.Logger,
) (summarizer.Summarizer, error) {
	params := summarizer.Params{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	var (
		s   summarizer.Summarizer
		err error
	)

	switch cfg.Provider {
	case config.ProviderOpenAI:
		s, err = summarizer.NewOpenAISummarizer(summarizer.OpenAIOptions{
			APIKey:          cfg.OpenAIAPIKey,
			BaseURL:         cfg.BaseURL,
			Params:          params,
			LegacyMaxTokens: cfg.TokenField == config.TokenFieldMaxTokens,
		}, httpClient)
	case config.ProviderOllama:
		s, err = summarizer.NewOllamaSummarizer(summarizer.OllamaOptions{
			ServerURL: cfg.OllamaURL,
			Params:    params,
		}, httpClient)
	default:
		err = errors.New("unknown provider")
	}

	if err != nil {
		err = fmt.Errorf("init %s summarizer: %w", cfg.Provider, err)
		log.ErrorContext(ctx, "Failed to create summarizer",
			"error", err,
			"provider", cfg.Provider,
			"model", cfg.Model)

		return nil, err
	}

	log.InfoContext(ctx, "Summarizer is initialized",
		"provider", cfg.Provider,
		"model", cfg.Model)

	return s, nil
}
