package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
)

const pollTimeout = time.Minute

// Bot delivers finished summaries to a single Telegram chat.
type Bot struct {
	api      *tgbot.Bot
	chatID   int64
	interval time.Duration
	log      *slog.Logger
}

type Options struct {
	Token  string
	ChatID int64
	// ServerURL overrides the Telegram Bot API endpoint.
	ServerURL string
}

func New(opts Options, httpClient *http.Client, log *slog.Logger) (*Bot, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, errors.New("token is empty")
	}
	if opts.ChatID == 0 {
		return nil, errors.New("chat ID is empty")
	}

	botOpts := []tgbot.Option{tgbot.WithSkipGetMe()}
	if serverURL := strings.TrimSpace(opts.ServerURL); serverURL != "" {
		botOpts = append(botOpts, tgbot.WithServerURL(serverURL))
	}
	if httpClient != nil {
		botOpts = append(botOpts, tgbot.WithHTTPClient(pollTimeout, httpClient))
	}

	api, err := tgbot.New(token, botOpts...)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	return &Bot{
		api:      api,
		chatID:   opts.ChatID,
		interval: chatRate(opts.ChatID),
		log:      log,
	}, nil
}
