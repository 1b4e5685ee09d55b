package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pagebrief/internal/domain"

	"golang.org/x/net/html/charset"
)

const (
	DefaultEndpoint = "https://api.brightdata.com/request"
	DefaultTimeout  = 60 * time.Second

	serviceName = "web unlocker"

	maxBodyBytes      = 32 << 20
	maxErrorBodyBytes = 512
)

// Fetcher retrieves the raw markup of a single page.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (domain.Page, error)
}

type Options struct {
	Token    string
	Zone     string
	Endpoint string
}

// Unlocker calls the Bright Data Web Unlocker request API.
type Unlocker struct {
	opts   Options
	client *http.Client
	log    *slog.Logger
}

func NewUnlocker(opts Options, client *http.Client, log *slog.Logger) *Unlocker {
	if strings.TrimSpace(opts.Endpoint) == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return &Unlocker{
		opts:   opts,
		client: client,
		log:    log,
	}
}

// Fetch asks the Web Unlocker for targetURL in raw format. Exactly one request is made.
func (u *Unlocker) Fetch(ctx context.Context, targetURL string) (domain.Page, error) {
	token := strings.TrimSpace(u.opts.Token)
	if token == "" {
		return domain.Page{}, &domain.CallError{
			Service: serviceName,
			Kind:    domain.KindAuth,
			Message: "API token is empty",
		}
	}

	targetURL = strings.TrimSpace(targetURL)
	if targetURL == "" {
		return domain.Page{}, &domain.CallError{
			Service: serviceName,
			Kind:    domain.KindInvalidInput,
			Message: "target URL is empty",
		}
	}

	body, err := json.Marshal(domain.ScrapeRequest{
		Zone:   u.opts.Zone,
		URL:    targetURL,
		Format: domain.ScrapeFormatRaw,
	})
	if err != nil {
		return domain.Page{}, fmt.Errorf("marshal scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Page{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := u.client.Do(req)
	if err != nil {
		return domain.Page{}, &domain.CallError{
			Service: serviceName,
			Kind:    domain.KindNetwork,
			Err:     err,
		}
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			u.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"endpoint", u.opts.Endpoint,
				"targetURL", targetURL)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.Page{}, &domain.CallError{
			Service:    serviceName,
			Kind:       domain.KindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Message:    errorSnippet(resp.Body),
		}
	}

	contentType := resp.Header.Get("Content-Type")

	html, err := decodeBody(resp.Body, contentType)
	if err != nil {
		var callErr *domain.CallError
		if errors.As(err, &callErr) {
			return domain.Page{}, err
		}

		return domain.Page{}, &domain.CallError{
			Service:    serviceName,
			Kind:       domain.KindMalformedResponse,
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	return domain.Page{
		URL:         targetURL,
		ContentType: contentType,
		HTML:        html,
	}, nil
}

// decodeBody converts the response body to UTF-8 according to its declared or sniffed charset.
// Empty and oversized bodies are rejected rather than passed on.
func decodeBody(body io.Reader, contentType string) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxBodyBytes+1))
	if err != nil {
		return "", &domain.CallError{
			Service: serviceName,
			Kind:    domain.KindNetwork,
			Message: "read response body",
			Err:     err,
		}
	}

	if len(raw) == 0 {
		return "", &domain.CallError{
			Service: serviceName,
			Kind:    domain.KindMalformedResponse,
			Message: "empty response body",
		}
	}
	if len(raw) > maxBodyBytes {
		return "", &domain.CallError{
			Service: serviceName,
			Kind:    domain.KindMalformedResponse,
			Message: fmt.Sprintf("response body exceeds %d bytes", maxBodyBytes),
		}
	}

	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return "", fmt.Errorf("create charset reader: %w", err)
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("decode charset: %w", err)
	}

	return string(decoded), nil
}

func errorSnippet(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil {
		return ""
	}

	return strings.Join(strings.Fields(string(raw)), " ")
}
