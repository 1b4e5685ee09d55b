package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"mvdan.cc/xurls/v2"
)

// NormalizeTargetURL accepts an absolute http(s) URL. Input containing whitespace must hold
// exactly one such URL, which is extracted from the surrounding text.
func NormalizeTargetURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", errors.New("target URL is empty")
	}

	if strings.ContainsFunc(candidate, isSpace) {
		found, err := extractURL(candidate)
		if err != nil {
			return "", err
		}
		candidate = found
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported URL scheme: %q", u.Scheme)
	}

	if u.Host == "" {
		return "", fmt.Errorf("URL has no host: %q", candidate)
	}

	return u.String(), nil
}

func extractURL(text string) (string, error) {
	re, err := xurls.StrictMatchingScheme(`https?://`)
	if err != nil {
		return "", fmt.Errorf("create regexp: %w", err)
	}

	found := re.FindAllString(text, -1)
	if len(found) != 1 {
		return "", fmt.Errorf("expected a single http(s) URL, found %d in %q", len(found), text)
	}

	return found[0], nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
