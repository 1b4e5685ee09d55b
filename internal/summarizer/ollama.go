package summarizer

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"pagebrief/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	DefaultOllamaURL = "http://localhost:11434"

	ollamaService = "ollama"
)

// OllamaSummarizer sends the same conversation to a local Ollama server through langchaingo.
type OllamaSummarizer struct {
	llm    llms.Model
	params Params
}

type OllamaOptions struct {
	ServerURL string
	Params    Params
}

func NewOllamaSummarizer(opts OllamaOptions, httpClient *http.Client) (*OllamaSummarizer, error) {
	serverURL := strings.TrimSpace(opts.ServerURL)
	if serverURL == "" {
		serverURL = DefaultOllamaURL
	}

	params := opts.Params.withDefaults()

	ollamaOpts := []ollama.Option{
		ollama.WithModel(params.Model),
		ollama.WithServerURL(serverURL),
	}
	if httpClient != nil {
		ollamaOpts = append(ollamaOpts, ollama.WithHTTPClient(httpClient))
	}

	llm, err := ollama.New(ollamaOpts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return &OllamaSummarizer{llm: llm, params: params}, nil
}

func (s *OllamaSummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	if strings.TrimSpace(input.Text) == "" {
		return "", &domain.CallError{
			Service: ollamaService,
			Kind:    domain.KindInvalidInput,
			Message: "input is empty",
		}
	}

	messages := BuildMessages(input.Text)
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case RoleUser:
			content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		}
	}

	resp, err := s.llm.GenerateContent(ctx, content,
		llms.WithTemperature(s.params.Temperature),
		llms.WithMaxTokens(int(s.params.MaxTokens)),
	)
	if err != nil {
		return "", &domain.CallError{
			Service: ollamaService,
			Kind:    domain.KindNetwork,
			Err:     err,
		}
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", &domain.CallError{
			Service: ollamaService,
			Kind:    domain.KindMalformedResponse,
			Message: "response has no choices",
		}
	}

	summary := strings.TrimSpace(resp.Choices[0].Content)
	if summary == "" {
		return "", &domain.CallError{
			Service: ollamaService,
			Kind:    domain.KindMalformedResponse,
			Message: "first choice has no content",
		}
	}

	return summary, nil
}
