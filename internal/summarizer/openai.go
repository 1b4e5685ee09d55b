package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pagebrief/internal/domain"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const openAIService = "openai"

// OpenAISummarizer calls OpenAI's Chat Completions API to produce summaries.
type OpenAISummarizer struct {
	client       openai.Client
	params       Params
	legacyTokens bool
}

type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Params  Params
	// LegacyMaxTokens sends max_tokens instead of max_completion_tokens.
	LegacyMaxTokens bool
}

// NewOpenAISummarizer builds a new summarizer instance.
// Retries are disabled: every Summarize call is a single request.
func NewOpenAISummarizer(opts OpenAIOptions, httpClient *http.Client) (*OpenAISummarizer, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(httpClient))
	}

	return &OpenAISummarizer{
		client:       openai.NewClient(reqOpts...),
		params:       opts.Params.withDefaults(),
		legacyTokens: opts.LegacyMaxTokens,
	}, nil
}

// Summarize sends the fixed conversation and returns the first choice.
func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	if strings.TrimSpace(input.Text) == "" {
		return "", &domain.CallError{
			Service: openAIService,
			Kind:    domain.KindInvalidInput,
			Message: "input is empty",
		}
	}

	messages := BuildMessages(input.Text)
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			params = append(params, openai.SystemMessage(m.Content))
		case RoleUser:
			params = append(params, openai.UserMessage(m.Content))
		}
	}

	req := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.params.Model),
		Messages:    params,
		Temperature: openai.Float(s.params.Temperature),
	}
	if s.legacyTokens {
		req.MaxTokens = openai.Int(s.params.MaxTokens)
	} else {
		req.MaxCompletionTokens = openai.Int(s.params.MaxTokens)
	}

	resp, err := s.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &domain.CallError{
			Service: openAIService,
			Kind:    domain.KindMalformedResponse,
			Message: "response has no choices",
		}
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", &domain.CallError{
			Service: openAIService,
			Kind:    domain.KindMalformedResponse,
			Message: fmt.Sprintf("first choice has no content (finish reason = %s)", resp.Choices[0].FinishReason),
		}
	}

	return summary, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &domain.CallError{
			Service:    openAIService,
			Kind:       domain.KindForStatus(apiErr.StatusCode),
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &domain.CallError{
			Service: openAIService,
			Kind:    domain.KindMalformedResponse,
			Err:     err,
		}
	}

	return &domain.CallError{
		Service: openAIService,
		Kind:    domain.KindNetwork,
		Err:     err,
	}
}
