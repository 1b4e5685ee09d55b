package summarizer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"pagebrief/internal/domain"
	"pagebrief/internal/summarizer"
	"strings"
	"sync"
	"testing"
)

type chatPayload struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature         float64 `json:"temperature"`
	MaxCompletionTokens int64   `json:"max_completion_tokens"`
	MaxTokens           int64   `json:"max_tokens"`
}

type openAIStub struct {
	mu       sync.Mutex
	payloads []chatPayload
	paths    []string
	auth     []string

	status int
	body   string
}

func (s *openAIStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload chatPayload
	_ = json.NewDecoder(r.Body).Decode(&payload)

	s.mu.Lock()
	s.payloads = append(s.payloads, payload)
	s.paths = append(s.paths, r.URL.Path)
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	_, _ = w.Write([]byte(s.body))
}

func (s *openAIStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.payloads)
}

func completionBody(content string) string {
	raw, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   "gpt-4o",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	})

	return string(raw)
}

func newOpenAISummarizer(t *testing.T, baseURL string) *summarizer.OpenAISummarizer {
	t.Helper()

	s, err := summarizer.NewOpenAISummarizer(summarizer.OpenAIOptions{
		APIKey:  "sk-test",
		BaseURL: baseURL + "/v1/",
		Params: summarizer.Params{
			Model:       "gpt-4o",
			Temperature: 0.4,
			MaxTokens:   800,
		},
	}, nil)
	if err != nil {
		t.Fatalf("create summarizer: %v", err)
	}

	return s
}

func TestOpenAISummarizerSendsTwoMessages(t *testing.T) {
	stub := &openAIStub{status: http.StatusOK, body: completionBody("  OK summary \n")}
	server := httptest.NewServer(stub)
	defer server.Close()

	text := "Hello\nWorld"

	summary, err := newOpenAISummarizer(t, server.URL).Summarize(context.Background(), summarizer.Input{
		Text:      text,
		SourceURL: "https://example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary != "OK summary" {
		t.Fatalf("unexpected summary: %q", summary)
	}

	if got := stub.callCount(); got != 1 {
		t.Fatalf("expected one request, got %d", got)
	}

	if stub.paths[0] != "/v1/chat/completions" {
		t.Fatalf("unexpected path: %q", stub.paths[0])
	}
	if stub.auth[0] != "Bearer sk-test" {
		t.Fatalf("unexpected authorization header: %q", stub.auth[0])
	}

	payload := stub.payloads[0]
	if payload.Model != "gpt-4o" {
		t.Fatalf("unexpected model: %q", payload.Model)
	}
	if payload.Temperature != 0.4 {
		t.Fatalf("unexpected temperature: %g", payload.Temperature)
	}
	if payload.MaxCompletionTokens != 800 || payload.MaxTokens != 0 {
		t.Fatalf("unexpected token limits: max_completion_tokens=%d max_tokens=%d",
			payload.MaxCompletionTokens, payload.MaxTokens)
	}

	if len(payload.Messages) != 2 {
		t.Fatalf("expected exactly two messages, got %d", len(payload.Messages))
	}

	system, user := payload.Messages[0], payload.Messages[1]
	if system.Role != "system" || system.Content != summarizer.SystemPrompt {
		t.Fatalf("unexpected system message: %+v", system)
	}
	if user.Role != "user" {
		t.Fatalf("unexpected user role: %q", user.Role)
	}

	wantUser := "Summarize the main points of the following content:\n\n" + text
	if user.Content != wantUser {
		t.Fatalf("unexpected user message: got %q want %q", user.Content, wantUser)
	}
}

func TestOpenAISummarizerLegacyMaxTokens(t *testing.T) {
	stub := &openAIStub{status: http.StatusOK, body: completionBody("OK summary")}
	server := httptest.NewServer(stub)
	defer server.Close()

	s, err := summarizer.NewOpenAISummarizer(summarizer.OpenAIOptions{
		APIKey:          "sk-test",
		BaseURL:         server.URL + "/v1/",
		Params:          summarizer.Params{MaxTokens: 800},
		LegacyMaxTokens: true,
	}, nil)
	if err != nil {
		t.Fatalf("create summarizer: %v", err)
	}

	if _, err = s.Summarize(context.Background(), summarizer.Input{Text: "text"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := stub.callCount(); got != 1 {
		t.Fatalf("expected one request, got %d", got)
	}

	payload := stub.payloads[0]
	if payload.MaxTokens != 800 || payload.MaxCompletionTokens != 0 {
		t.Fatalf("unexpected token limits: max_tokens=%d max_completion_tokens=%d",
			payload.MaxTokens, payload.MaxCompletionTokens)
	}
}

func TestOpenAISummarizerClassifiesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   domain.Kind
	}{
		{
			"Unauthorized",
			http.StatusUnauthorized,
			`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`,
			domain.KindAuth,
		},
		{
			"RateLimited",
			http.StatusTooManyRequests,
			`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`,
			domain.KindRateLimit,
		},
		{
			"ServerError",
			http.StatusInternalServerError,
			`{"error":{"message":"The server had an error","type":"server_error","code":null}}`,
			domain.KindUpstream,
		},
		{
			"NoChoices",
			http.StatusOK,
			`{"id":"chatcmpl-test","object":"chat.completion","created":0,"model":"gpt-4o","choices":[]}`,
			domain.KindMalformedResponse,
		},
		{
			"EmptyContent",
			http.StatusOK,
			completionBody("   "),
			domain.KindMalformedResponse,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stub := &openAIStub{status: test.status, body: test.body}
			server := httptest.NewServer(stub)
			defer server.Close()

			_, err := newOpenAISummarizer(t, server.URL).Summarize(context.Background(), summarizer.Input{
				Text: "some text",
			})
			if err == nil {
				t.Fatalf("expected error")
			}

			if got := domain.KindOf(err); got != test.want {
				t.Errorf("Expected %q kind, got %q (%v)", test.want, got, err)
			}

			if got := stub.callCount(); got != 1 {
				t.Errorf("Expected a single request without retries, got %d", got)
			}
		})
	}
}

func TestOpenAISummarizerNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	_, err := newOpenAISummarizer(t, baseURL).Summarize(context.Background(), summarizer.Input{Text: "text"})
	if !domain.IsKind(err, domain.KindNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestOpenAISummarizerRejectsEmptyInput(t *testing.T) {
	stub := &openAIStub{status: http.StatusOK, body: completionBody("unused")}
	server := httptest.NewServer(stub)
	defer server.Close()

	_, err := newOpenAISummarizer(t, server.URL).Summarize(context.Background(), summarizer.Input{Text: " \n\t "})
	if !domain.IsKind(err, domain.KindInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}

	if got := stub.callCount(); got != 0 {
		t.Fatalf("expected no request for empty input, got %d", got)
	}
}

func TestNewOpenAISummarizerRequiresKey(t *testing.T) {
	if _, err := summarizer.NewOpenAISummarizer(summarizer.OpenAIOptions{APIKey: "  "}, nil); err == nil {
		t.Fatalf("expected error for empty API key")
	}
}

func TestBuildMessages(t *testing.T) {
	messages := summarizer.BuildMessages("body")

	if len(messages) != 2 {
		t.Fatalf("expected two messages, got %d", len(messages))
	}

	if messages[0].Role != summarizer.RoleSystem || messages[1].Role != summarizer.RoleUser {
		t.Fatalf("unexpected roles: %q, %q", messages[0].Role, messages[1].Role)
	}

	if !strings.HasSuffix(messages[1].Content, "\n\nbody") {
		t.Fatalf("expected text after prefix, got %q", messages[1].Content)
	}
}
