package summarizer

const (
	SystemPrompt = "You're a helpful assistant that summarizes news articles or web page content."
	UserPrefix   = "Summarize the main points of the following content:\n\n"

	DefaultModel             = "gpt-4o"
	DefaultTemperature       = 0.4
	DefaultMaxTokens   int64 = 800
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type Message struct {
	Role    Role
	Content string
}

// BuildMessages returns the fixed two-turn conversation sent for every summary.
// The text is embedded verbatim after UserPrefix.
func BuildMessages(text string) []Message {
	return []Message{
		{Role: RoleSystem, Content: SystemPrompt},
		{Role: RoleUser, Content: UserPrefix + text},
	}
}

// Params holds the generation settings shared by all providers.
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int64
}

func (p Params) withDefaults() Params {
	if p.Model == "" {
		p.Model = DefaultModel
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = DefaultMaxTokens
	}

	return p
}
