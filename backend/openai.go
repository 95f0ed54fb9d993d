package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/i8n"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// OpenAIBackend is a local backend that asks an OpenAI chat model for
// each translation.
type OpenAIBackend struct {
	client         *openai.Client
	model          string
	temperature    float32
	sourceLanguage string
}

// OpenAIConfig holds configuration for the OpenAI backend.
type OpenAIConfig struct {
	APIKey         string  // OpenAI API key
	Model          string  // Model to use (default: "gpt-4o-mini")
	Temperature    float32 // Temperature for generation (default: 0.3)
	BaseURL        string  // Custom base URL (optional)
	SourceLanguage string  // Language of the sentences (default: "en")
}

// NewOpenAIBackend creates a new OpenAI backend.
func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	source := cfg.SourceLanguage
	if source == "" {
		source = "en"
	}

	return &OpenAIBackend{
		client:         openai.NewClientWithConfig(config),
		model:          model,
		temperature:    temperature,
		sourceLanguage: source,
	}
}

// Translate translates a single sentence using OpenAI.
func (b *OpenAIBackend) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	if req.Language == "" {
		return "", &i8n.BackendError{
			Op:      "translate",
			Message: "target language required by the OpenAI backend",
		}
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: b.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: b.buildUserMessage(req)},
		},
		Temperature: b.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", &i8n.BackendError{
			Op:        "translate",
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &i8n.BackendError{
			Op:        "translate",
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return parseResponse(resp.Choices[0].Message.Content)
}

func (b *OpenAIBackend) buildSystemPrompt(req TranslationRequest) string {
	target := LanguageName(req.Language)
	source := LanguageName(b.sourceLanguage)

	prompt := fmt.Sprintf(`# Role
You are an expert native translator of user interface strings from %s to %s.

# Task
Translate the sentence provided by the user into idiomatic %s.
- Keep placeholders (e.g., {name}, {count}, %%s) and HTML tags unchanged.
- Preserve leading and trailing whitespace.`, source, target, target)

	if req.Plural {
		prompt += "\n- Use the plural form."
	}
	if req.Tag != "" {
		prompt += fmt.Sprintf("\n\n# Context\nThe sentence is used in this context: %s. Choose the meaning that fits it.", req.Tag)
	}
	if req.UserType != "" {
		prompt += fmt.Sprintf("\n\n# Audience\nThe reader is a %s. Use the terminology this audience expects.", req.UserType)
	}

	prompt += `

# Format
Return a valid JSON object with a single key "translation" holding the translated string.
Example: { "translation": "translated sentence" }`

	return prompt
}

func (b *OpenAIBackend) buildUserMessage(req TranslationRequest) string {
	data, _ := json.Marshal(map[string]string{"sentence": req.Sentence})
	return string(data)
}

func parseResponse(content string) (string, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		if s, ok := obj["translation"].(string); ok {
			return s, nil
		}
		// Some models answer with a different key
		if len(obj) == 1 {
			for _, v := range obj {
				if s, ok := v.(string); ok {
					return s, nil
				}
			}
		}
	}

	return "", &i8n.BackendError{
		Op:        "translate",
		Message:   "invalid response format from OpenAI",
		Retryable: false,
	}
}

// LanguageName returns the English display name of a BCP 47 tag,
// or the tag itself when it cannot be parsed.
func LanguageName(tag string) string {
	t, err := language.Parse(strings.ReplaceAll(tag, "_", "-"))
	if err != nil {
		return tag
	}
	if name := display.English.Tags().Name(t); name != "" {
		return name
	}
	return tag
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIBackend implements Backend
var _ Backend = (*OpenAIBackend)(nil)
