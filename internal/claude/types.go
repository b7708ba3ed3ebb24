package claude

import (
	"context"
	"net/http"
)

const (
	// Endpoint is the completion endpoint every request is sent to.
	Endpoint = "https://app.claude.gg/v1/messages"
	// APIKeySetting is the host setting holding the secret key.
	APIKeySetting = "rooCode.claudeApiKey"

	model            = "claude-3-opus-20240229"
	maxTokens        = 4096
	temperature      = 0.7
	anthropicVersion = "2023-06-01"
	clientIdentity   = "Cline/1.4.0"
	clientReferer    = "https://cline.bot"
	clientTitle      = "Cline"
)

// SettingsProvider reads a named string setting from the host.
// Absent and empty values are treated the same.
type SettingsProvider interface {
	GetString(key string) string
}

// SettingsFunc adapts a plain function to SettingsProvider.
type SettingsFunc func(key string) string

// GetString implements SettingsProvider.
func (f SettingsFunc) GetString(key string) string {
	return f(key)
}

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Sender is the contract host code depends on.
type Sender interface {
	SendMessage(ctx context.Context, message string) (string, error)
}

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}
