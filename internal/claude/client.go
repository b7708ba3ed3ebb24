// Package claude sends one-shot completion requests to the claude.gg messages endpoint.
package claude

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed response_schema.json
var responseSchemaJSON string

var responseSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchemaJSON))
})

// Config wires a Client to its host.
type Config struct {
	Settings    SettingsProvider
	HostVersion string
	HTTPClient  Doer
	// Logger receives failure diagnostics. The global zerolog logger is used when nil.
	Logger *zerolog.Logger
}

// Client is a stateless completion request adapter.
type Client struct {
	settings    SettingsProvider
	hostVersion string
	httpClient  Doer
	logger      *zerolog.Logger
	endpoint    string
}

var _ Sender = (*Client)(nil)

// NewClient constructs a Client. A nil HTTPClient falls back to http.DefaultClient.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	settings := cfg.Settings
	if settings == nil {
		settings = SettingsFunc(func(string) string { return "" })
	}
	return &Client{
		settings:    settings,
		hostVersion: cfg.HostVersion,
		httpClient:  httpClient,
		logger:      cfg.Logger,
		endpoint:    Endpoint,
	}
}

// SendMessage sends message as a single user turn and returns the first content text verbatim.
func (c *Client) SendMessage(ctx context.Context, message string) (string, error) {
	text, err := c.sendMessage(ctx, message)
	if err != nil {
		c.log().Error().Err(err).Msg("Error calling Claude API")
		return "", err
	}
	return text, nil
}

func (c *Client) sendMessage(ctx context.Context, message string) (string, error) {
	apiKey := c.settings.GetString(APIKeySetting)
	if apiKey == "" {
		return "", ErrAPIKeyMissing
	}

	body, err := encodeRequest(message)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(req, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return decodeResponse(respBody)
}

func (c *Client) setHeaders(req *http.Request, apiKey string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("HTTP-Referer", clientReferer)
	req.Header.Set("X-Title", clientTitle)
	req.Header.Set("User-Agent", fmt.Sprintf("VSCode/%s (%s)", c.hostVersion, clientIdentity))
}

func (c *Client) log() *zerolog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return &log.Logger
}

func encodeRequest(msg string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(messagesRequest{
		Model:       model,
		Messages:    []message{{Role: "user", Content: msg}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators writes U+2028 and U+2029 raw, as a JavaScript
// JSON.stringify would. encoding/json always escapes them.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if rest := b[i:]; bytes.HasPrefix(rest, []byte(`\u2028`)) || bytes.HasPrefix(rest, []byte(`\u2029`)) {
			if rest[5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		// Keep any other escape pair intact so an escaped backslash is never reread.
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

func decodeResponse(body []byte) (string, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", err
	}

	schema, err := responseSchema()
	if err != nil {
		return "", fmt.Errorf("load response schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !result.Valid() {
		errs := make([]string, 0, len(result.Errors()))
		for _, schemaErr := range result.Errors() {
			errs = append(errs, schemaErr.String())
		}
		sort.Strings(errs)
		return "", fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(errs, "; "))
	}

	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	return parsed.Content[0].Text, nil
}
