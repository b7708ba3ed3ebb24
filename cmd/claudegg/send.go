package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/metalagman/claudegg/internal/claude"
	"github.com/metalagman/claudegg/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func sendCmd() *cobra.Command {
	var render bool
	cmd := &cobra.Command{
		Use:          "send [message...]",
		Short:        "Send a message and print the reply",
		Long:         "Send a message as a single user turn and print the reply. Without arguments the message is read from stdin.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSettings()
			if err != nil {
				return err
			}
			host, err := store.Host()
			if err != nil {
				return err
			}
			msg, err := readMessage(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if host.HTTP.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, host.HTTP.Timeout)
				defer cancel()
			}

			client := claude.NewClient(claude.Config{
				Settings:    store,
				HostVersion: version,
				HTTPClient:  httpClient,
			})
			log.Debug().Int("message_len", len(msg)).Msg("sending message")
			reply, err := client.SendMessage(ctx, msg)
			if err != nil {
				if errors.Is(err, claude.ErrAPIKeyMissing) {
					return fmt.Errorf("%w (run `claudegg config set %s <key>` or set %s_ROOCODE_CLAUDEAPIKEY)",
						err, config.APIKey, config.EnvPrefix)
				}
				return err
			}

			if render || host.Output.Render {
				reply, err = renderMarkdown(reply)
				if err != nil {
					return err
				}
			}
			return writeReply(cmd.OutOrStdout(), reply)
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "render the reply as terminal markdown")
	return cmd
}

func readMessage(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read message from stdin: %w", err)
	}
	msg := strings.TrimRight(string(data), "\r\n")
	if strings.TrimSpace(msg) == "" {
		return "", fmt.Errorf("message is required")
	}
	return msg, nil
}

func renderMarkdown(text string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := renderer.Render(text)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func writeReply(w io.Writer, reply string) error {
	if !strings.HasSuffix(reply, "\n") {
		reply += "\n"
	}
	_, err := io.WriteString(w, reply)
	return err
}
