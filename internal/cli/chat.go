package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hirex-ai/hirex/backend/internal/app"
	"github.com/hirex-ai/hirex/backend/internal/service/assistant"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Start an interactive chat window.

Commands:
  /clear    clear the chat window
  /history  show the conversation so far
  /quit     leave the chat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, log, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		out := cmd.OutOrStdout()
		return runChat(cmd.Context(), cmd.InOrStdin(), out, a, pickRenderer(out, plain))
	},
}

// runChat reads one question per line until EOF or /quit. Model failures are
// printed and the loop continues.
func runChat(ctx context.Context, in io.Reader, out io.Writer, a *app.App, r renderer) error {
	session, err := a.Chat.CreateSession(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, strings.TrimSpace(a.Profile.Heading))
	fmt.Fprintf(out, "(%s, /clear, /history, /quit)\n", a.Profile.InputPlaceholder)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			if err := a.Chat.Clear(ctx, session.ID); err != nil {
				return err
			}
			fmt.Fprintln(out, "Chat window cleared.")
			continue
		case "/history":
			turns, err := a.Chat.Transcript(ctx, session.ID)
			if err != nil {
				return err
			}
			for _, turn := range turns {
				fmt.Fprint(out, r.Render(turn))
			}
			continue
		}

		exchange, err := a.Dispatcher.Respond(ctx, session.ID, line)
		if err != nil {
			if errors.Is(err, assistant.ErrEmptyMessage) {
				continue
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprint(out, r.Render(exchange.Assistant))
	}
}
