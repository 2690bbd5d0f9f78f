package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Long: `Ask a single question and print the reply.
If no question is given as arguments it is read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var question string
		if len(args) > 0 {
			question = strings.Join(args, " ")
		} else {
			input, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
			question = string(input)
		}

		a, log, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		session, err := a.Chat.CreateSession(cmd.Context())
		if err != nil {
			return err
		}

		exchange, err := a.Dispatcher.Respond(cmd.Context(), session.ID, question)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		r := pickRenderer(out, plain)
		fmt.Fprint(out, r.Render(exchange.Assistant))
		return nil
	},
}
