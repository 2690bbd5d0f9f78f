package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/hirex-ai/hirex/backend/internal/model/chat"
)

// renderer formats turns for the terminal.
type renderer interface {
	Render(turn chat.Turn) string
}

type plainRenderer struct{}

func (plainRenderer) Render(turn chat.Turn) string {
	return fmt.Sprintf("%s> %s\n", turn.Speaker, strings.TrimSpace(turn.Text))
}

// markdownRenderer renders turn text as markdown, falling back to plain text
// when glamour fails.
type markdownRenderer struct {
	term *glamour.TermRenderer
}

func newMarkdownRenderer(width int) (*markdownRenderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &markdownRenderer{term: r}, nil
}

func (m *markdownRenderer) Render(turn chat.Turn) string {
	rendered, err := m.term.Render(turn.Text)
	if err != nil {
		return plainRenderer{}.Render(turn)
	}
	return fmt.Sprintf("%s>\n%s", turn.Speaker, rendered)
}

// pickRenderer uses markdown only when writing to a terminal.
func pickRenderer(out io.Writer, forcePlain bool) renderer {
	if forcePlain {
		return plainRenderer{}
	}

	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return plainRenderer{}
	}

	width := 80
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 20 {
		width = w - 4
	}

	r, err := newMarkdownRenderer(width)
	if err != nil {
		return plainRenderer{}
	}
	return r
}
