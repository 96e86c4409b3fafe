package render

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	BannerMessage   = "Linux assistant started. Type 'exit' to quit."
	FarewellMessage = "Shutting down assistant..."
	ThinkingMessage = "Thinking..."
)

// Renderer writes everything the REPL shows the user.
type Renderer struct {
	writer      io.Writer
	styles      Styles
	interactive bool
}

// New creates a Renderer for writer. Colors and the spinner are only used
// when interactive is true and the environment does not ask for NO_COLOR.
func New(writer io.Writer, interactive bool) *Renderer {
	lr := lipgloss.NewRenderer(writer)
	if !interactive || termenv.EnvNoColor() {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		writer:      writer,
		styles:      NewStyles(lr),
		interactive: interactive,
	}
}

func (r *Renderer) Banner(version string) {
	fmt.Fprintln(r.writer, r.styles.Header.Render(BannerMessage))
	if version != "" {
		fmt.Fprintln(r.writer, r.styles.Dim.Render("tars "+version))
	}
}

func (r *Renderer) Prompt(prompt string) {
	fmt.Fprint(r.writer, prompt)
}

// Output prints a turn's result as-is.
func (r *Renderer) Output(text string) {
	fmt.Fprintln(r.writer, text)
}

func (r *Renderer) Success(text string) {
	fmt.Fprintf(r.writer, "%s %s\n", r.styles.StyledSymbol(SymbolSuccess), text)
}

func (r *Renderer) Error(text string) {
	fmt.Fprintf(r.writer, "%s %s\n", r.styles.StyledSymbol(SymbolError), r.styles.Error.Render(text))
}

func (r *Renderer) Farewell() {
	fmt.Fprintf(r.writer, "%s %s\n", r.styles.StyledSymbol(SymbolSystemMessage), FarewellMessage)
}

// StartThinkingSpinner shows a spinner until the returned function is called.
// It does nothing on non-interactive output.
func (r *Renderer) StartThinkingSpinner(ctx context.Context) func() {
	if !r.interactive {
		return func() {}
	}
	spinner := NewSpinner(r.writer, r.styles.Pending)
	spinner.SetMessage(r.styles.Dim.Render(ThinkingMessage))
	return spinner.Start(ctx)
}
