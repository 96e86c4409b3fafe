// Package render provides terminal output rendering for the REPL.
package render

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	ColorCyan   = lipgloss.Color("12") // Banner
	ColorYellow = lipgloss.Color("11") // Spinner
	ColorGreen  = lipgloss.Color("10") // Success indicator
	ColorRed    = lipgloss.Color("9")  // Error indicator
	ColorGray   = lipgloss.Color("8")  // Dim/secondary
)

const (
	SymbolSuccess       = "✓"
	SymbolError         = "✗"
	SymbolSystemMessage = "→"
)

// Styles holds the Lip Gloss styles bound to one output.
type Styles struct {
	Header  lipgloss.Style
	Pending lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
}

// NewStyles creates styles that render with r's color profile.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header:  r.NewStyle().Foreground(ColorCyan),
		Pending: r.NewStyle().Foreground(ColorYellow),
		Success: r.NewStyle().Foreground(ColorGreen),
		Error:   r.NewStyle().Foreground(ColorRed),
		Dim:     r.NewStyle().Foreground(ColorGray),
	}
}

// StyledSymbol returns a symbol with appropriate styling applied
func (s Styles) StyledSymbol(symbol string) string {
	switch symbol {
	case SymbolSuccess:
		return s.Success.Render(symbol)
	case SymbolError:
		return s.Error.Render(symbol)
	case SymbolSystemMessage:
		return s.Dim.Render(symbol)
	default:
		return symbol
	}
}
