package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Colors shared with the TUI so both surfaces read the same.
var (
	blue   = lipgloss.Color("#60a5fa")
	indigo = lipgloss.Color("#818cf8")
	green  = lipgloss.Color("#34d399")
	amber  = lipgloss.Color("#fbbf24")
	red    = lipgloss.Color("#ef4444")
	gray   = lipgloss.Color("#9ca3af")
	slate  = lipgloss.Color("#6b7280")
	teal   = lipgloss.Color("#2dd4bf")
)

// Styles wraps the lipgloss styles used for command output.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Link    lipgloss.Style
	Path    lipgloss.Style
}

// NewStyles returns the default output styles.
func NewStyles() *Styles {
	return &Styles{
		Header:  lipgloss.NewStyle().Foreground(indigo).Bold(true),
		Success: lipgloss.NewStyle().Foreground(green),
		Error:   lipgloss.NewStyle().Foreground(red).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(amber),
		Info:    lipgloss.NewStyle().Foreground(blue),
		Label:   lipgloss.NewStyle().Foreground(gray).Width(18),
		Muted:   lipgloss.NewStyle().Foreground(slate),
		Accent:  lipgloss.NewStyle().Foreground(blue).Bold(true),
		Link:    lipgloss.NewStyle().Foreground(blue).Underline(true),
		Path:    lipgloss.NewStyle().Foreground(teal),
	}
}

// Printer writes status lines. Errors go to Err, everything else to Out.
type Printer struct {
	Styles *Styles
	Out    io.Writer
	Err    io.Writer
}

// NewPrinter creates a Printer on stdout and stderr.
func NewPrinter() *Printer {
	return &Printer{Styles: NewStyles(), Out: os.Stdout, Err: os.Stderr}
}

func (p *Printer) PrintHeader(msg string) {
	fmt.Fprintln(p.Out, p.Styles.Header.Render(msg))
}

func (p *Printer) PrintSuccess(msg string) {
	fmt.Fprintf(p.Out, "%s %s\n", p.Styles.Success.Render("✔"), msg)
}

func (p *Printer) PrintError(msg string) {
	fmt.Fprintf(p.Err, "%s %s\n", p.Styles.Error.Render("✘"), msg)
}

func (p *Printer) PrintWarning(msg string) {
	fmt.Fprintf(p.Out, "%s %s\n", p.Styles.Warning.Render("⚠"), msg)
}

func (p *Printer) PrintInfo(msg string) {
	fmt.Fprintf(p.Out, "%s %s\n", p.Styles.Info.Render("ℹ"), msg)
}

// PrintListItem prints an aligned label and value.
func (p *Printer) PrintListItem(label, value string) {
	fmt.Fprintf(p.Out, "%s %s\n", p.Styles.Label.Render(label+":"), value)
}

func (p *Printer) FormatPath(path string) string {
	return p.Styles.Path.Render(path)
}

// FormatID formats a document key, run id or slug.
func (p *Printer) FormatID(id string) string {
	return p.Styles.Accent.Render(id)
}

// FormatCount renders n in the accent color, muted when zero.
func (p *Printer) FormatCount(n int) string {
	if n == 0 {
		return p.Styles.Muted.Render("0")
	}
	return p.Styles.Accent.Render(fmt.Sprint(n))
}
