// Package ui provides terminal output helpers for the reportai CLI.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// UI writes human output to out and progress to errOut. In JSON mode only
// JSON documents reach out.
type UI struct {
	out      io.Writer
	errOut   io.Writer
	noColor  bool
	jsonMode bool
}

// New creates a UI.
func New(out, errOut io.Writer, jsonMode, noColor bool) *UI {
	if noColor {
		color.NoColor = true
	}
	return &UI{out: out, errOut: errOut, noColor: noColor, jsonMode: jsonMode}
}

// JSONMode reports whether output is machine-readable.
func (ui *UI) JSONMode() bool {
	return ui.jsonMode
}

func (ui *UI) line(c color.Attribute, prefix, format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	msg := fmt.Sprintf("%s %s\n", prefix, fmt.Sprintf(format, args...))
	if ui.noColor {
		fmt.Fprint(ui.out, msg)
		return
	}
	color.New(c).Fprint(ui.out, msg)
}

// Success prints a success message.
func (ui *UI) Success(format string, args ...interface{}) {
	ui.line(color.FgGreen, "✓", format, args...)
}

// Warning prints a warning message.
func (ui *UI) Warning(format string, args ...interface{}) {
	ui.line(color.FgYellow, "⚠", format, args...)
}

// Info prints an informational message.
func (ui *UI) Info(format string, args ...interface{}) {
	ui.line(color.FgCyan, "ℹ", format, args...)
}

// Step prints a step message.
func (ui *UI) Step(format string, args ...interface{}) {
	ui.line(color.FgBlue, "→", format, args...)
}

// Error prints an error message to errOut, even in JSON mode.
func (ui *UI) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf("✗ %s\n", fmt.Sprintf(format, args...))
	if ui.noColor {
		fmt.Fprint(ui.errOut, msg)
		return
	}
	color.New(color.FgRed).Fprint(ui.errOut, msg)
}

// Heading prints a bold section title followed by body.
func (ui *UI) Heading(title, body string) {
	if ui.jsonMode {
		return
	}
	if ui.noColor {
		fmt.Fprintf(ui.out, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))
	} else {
		color.New(color.FgCyan, color.Bold).Fprintf(ui.out, "\n%s\n", title)
	}
	fmt.Fprintln(ui.out, strings.TrimSpace(body))
}

// JSON writes v as indented JSON.
func (ui *UI) JSON(v interface{}) error {
	enc := json.NewEncoder(ui.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table prints rows under headers with padded columns.
func (ui *UI) Table(headers []string, rows [][]string) {
	if ui.jsonMode || len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	format := func(cells []string) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	header := format(headers)
	if ui.noColor {
		fmt.Fprintln(ui.out, header)
	} else {
		color.New(color.FgCyan, color.Bold).Fprintln(ui.out, header)
	}
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	fmt.Fprintln(ui.out, strings.Join(sep, "  "))
	for _, row := range rows {
		fmt.Fprintln(ui.out, format(row))
	}
}

// YesNo renders a boolean as a colored yes or no.
func (ui *UI) YesNo(b bool) string {
	if b {
		return ui.colorize(color.FgGreen, "yes")
	}
	return ui.colorize(color.FgRed, "no")
}

func (ui *UI) colorize(c color.Attribute, s string) string {
	if ui.noColor {
		return s
	}
	return color.New(c).Sprint(s)
}

// Spinner shows indeterminate progress on errOut.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner. It is inert in JSON mode.
func (ui *UI) NewSpinner(message string) *Spinner {
	if ui.jsonMode {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(ui.errOut))
	s.Suffix = " " + message
	return &Spinner{s: s}
}

// Start starts the animation.
func (s *Spinner) Start() {
	if s.s != nil {
		s.s.Start()
	}
}

// Stop stops the animation and clears the line.
func (s *Spinner) Stop() {
	if s.s != nil {
		s.s.Stop()
	}
}

// ProgressBar shows determinate progress on errOut.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a progress bar. It is inert in JSON mode.
func (ui *UI) NewProgressBar(total int, description string) *ProgressBar {
	if ui.jsonMode {
		return &ProgressBar{}
	}
	errOut := ui.errOut
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(errOut),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(errOut, "\n")
		}),
	)
	return &ProgressBar{bar: bar}
}

// Add advances the bar by n.
func (p *ProgressBar) Add(n int) {
	if p.bar != nil {
		_ = p.bar.Add(n)
	}
}

// Finish completes the bar.
func (p *ProgressBar) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
