// Package observability renders analysis output for the terminal.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-match/internal/ingestion"
	"github.com/jonathan/resume-match/internal/presentation"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// barWidth is the number of cells in the score bar
	barWidth = 20
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Long lines wrap.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		for _, wrapped := range wrap(line, inner) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(wrapped, inner))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSource outputs where an input came from.
func (p *Printer) PrintSource(label string, meta *ingestion.Metadata) {
	if meta == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:     %s\n", meta.Source))
	sb.WriteString(fmt.Sprintf("Format:     %s\n", meta.Format))
	if meta.Platform != "" {
		sb.WriteString(fmt.Sprintf("Platform:   %s\n", meta.Platform))
	}
	if meta.Rendered {
		sb.WriteString("Rendered:   headless browser\n")
	}
	sb.WriteString(fmt.Sprintf("Characters: %d", meta.Characters))

	p.printBox(strings.ToUpper(label), sb.String())
}

// PrintView outputs the result of a finished submission, or its error message.
func (p *Printer) PrintView(v presentation.View) {
	if v.ShowError {
		p.printBox("ANALYSIS FAILED", v.ErrorMessage)
		return
	}
	if !v.ShowResult || v.Gauge == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:    %s %v/100 (%s)\n", scoreBar(v.Gauge.Score), v.Gauge.Score, v.Gauge.Tier))
	sb.WriteString("\n")
	sb.WriteString(v.Summary)
	p.printBox("MATCH SCORE", sb.String())

	p.printList("STRENGTHS", v.Strengths)
	p.printList("MISSING SKILLS", v.MissingSkills)

	if len(v.Recommendations) == 0 {
		return
	}
	sb.Reset()
	for i, rec := range v.Recommendations {
		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, rec.Category, rec.Suggestion))
		if rec.Example != "" {
			sb.WriteString(fmt.Sprintf("   e.g. %s\n", rec.Example))
		}
		if i < len(v.Recommendations)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

func (p *Printer) printList(title string, items []string) {
	if len(items) == 0 {
		p.printBox(title, "(none)")
		return
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	p.printBox(title, strings.Join(lines, "\n"))
}

// scoreBar draws the score as a bar of barWidth cells
func scoreBar(score float64) string {
	filled := int(score/100*barWidth + 0.5)
	filled = max(0, min(barWidth, filled))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}

// pad right-pads s with spaces to width characters
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// wrap breaks line at spaces so no piece exceeds width characters.
// Continuation lines keep the original indentation unless it would take half
// the width or more. Words longer than the remaining width are split.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
	if len(indent) >= width/2 {
		indent = ""
	}
	var out []string
	current := ""
	for _, word := range strings.Fields(line) {
		for utf8.RuneCountInString(word) > width-len(indent) {
			if current != "" {
				out = append(out, current)
				current = ""
			}
			r := []rune(word)
			out = append(out, indent+string(r[:width-len(indent)]))
			word = string(r[width-len(indent):])
		}
		switch {
		case current == "":
			current = indent + word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width:
			current += " " + word
		default:
			out = append(out, current)
			current = indent + word
		}
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}
