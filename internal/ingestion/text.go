// Package ingestion turns resume files and job posting URLs into clean text.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoText is returned when a source yields no readable text
var ErrNoText = errors.New("no text extracted")

var (
	innerSpace  = regexp.MustCompile(`\s+`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
	bulletMarks = []string{"- ", "* ", "• ", "· "}
)

// CleanText normalizes line endings and whitespace while keeping headings,
// bullets and paragraph breaks. At most one blank line separates paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ToValidUTF8(content, "")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine collapses inner whitespace and keeps bullet indentation
func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "#") {
		return innerSpace.ReplaceAllString(trimmed, " ")
	}

	body := innerSpace.ReplaceAllString(trimmed, " ")
	if isBulletLine(trimmed) {
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		return strings.Repeat(" ", indent) + body
	}
	return body
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	for _, mark := range bulletMarks {
		if strings.HasPrefix(line, mark) {
			return true
		}
	}
	return false
}

// FromFile reads a resume or job description from disk. PDF and DOCX files
// are decoded by extension; anything else is read as plain text.
func FromFile(ctx context.Context, path string) (string, *Metadata, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	format := FormatText
	raw := string(data)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		format = FormatPDF
		if raw, err = extractPDF(data); err != nil {
			return "", nil, fmt.Errorf("failed to read PDF %s: %w", path, err)
		}
	case ".docx":
		format = FormatDOCX
		if raw, err = extractDOCX(data); err != nil {
			return "", nil, fmt.Errorf("failed to read DOCX %s: %w", path, err)
		}
	}

	text := CleanText(raw)
	if text == "" {
		return "", nil, fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return text, newMetadata(path, format, text), nil
}
