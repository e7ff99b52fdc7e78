package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
	"unicode/utf8"
)

// Format is how the source content was decoded.
type Format string

const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

// Metadata describes where ingested text came from
type Metadata struct {
	Source     string    `json:"source"` // File path or URL
	Format     Format    `json:"format"`
	Platform   string    `json:"platform,omitempty"` // Job board platform for URLs
	Rendered   bool      `json:"rendered,omitempty"` // Headless browser was used
	Characters int       `json:"characters"`
	Hash       string    `json:"hash"` // SHA256 of the cleaned text
	Timestamp  time.Time `json:"timestamp"`
}

func newMetadata(source string, format Format, text string) *Metadata {
	sum := sha256.Sum256([]byte(text))
	return &Metadata{
		Source:     source,
		Format:     format,
		Characters: utf8.RuneCountInString(text),
		Hash:       hex.EncodeToString(sum[:]),
		Timestamp:  time.Now().UTC(),
	}
}
