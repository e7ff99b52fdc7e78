package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/jonathan/resume-match/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the page cannot be fetched
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when the page cannot be parsed
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// render is swapped in tests so they do not need Chrome
var render = fetch.Render

// FromURL fetches a job posting and extracts its text with platform-specific
// selectors. When useBrowser is set and the page yields fewer than
// fetch.MinContentLength characters, it is re-rendered in headless Chrome;
// if that fails the HTTP text is kept.
func FromURL(ctx context.Context, urlStr string, useBrowser, verbose bool) (string, *Metadata, error) {
	platform := fetch.DetectPlatform(urlStr)
	if verbose {
		log.Printf("[VERBOSE] URL: %s", urlStr)
		log.Printf("[VERBOSE] Detected platform: %s", platform)
	}

	result, err := fetch.URL(ctx, urlStr, nil)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	if verbose {
		log.Printf("[VERBOSE] Fetched HTML: %d bytes", len(result.HTML))
	}

	text, err := fetch.ExtractJobText(result.HTML, platform)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	if verbose {
		log.Printf("[VERBOSE] Extracted text: %d chars", utf8.RuneCountInString(text))
	}

	rendered := false
	if useBrowser && fetch.ShouldUseBrowser(text) {
		if verbose {
			log.Printf("[VERBOSE] Content too short (%d chars < %d), falling back to browser rendering...",
				utf8.RuneCountInString(text), fetch.MinContentLength)
		}
		if browserText, ok := renderText(ctx, urlStr, platform, verbose); ok {
			text = browserText
			rendered = true
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", nil, fmt.Errorf("%s: %w", urlStr, ErrNoText)
	}

	metadata := newMetadata(urlStr, FormatHTML, cleaned)
	metadata.Platform = string(platform)
	metadata.Rendered = rendered
	return cleaned, metadata, nil
}

// renderText renders urlStr in a browser and extracts its text.
// ok is false when rendering or extraction fails.
func renderText(ctx context.Context, urlStr string, platform fetch.Platform, verbose bool) (string, bool) {
	html, err := render(ctx, urlStr, fetch.DefaultRenderTimeout, verbose)
	if err != nil {
		if verbose {
			log.Printf("[VERBOSE] Browser rendering failed: %v, using HTTP content", err)
		}
		return "", false
	}

	text, err := fetch.ExtractJobText(html, platform)
	if err != nil {
		if verbose {
			log.Printf("[VERBOSE] Browser content extraction failed: %v", err)
		}
		return "", false
	}
	if verbose {
		log.Printf("[VERBOSE] Browser extracted text: %d chars", utf8.RuneCountInString(text))
	}
	return text, true
}
