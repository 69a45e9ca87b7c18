// Package pdfprocessor extracts plain text from uploaded PDF reports.
// Extraction never fails loudly: problems are reported in the result so the
// UI can show them as notices.
package pdfprocessor

import "unicode/utf8"

// LowTextThreshold is the character count below which extracted text is
// likely the product of a scanned (image-only) PDF.
const LowTextThreshold = 50

// Preview length bounds, in characters.
const (
	MinPreviewChars     = 200
	MaxPreviewChars     = 2000
	DefaultPreviewChars = 600
)

// IsLowText reports whether text is too short to be a real text layer.
func IsLowText(text string) bool {
	return utf8.RuneCountInString(text) < LowTextThreshold
}

// Preview returns the first n characters of text.
func Preview(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}

// ClampPreviewChars bounds a requested preview length. Zero selects the
// default.
func ClampPreviewChars(n int) int {
	switch {
	case n == 0:
		return DefaultPreviewChars
	case n < MinPreviewChars:
		return MinPreviewChars
	case n > MaxPreviewChars:
		return MaxPreviewChars
	}
	return n
}

// normalizeMaxPages maps a page cap to its effective value: 0 means every page.
func normalizeMaxPages(maxPages, total int) int {
	if maxPages <= 0 || maxPages > total {
		return total
	}
	return maxPages
}
