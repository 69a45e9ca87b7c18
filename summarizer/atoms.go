package summarizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SentenceEndings are the markers a trimmed summary may end on.
var SentenceEndings = []string{"다.", ".", "!", "?", "요.", "임.", "습니다.", "했다."}

// minBoundaryChars is the floor for how far into the budget a sentence
// boundary must lie before TrimToChars prefers it over a raw cut.
const minBoundaryChars = 10

// CountChars returns the number of Unicode code points in s. All character
// budgets in this package are measured this way.
func CountChars(s string) int {
	return utf8.RuneCountInString(s)
}

// TrimToChars shortens text to at most limit characters. Text already
// within the limit is only trimmed of surrounding whitespace. Longer text is
// cut at limit and then, if a sentence ending lies at least
// max(10, 40% of limit) characters in, cut back to the rightmost such ending.
func TrimToChars(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if CountChars(text) <= limit {
		return strings.TrimSpace(text)
	}

	cut := strings.TrimRightFunc(string([]rune(text)[:limit]), unicode.IsSpace)

	end := -1
	for _, marker := range SentenceEndings {
		if idx := strings.LastIndex(cut, marker); idx >= 0 && idx+len(marker) > end {
			end = idx + len(marker)
		}
	}

	threshold := max(minBoundaryChars, limit*4/10)
	if end >= 0 && CountChars(cut[:end]) >= threshold {
		return strings.TrimSpace(cut[:end])
	}
	return strings.TrimSpace(cut)
}

// Truncate returns the first n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if CountChars(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
