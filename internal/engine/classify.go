package engine

import (
	"regexp"

	"sunquote/internal"
)

var (
	headerPattern = regexp.MustCompile(`(?i)^\s*(proposal for|prepared by|prepared for|quote\s*#|quotation\s*#|valid until)`)

	footerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bpage\s+\d+\s*(of|/)\s*\d+\b`),
		regexp.MustCompile(`(?i)(©|\(c\)\s*\d{4}|copyright\b)`),
		regexp.MustCompile(`(?i)\b(www\.)?[a-z0-9][a-z0-9-]*\.(com|com\.au|net\.au|net|org|io)\b`),
		regexp.MustCompile(`(?i)\b(phone|tel|mob|email|abn|acn)\s*:`),
	}

	notePattern  = regexp.MustCompile(`(?i)^\s*(note[s]?\s*:|\*|terms\b)`)
	tablePattern = regexp.MustCompile("\t|\\||   ")
)

// Classify labels one line of OCR text by its structural role. Table rows
// carry the strongest evidence during scoring; header and footer text is
// marketing boilerplate and is penalized.
func Classify(line string) internal.Context {
	if headerPattern.MatchString(line) {
		return internal.ContextHeader
	}
	for _, re := range footerPatterns {
		if re.MatchString(line) {
			return internal.ContextFooter
		}
	}
	if notePattern.MatchString(line) {
		return internal.ContextNote
	}
	if tablePattern.MatchString(line) {
		return internal.ContextTable
	}
	return internal.ContextLine
}

// contextWeight maps a structural context to an evidence trust weight in [1,5].
func contextWeight(ctx internal.Context) int {
	switch ctx {
	case internal.ContextTable:
		return 5
	case internal.ContextLine:
		return 4
	case internal.ContextNote, internal.ContextHeader:
		return 2
	default:
		return 1
	}
}

func isNoiseContext(ctx internal.Context) bool {
	return ctx == internal.ContextHeader || ctx == internal.ContextFooter
}
