package engine

import (
	"strings"

	"sunquote/internal"
)

// evidence builds one Evidence entry for a snippet observed on a page.
func evidence(page int, snippet string, ctx internal.Context) internal.Evidence {
	return internal.Evidence{
		Page:    page,
		Text:    strings.TrimSpace(snippet),
		Context: ctx,
		Weight:  contextWeight(ctx),
	}
}

// appendUniqueFold appends value unless an equal entry (case-insensitive)
// is already accumulated.
func appendUniqueFold(list []string, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return list
	}
	for _, existing := range list {
		if strings.EqualFold(existing, value) {
			return list
		}
	}
	return append(list, value)
}

func appendUniqueFloat(list []float64, value float64) []float64 {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func appendUniqueInt(list []int, value int) []int {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
