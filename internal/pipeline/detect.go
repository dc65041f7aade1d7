package pipeline

import (
	"regexp"
	"strings"
)

type DetectResult struct {
	IsQuote bool
	Score   float64
	Reason  string
}

var detectKeywords = []string{"solar", "quote", "proposal", "panel", "inverter", "battery", "rebate", "stc"}

var reKwToken = regexp.MustCompile(`(?i)\b\d{1,3}(?:[.,]\d{1,3})?\s*kwh?\b`)

// DetectSolarQuote scores how quote-like an email looks before the
// expensive extraction runs. Marketing newsletters from installers share
// the vocabulary, so keywords alone never clear the threshold; system
// sizes or an attached document have to back them up.
func DetectSolarQuote(subject, text, html string, attachmentNames []string, threshold float64) DetectResult {
	subject = strings.ToLower(subject)
	text = strings.ToLower(text)
	html = strings.ToLower(html)

	score := 0.0
	for _, kw := range detectKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(text, kw) || strings.Contains(html, kw) {
			score += 0.1
		}
	}

	kwHits := len(reKwToken.FindAllString(text, -1))
	if kwHits >= 2 {
		score += 0.4
	} else if kwHits == 1 {
		score += 0.2
	}

	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".pdf") || strings.HasSuffix(ln, ".txt") || strings.HasSuffix(ln, ".html") {
			score += 0.25
			break
		}
	}

	if strings.Contains(html, "<table") {
		score += 0.25
	}
	if score > 1 {
		score = 1
	}

	isQuote := score >= threshold
	reason := "rules_negative"
	if isQuote {
		reason = "rules_positive"
	}

	return DetectResult{IsQuote: isQuote, Score: score, Reason: reason}
}
