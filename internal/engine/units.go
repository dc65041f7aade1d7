package engine

import (
	"regexp"

	"sunquote/internal"
)

var (
	batteryContextWords = regexp.MustCompile(`(?i)\b(battery|batteries|storage|usable|capacity)\b`)
	panelContextWords   = regexp.MustCompile(`(?i)\b(panel|panels|array|solar|module|modules)\b`)

	// kW\b does not match inside kWh: W and h are both word characters.
	bareKwToken   = regexp.MustCompile(`(?i)\b(\d{1,3}(?:[.,]\d{1,3})?)\s*kW\b`)
	panelKwhToken = regexp.MustCompile(`(?i)\b(\d{3,4})\s*kWh\b`)
)

// CorrectUnit rewrites ambiguous unit tokens before pattern extraction.
// Source documents routinely write battery capacity as "kW" and panel
// wattage as "kWh"; the rewrite uses the line's own keywords to decide,
// and leaves mixed panel+battery lines alone since either reading could
// be the right one there.
func CorrectUnit(text string, _ internal.Context) string {
	batteryish := batteryContextWords.MatchString(text)
	panelish := panelContextWords.MatchString(text)

	if batteryish && !panelish {
		text = bareKwToken.ReplaceAllString(text, "${1}kWh")
	}
	if panelish && !batteryish {
		text = panelKwhToken.ReplaceAllString(text, "${1}W")
	}
	return text
}
