package util

import (
	"strconv"
	"strings"
)

// ParseDecimal reads a numeric token from quote text. Installers write
// decimals with either separator ("13.200kW", "6,6kW"), so a comma is
// treated as a decimal point, never as a thousands separator.
func ParseDecimal(token string) (float64, bool) {
	compact := strings.ReplaceAll(strings.TrimSpace(token), "\u00a0", " ")
	compact = strings.ReplaceAll(compact, " ", "")
	if strings.Contains(compact, ",") && !strings.Contains(compact, ".") {
		compact = strings.ReplaceAll(compact, ",", ".")
	}
	parsed, err := strconv.ParseFloat(compact, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

func ParseCount(token string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
