package util

import (
	"regexp"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

func CollapseSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// ProductKey builds the catalog lookup key for a canonical brand+model pair.
func ProductKey(brand, model string) string {
	return strings.ToLower(CollapseSpaces(brand)) + "|" + strings.ToUpper(CollapseSpaces(model))
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }

func IntPtr(v int) *int { return &v }
