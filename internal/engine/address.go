package engine

import (
	"regexp"
	"strings"
	"time"

	"sunquote/internal"
	"sunquote/internal/util"
)

var (
	reStreetAddress = regexp.MustCompile(`(?i)\b(\d+[a-z]?(?:[-/]\d+[a-z]?)?\s+(?:[a-z']+\s+){1,3}(?:st|street|rd|road|ave|avenue|dr|drive|ct|court|cres|crescent|pde|parade|way|blvd|boulevard|hwy|highway|cl|close|tce|terrace|esp|esplanade))\b`)
	reStatePostcode = regexp.MustCompile(`(?i)\b(nsw|vic|qld|wa|sa|tas|nt|act)\b[,.\s]*(\d{4})\b`)
	reInstallDate   = regexp.MustCompile(`(?i)\binstall(?:ation)?\s+date\s*:?\s*(\d{4}-\d{2}-\d{2}|\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`)
)

// STC zone buckets by state, used by the downstream rebate calculation as
// a starting hint before the exact postcode lookup.
var stateZoneHints = map[string]string{
	"qld": "zone2", "nt": "zone2",
	"nsw": "zone3", "act": "zone3", "wa": "zone3", "sa": "zone3",
	"vic": "zone4", "tas": "zone4",
}

// ExtractPolicyInput opportunistically pulls the install address, postcode,
// zone hint and install date from a chunk. Returns nil when nothing matched.
func ExtractPolicyInput(text string) *internal.PolicyCalcInput {
	out := internal.PolicyCalcInput{}
	found := false

	if m := reStreetAddress.FindStringSubmatch(text); m != nil {
		out.Address = util.StringPtr(util.CollapseSpaces(m[1]))
		found = true
	}
	if m := reStatePostcode.FindStringSubmatch(text); m != nil {
		out.Postcode = util.StringPtr(m[2])
		if zone, ok := stateZoneHints[strings.ToLower(m[1])]; ok {
			out.ZoneHint = util.StringPtr(zone)
		}
		found = true
	}
	if m := reInstallDate.FindStringSubmatch(text); m != nil {
		if iso := toISODate(m[1]); iso != "" {
			out.InstallDateISO = util.StringPtr(iso)
			found = true
		}
	}

	if !found {
		return nil
	}
	return &out
}

func toISODate(raw string) string {
	raw = strings.TrimSpace(raw)
	if _, err := time.Parse("2006-01-02", raw); err == nil {
		return raw
	}
	normalized := strings.NewReplacer(".", "/", "-", "/").Replace(raw)
	for _, layout := range []string{"2/1/2006", "02/01/2006", "2/1/06"} {
		if parsed, err := time.Parse(layout, normalized); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return ""
}
