package engine

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"sunquote/internal"
	"sunquote/internal/util"
)

var panelSectionWords = regexp.MustCompile(`(?i)\b(solar power system|solar system|solar array|pv system|solar power)\b`)

// Brand dictionary for the secondary sweep, longest alternatives first so
// "jinko solar" is not consumed as a bare "jinko". Includes common OCR
// misreads ("jink0", "l0ngi").
var panelBrandWords = regexp.MustCompile(`(?i)\b(jinko solar|jink0|jinko|trina solar|trina|l0ngi|longi solar|longi|canadian solar|ja solar|sunpower|risen|seraphim|hyundai|aiko|tindo|winaico|phono solar|q cells|q-cells|qcells|rec)\b`)

// Model prefixes that identify a manufacturer even when the quote never
// spells the brand out, e.g. a bare "JKM440N-54HL4R-BDB" table row.
var panelModelBrandPrefixes = []struct {
	prefix string
	brand  string
}{
	{"JKM", "jinko"},
	{"TSM", "trina"},
	{"LR", "longi"},
	{"CS", "canadian solar"},
	{"JAM", "ja solar"},
	{"RSM", "risen"},
	{"SPR", "sunpower"},
	{"SRP", "seraphim"},
}

var (
	rePanelQtyModel  = regexp.MustCompile(`(?i)\b(\d{1,3})\s*[x×]\s*([a-z]{2,}[a-z0-9]*(?:-[a-z0-9]+)+)\b`)
	rePanelBrandLine = regexp.MustCompile(`(?i)\b(jinko solar|jink0|jinko|trina solar|trina|l0ngi|longi solar|longi|canadian solar|ja solar|sunpower|risen|seraphim|hyundai|aiko|tindo|winaico|phono solar|q cells|q-cells|qcells|rec)\b[\s:]+([a-z0-9][a-z0-9.\-]{2,})(?:\s*\(?\s*(\d{3,4})\s*w\b)?`)
	rePanelSystemKw  = regexp.MustCompile(`(?i)\b(\d{1,2}(?:[.,]\d{1,3})?)\s*kw\b\s*(?:of\s+|dc\s+)*solar(?:\s+(?:power|system|array))?`)
	rePanelModelWatt = regexp.MustCompile(`(?i)\b([a-z]{2,}[a-z0-9]*(?:-[a-z0-9]+)+)\s*\(?\s*(\d{3,4})\s*w\b`)
	rePanelCount     = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:x\s*)?(?:panels|modules)\b`)
	rePanelBareWatt  = regexp.MustCompile(`(?i)\b(\d{3,4})\s*w\b`)
	reWattLiteral    = regexp.MustCompile(`^\d{3,4}w$`)
)

type panelAccumulator struct {
	brands   []string
	models   []string
	counts   []int
	watts    []float64
	arrayKws []float64

	estimated bool
	snippets  map[string]string
}

func (a *panelAccumulator) note(field, snippet string) {
	if _, seen := a.snippets[field]; !seen {
		a.snippets[field] = strings.TrimSpace(snippet)
	}
}

func (a *panelAccumulator) empty() bool {
	return len(a.brands) == 0 && len(a.models) == 0 && len(a.counts) == 0 &&
		len(a.watts) == 0 && len(a.arrayKws) == 0
}

// ExtractPanels scans one classified chunk for solar-panel mentions and
// synthesizes at most one candidate from everything it accumulates.
// defaultWatts backs the panel-count estimate for "NkW of solar" phrasing
// when the document states no per-panel wattage.
func ExtractPanels(text string, page int, ctx internal.Context, defaultWatts float64) []internal.PanelCandidate {
	section := panelSectionWords.MatchString(text)
	if isNoiseContext(ctx) && !section {
		return nil
	}

	acc := &panelAccumulator{snippets: map[string]string{}}

	for _, m := range rePanelQtyModel.FindAllStringSubmatch(text, -1) {
		if count, ok := util.ParseCount(m[1]); ok {
			acc.counts = appendUniqueInt(acc.counts, count)
			acc.note("count", m[0])
		}
		acc.models = appendUniqueFold(acc.models, m[2])
		acc.note("model", m[0])
	}

	for _, m := range rePanelBrandLine.FindAllStringSubmatch(text, -1) {
		acc.brands = appendUniqueFold(acc.brands, m[1])
		acc.note("brand", m[0])
		if watt, ok := wattToken(m[2]); ok {
			acc.watts = appendUniqueFloat(acc.watts, watt)
			acc.note("wattage", m[0])
		} else {
			acc.models = appendUniqueFold(acc.models, m[2])
			acc.note("model", m[0])
		}
		if m[3] != "" {
			if watt, ok := util.ParseDecimal(m[3]); ok {
				acc.watts = appendUniqueFloat(acc.watts, watt)
				acc.note("wattage", m[0])
			}
		}
	}

	for _, m := range rePanelSystemKw.FindAllStringSubmatch(text, -1) {
		kw, ok := util.ParseDecimal(m[1])
		if !ok || kw <= 0 {
			continue
		}
		acc.arrayKws = appendUniqueFloat(acc.arrayKws, kw)
		acc.note("arrayKwDc", m[0])
		if len(acc.counts) == 0 && defaultWatts > 0 {
			estimate := int(math.Round(kw * 1000 / defaultWatts))
			if estimate > 0 {
				acc.counts = appendUniqueInt(acc.counts, estimate)
				acc.estimated = true
				acc.note("count", fmt.Sprintf("estimated %d panels from %.1fkW at %.0fW per panel", estimate, kw, defaultWatts))
			}
		}
	}

	for _, m := range rePanelModelWatt.FindAllStringSubmatch(text, -1) {
		acc.models = appendUniqueFold(acc.models, m[1])
		acc.note("model", m[0])
		if watt, ok := util.ParseDecimal(m[2]); ok {
			acc.watts = appendUniqueFloat(acc.watts, watt)
			acc.note("wattage", m[0])
		}
	}

	for _, m := range rePanelCount.FindAllStringSubmatch(text, -1) {
		if count, ok := util.ParseCount(m[1]); ok {
			acc.counts = appendUniqueInt(acc.counts, count)
			acc.note("count", m[0])
		}
	}

	if panelContextWords.MatchString(text) {
		for _, m := range rePanelBareWatt.FindAllStringSubmatch(text, -1) {
			if watt, ok := util.ParseDecimal(m[1]); ok {
				acc.watts = appendUniqueFloat(acc.watts, watt)
				acc.note("wattage", m[0])
			}
		}
	}

	for _, m := range panelBrandWords.FindAllString(text, -1) {
		acc.brands = appendUniqueFold(acc.brands, m)
		acc.note("brand", m)
	}
	if len(acc.brands) == 0 && len(acc.models) > 0 {
		if brand := brandFromModelPrefix(acc.models[0]); brand != "" {
			acc.brands = append(acc.brands, brand)
			acc.note("brand", acc.models[0])
		}
	}

	if acc.empty() {
		return nil
	}

	candidate := internal.PanelCandidate{Evidences: []internal.Evidence{}, Synthetic: acc.estimated}
	if len(acc.brands) > 0 {
		candidate.Brand = util.StringPtr(acc.brands[0])
		candidate.Evidences = append(candidate.Evidences, evidence(page, acc.snippets["brand"], ctx))
	}
	if len(acc.models) > 0 {
		candidate.Model = util.StringPtr(acc.models[0])
		candidate.Evidences = append(candidate.Evidences, evidence(page, acc.snippets["model"], ctx))
	}
	if len(acc.counts) > 0 {
		candidate.Count = util.IntPtr(acc.counts[0])
		candidate.Evidences = append(candidate.Evidences, evidence(page, acc.snippets["count"], ctx))
	}
	if len(acc.watts) > 0 {
		candidate.Wattage = util.FloatPtr(acc.watts[0])
		candidate.Evidences = append(candidate.Evidences, evidence(page, acc.snippets["wattage"], ctx))
	}
	if len(acc.arrayKws) > 0 {
		candidate.ArrayKwDc = util.FloatPtr(acc.arrayKws[0])
		candidate.Evidences = append(candidate.Evidences, evidence(page, acc.snippets["arrayKwDc"], ctx))
	}
	if section {
		candidate.Evidences = append(candidate.Evidences, evidence(page, panelSectionWords.FindString(text), ctx))
	}

	return []internal.PanelCandidate{candidate}
}

// wattToken recognizes a "440w" token captured where a model was expected.
func wattToken(token string) (float64, bool) {
	lower := strings.ToLower(strings.TrimSpace(token))
	if !reWattLiteral.MatchString(lower) {
		return 0, false
	}
	return util.ParseDecimal(strings.TrimSuffix(lower, "w"))
}

func brandFromModelPrefix(model string) string {
	upper := strings.ToUpper(model)
	for _, entry := range panelModelBrandPrefixes {
		if strings.HasPrefix(upper, entry.prefix) {
			return entry.brand
		}
	}
	return ""
}
