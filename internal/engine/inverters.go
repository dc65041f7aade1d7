package engine

import (
	"regexp"

	"sunquote/internal"
	"sunquote/internal/util"
)

var inverterSectionWords = regexp.MustCompile(`(?i)\b(inverter system|hybrid inverter|string inverter|inverter specifications?)\b`)

var inverterKeyword = regexp.MustCompile(`(?i)\binverters?\b`)

var (
	reInverterBrandModel = regexp.MustCompile(`(?i)\b(sigenergy|fronius|sma|sungrow|goodwe|solaredge|solar edge|sol1s|solis|growatt|huawei|enphase|selectronic|fimer|delta)\b\s+([a-z0-9][a-z0-9.\-]*(?:\s+[a-z0-9][a-z0-9.\-]*){0,2})`)
	reInverterBrand      = regexp.MustCompile(`(?i)\b(sigenergy|fronius|sma|sungrow|goodwe|solaredge|solar edge|sol1s|solis|growatt|huawei|enphase|selectronic|fimer|delta)\b`)
	reInverterKw         = regexp.MustCompile(`(?i)\b(\d{1,2}(?:[.,]\d{1,2})?)\s*kw\b`)
	rePhaseThree         = regexp.MustCompile(`(?i)\b(three|3)[\s-]*phase\b`)
	rePhaseSingle        = regexp.MustCompile(`(?i)\b(single|1)[\s-]*phase\b`)
)

// ExtractInverter reads a single best-effort inverter mention from a chunk.
// Unlike panels and batteries there is no candidate ranking; the
// orchestrator keeps the first non-nil extract. A chunk qualifies when it
// names the word "inverter", or when a kW rating and a phase token appear
// together, the shape of a datasheet row that omits the word. A known
// brand is required either way, keeping battery rows out.
func ExtractInverter(text string, page int, ctx internal.Context) *internal.InverterExtract {
	section := inverterSectionWords.MatchString(text)
	if isNoiseContext(ctx) && !section {
		return nil
	}
	specRow := reInverterKw.MatchString(text) &&
		(rePhaseThree.MatchString(text) || rePhaseSingle.MatchString(text))
	if !inverterKeyword.MatchString(text) && !specRow {
		return nil
	}

	extract := &internal.InverterExtract{Evidences: []internal.Evidence{}}

	if m := reInverterBrandModel.FindStringSubmatch(text); m != nil {
		extract.BrandRaw = util.StringPtr(m[1])
		if model := trimModelStopWords(m[2]); model != "" {
			extract.ModelRaw = util.StringPtr(model)
		}
		extract.Evidences = append(extract.Evidences, evidence(page, m[0], ctx))
	} else if m := reInverterBrand.FindString(text); m != "" {
		extract.BrandRaw = util.StringPtr(m)
		extract.Evidences = append(extract.Evidences, evidence(page, m, ctx))
	}

	if extract.BrandRaw == nil && extract.ModelRaw == nil {
		return nil
	}

	if m := reInverterKw.FindStringSubmatch(text); m != nil {
		if kw, ok := util.ParseDecimal(m[1]); ok && kw > 0 {
			extract.RatedKw = util.FloatPtr(kw)
			extract.Evidences = append(extract.Evidences, evidence(page, m[0], ctx))
		}
	}

	if m := rePhaseThree.FindString(text); m != "" {
		phases := internal.PhaseThree
		extract.Phases = &phases
		extract.Evidences = append(extract.Evidences, evidence(page, m, ctx))
	} else if m := rePhaseSingle.FindString(text); m != "" {
		phases := internal.PhaseSingle
		extract.Phases = &phases
		extract.Evidences = append(extract.Evidences, evidence(page, m, ctx))
	}

	if section {
		extract.Evidences = append(extract.Evidences, evidence(page, inverterSectionWords.FindString(text), ctx))
	}

	return extract
}
