package engine

import (
	"regexp"
	"strings"

	"sunquote/internal"
	"sunquote/internal/util"
)

var batterySectionWords = regexp.MustCompile(`(?i)\b(battery storage|battery system|energy storage|storage system|battery backup)\b`)

var batteryBrandWords = regexp.MustCompile(`(?i)\b(sigenstor|sigenst0r|sigenergy|sigenpower|sigen|tesla powerwall|powerwall|tesla|byd|sungrow|goodwe|alphaess|alpha ess|sonnen|pylontech|lg chem|huawei luna)\b`)

var (
	reBatteryBrandModel = regexp.MustCompile(`(?i)\b(sigenstor|sigenst0r|sigenergy|sigenpower|sigen|tesla powerwall|powerwall|tesla|byd|sungrow|goodwe|alphaess|alpha ess|sonnen|pylontech)\b\s+([a-z0-9][a-z0-9.\-]*(?:\s+[a-z0-9][a-z0-9.\-]*){0,2})`)
	reBatteryStack      = regexp.MustCompile(`(?i)\b(\d)\s*[x×]\s*(\d{1,2}(?:[.,]\d{1,2})?)\s*kwh\b`)
	reBatteryModelKWh   = regexp.MustCompile(`(?i)\bbat\s*(\d{1,2}(?:[.,]\d{1,2})?)\b`)
	reBatteryCapacity   = regexp.MustCompile(`(?i)\b(\d{1,3}(?:[.,]\d{1,2})?)\s*kwh\b`)
)

// Words that trail a brand mention without being part of a model name.
var batteryModelStopWords = map[string]bool{
	"battery": true, "batteries": true, "storage": true, "system": true,
	"inverter": true, "solar": true, "energy": true, "backup": true,
	"ready": true, "included": true, "installed": true, "with": true,
	"usable": true, "capacity": true, "and": true, "in": true, "the": true,
	"of": true, "at": true, "for": true, "each": true, "per": true,
	"hybrid": true, "string": true, "phase": true, "single-phase": true,
	"three-phase": true,
}

type batteryAccumulator struct {
	brands     []string
	models     []string
	capacities []float64
	stacks     []internal.BatteryStack

	snippets map[string]string
}

func (a *batteryAccumulator) note(field, snippet string) {
	if _, seen := a.snippets[field]; !seen {
		a.snippets[field] = strings.TrimSpace(snippet)
	}
}

func (a *batteryAccumulator) empty() bool {
	return len(a.brands) == 0 && len(a.models) == 0 && len(a.capacities) == 0 && len(a.stacks) == 0
}

// ExtractBatteries scans one classified chunk for battery mentions and
// synthesizes at most one candidate from the accumulated fields.
func ExtractBatteries(text string, page int, ctx internal.Context) []internal.BatteryCandidate {
	section := batterySectionWords.MatchString(text)
	if isNoiseContext(ctx) && !section {
		return nil
	}

	acc := &batteryAccumulator{snippets: map[string]string{}}

	for _, m := range reBatteryBrandModel.FindAllStringSubmatch(text, -1) {
		acc.brands = appendUniqueFold(acc.brands, m[1])
		acc.note("brand", m[0])
		if model := trimModelStopWords(m[2]); model != "" {
			acc.models = appendUniqueFold(acc.models, model)
			acc.note("model", m[0])
		}
	}

	for _, m := range reBatteryStack.FindAllStringSubmatch(text, -1) {
		modules, okModules := util.ParseCount(m[1])
		moduleKWh, okKWh := util.ParseDecimal(m[2])
		if !okModules || !okKWh || moduleKWh <= 0 {
			continue
		}
		acc.stacks = append(acc.stacks, internal.BatteryStack{Modules: modules, ModuleKWh: moduleKWh})
		acc.note("stack", m[0])
	}

	for _, m := range reBatteryModelKWh.FindAllStringSubmatch(text, -1) {
		if kwh, ok := util.ParseDecimal(m[1]); ok && kwh > 0 {
			acc.capacities = appendUniqueFloat(acc.capacities, kwh)
			acc.note("usableKWh", m[0])
		}
	}

	if section || batteryContextWords.MatchString(text) {
		for _, m := range reBatteryCapacity.FindAllStringSubmatch(text, -1) {
			kwh, ok := util.ParseDecimal(m[1])
			if !ok || kwh <= 0 {
				continue
			}
			if isStackModuleValue(acc.stacks, kwh) {
				continue
			}
			acc.capacities = appendUniqueFloat(acc.capacities, kwh)
			acc.note("usableKWh", m[0])
		}
	}

	for _, m := range batteryBrandWords.FindAllString(text, -1) {
		acc.brands = appendUniqueFold(acc.brands, m)
		acc.note("brand", m)
	}

	if acc.empty() {
		return nil
	}

	candidate := internal.BatteryCandidate{Evidences: []internal.Evidence{}}
	if len(acc.brands) > 0 {
		candidate.Brand = util.StringPtr(acc.brands[0])
		candidate.Evidences = append(candidate.Evidences, evidence(page, acc.snippets["brand"], ctx))
	}
	if len(acc.models) > 0 {
		candidate.Model = util.StringPtr(acc.models[0])
		candidate.Evidences = append(candidate.Evidences, evidence(page, acc.snippets["model"], ctx))
	}
	if len(acc.capacities) > 0 {
		candidate.UsableKWh = util.FloatPtr(acc.capacities[0])
		candidate.Evidences = append(candidate.Evidences, evidence(page, acc.snippets["usableKWh"], ctx))
	}
	if len(acc.stacks) > 0 {
		stack := acc.stacks[0]
		candidate.Stack = &stack
		candidate.Evidences = append(candidate.Evidences, evidence(page, acc.snippets["stack"], ctx))
	}
	if section {
		candidate.Evidences = append(candidate.Evidences, evidence(page, batterySectionWords.FindString(text), ctx))
	}

	return []internal.BatteryCandidate{candidate}
}

func trimModelStopWords(raw string) string {
	tokens := strings.Fields(util.CollapseSpaces(raw))
	for len(tokens) > 0 && batteryModelStopWords[strings.ToLower(tokens[len(tokens)-1])] {
		tokens = tokens[:len(tokens)-1]
	}
	for len(tokens) > 0 && batteryModelStopWords[strings.ToLower(tokens[0])] {
		tokens = tokens[1:]
	}
	return strings.Join(tokens, " ")
}

func isStackModuleValue(stacks []internal.BatteryStack, kwh float64) bool {
	for _, s := range stacks {
		if s.ModuleKWh == kwh {
			return true
		}
	}
	return false
}
