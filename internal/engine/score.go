package engine

import (
	"fmt"
	"math"
	"sort"

	"sunquote/internal"
)

// Consistency tiers shared by panels and batteries. Thresholds are
// inclusive: a deviation of exactly the perfect percentage still earns
// the perfect bonus.
const (
	consistencyPerfect  = 3
	consistencyClose    = 1
	consistencyConflict = -2

	panelPerfectPct = 0.02
	panelClosePct   = 0.08

	batteryPerfectPct = 0.05
	batteryClosePct   = 0.10

	highScoreMin    = 8
	highSpreadMin   = 2
	mediumScoreMin  = 5
	mediumSpreadMin = 1

	// Top-two battery candidates whose usable capacities diverge beyond
	// this share get a cross-candidate warning naming both figures.
	batteryCandidateGapPct = 0.10
)

// ScorePanels scores, ranks and disambiguates panel candidates.
func ScorePanels(candidates []internal.PanelCandidate) internal.PanelsResult {
	scored := make([]internal.PanelCandidate, len(candidates))
	copy(scored, candidates)
	for i := range scored {
		scored[i].Score = panelScore(scored[i])
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	result := internal.PanelsResult{Candidates: scored, Warnings: []string{}}
	if len(scored) == 0 {
		result.Confidence = internal.ConfidenceLow
		result.Warnings = append(result.Warnings, "no panel candidates found")
		return result
	}

	best := scored[0]
	spread := 0
	if len(scored) > 1 {
		spread = best.Score - scored[1].Score
	}

	result.Best = &best
	result.Confidence = classifyConfidence(len(scored), best.Score, spread)
	result.Warnings = append(result.Warnings, commonWarnings(len(scored), spread, best.Evidences)...)

	if best.Count != nil && best.Wattage != nil && best.ArrayKwDc != nil && *best.ArrayKwDc > 0 {
		calculated := float64(*best.Count) * *best.Wattage / 1000
		if deviation(calculated, *best.ArrayKwDc) > panelClosePct {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"panel array size mismatch: %d x %.0fW = %.2fkW, stated %.2fkW",
				*best.Count, *best.Wattage, calculated, *best.ArrayKwDc))
		}
	}

	return result
}

// ScoreBatteries scores, ranks and disambiguates battery candidates.
func ScoreBatteries(candidates []internal.BatteryCandidate) internal.BatteryResult {
	scored := make([]internal.BatteryCandidate, len(candidates))
	copy(scored, candidates)
	for i := range scored {
		scored[i].Score = batteryScore(scored[i])
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	result := internal.BatteryResult{Candidates: scored, Warnings: []string{}}
	if len(scored) == 0 {
		result.Confidence = internal.ConfidenceLow
		result.Warnings = append(result.Warnings, "no battery candidates found")
		return result
	}

	best := scored[0]
	spread := 0
	if len(scored) > 1 {
		spread = best.Score - scored[1].Score
	}

	result.Best = &best
	result.Confidence = classifyConfidence(len(scored), best.Score, spread)
	result.Warnings = append(result.Warnings, commonWarnings(len(scored), spread, best.Evidences)...)

	if stated := statedBatteryKWh(best); stated != nil && best.Stack != nil && best.Stack.TotalKWh > 0 {
		if deviation(best.Stack.TotalKWh, *stated) > batteryClosePct {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"battery capacity mismatch: stack total %.1fkWh vs stated %.1fkWh",
				best.Stack.TotalKWh, *stated))
		}
	}

	if len(scored) > 1 && best.UsableKWh != nil && scored[1].UsableKWh != nil {
		a, b := *best.UsableKWh, *scored[1].UsableKWh
		if base := math.Max(a, b); base > 0 && math.Abs(a-b)/base > batteryCandidateGapPct {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"battery capacity differs between candidates: %.1fkWh vs %.1fkWh", a, b))
		}
	}

	return result
}

func panelScore(c internal.PanelCandidate) int {
	score := contextScore(c.Evidences)
	score += volumeScore(c.Evidences)
	score += completenessScore(c.Brand, c.Model)

	present := 0
	for _, ok := range []bool{c.Count != nil, c.Wattage != nil, c.ArrayKwDc != nil} {
		if ok {
			present++
		}
	}
	switch present {
	case 3:
		score += 3
	case 2:
		score++
	}

	if c.Count != nil && c.Wattage != nil && c.ArrayKwDc != nil && *c.ArrayKwDc > 0 {
		calculated := float64(*c.Count) * *c.Wattage / 1000
		score += consistencyScore(calculated, *c.ArrayKwDc, panelPerfectPct, panelClosePct)
	}

	return score
}

func batteryScore(c internal.BatteryCandidate) int {
	score := contextScore(c.Evidences)
	score += volumeScore(c.Evidences)
	score += completenessScore(c.Brand, c.Model)

	if c.UsableKWh != nil {
		score += 3
	}

	// The normalizer may already have overwritten usableKWh with the
	// stack total; consistency is judged against the originally stated
	// figure it preserved.
	if stated := statedBatteryKWh(c); stated != nil && c.Stack != nil && c.Stack.TotalKWh > 0 {
		score += consistencyScore(c.Stack.TotalKWh, *stated, batteryPerfectPct, batteryClosePct)
	}

	return score
}

func contextScore(evidences []internal.Evidence) int {
	hasLine := false
	for _, ev := range evidences {
		switch ev.Context {
		case internal.ContextTable:
			return 5
		case internal.ContextLine:
			hasLine = true
		}
	}
	if hasLine {
		return 4
	}
	return 1
}

func volumeScore(evidences []internal.Evidence) int {
	score := 0
	if len(evidences) > 1 {
		score += 2
	}
	allFooter := len(evidences) > 0
	for _, ev := range evidences {
		if ev.Context != internal.ContextFooter {
			allFooter = false
			break
		}
	}
	if allFooter {
		score--
	}
	return score
}

func completenessScore(brand, model *string) int {
	switch {
	case brand != nil && model != nil:
		return 2
	case brand != nil || model != nil:
		return 1
	default:
		return 0
	}
}

func consistencyScore(calculated, stated, perfectPct, closePct float64) int {
	switch dev := deviation(calculated, stated); {
	case dev <= perfectPct:
		return consistencyPerfect
	case dev <= closePct:
		return consistencyClose
	default:
		return consistencyConflict
	}
}

func deviation(calculated, stated float64) float64 {
	if stated == 0 {
		return math.Inf(1)
	}
	return math.Abs(calculated-stated) / math.Abs(stated)
}

// classifyConfidence applies the two-axis rule: absolute score quality
// plus dominance over the runner-up. A lone candidate has spread 0 by
// definition and cannot reach HIGH or MEDIUM.
func classifyConfidence(count, best, spread int) internal.Confidence {
	if count == 0 {
		return internal.ConfidenceLow
	}
	if best >= highScoreMin && spread >= highSpreadMin {
		return internal.ConfidenceHigh
	}
	if best >= mediumScoreMin && spread >= mediumSpreadMin {
		return internal.ConfidenceMedium
	}
	return internal.ConfidenceLow
}

func commonWarnings(count, spread int, bestEvidences []internal.Evidence) []string {
	warnings := []string{}
	if count > 1 && spread < 1 {
		warnings = append(warnings, "multiple candidates with similar scores")
	}

	hasFooter, hasTable := false, false
	for _, ev := range bestEvidences {
		switch ev.Context {
		case internal.ContextFooter:
			hasFooter = true
		case internal.ContextTable:
			hasTable = true
		}
	}
	if hasFooter && !hasTable {
		warnings = append(warnings, "evidence found only in footer/marketing content")
	}

	return warnings
}

func statedBatteryKWh(c internal.BatteryCandidate) *float64 {
	if c.Stack != nil && c.Stack.StatedKWh != nil {
		return c.Stack.StatedKWh
	}
	return c.UsableKWh
}
