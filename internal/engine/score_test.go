package engine

import (
	"testing"

	"sunquote/internal"
	"sunquote/internal/util"
)

func tableEvidence() internal.Evidence {
	return internal.Evidence{Page: 1, Text: "row", Context: internal.ContextTable, Weight: 5}
}

func footerEvidence() internal.Evidence {
	return internal.Evidence{Page: 1, Text: "footer", Context: internal.ContextFooter, Weight: 1}
}

func panelCandidate(count int, watt, arrayKw float64) internal.PanelCandidate {
	return internal.PanelCandidate{
		Brand:     util.StringPtr("jinko"),
		Model:     util.StringPtr("JKM440N"),
		Count:     util.IntPtr(count),
		Wattage:   util.FloatPtr(watt),
		ArrayKwDc: util.FloatPtr(arrayKw),
		Evidences: []internal.Evidence{tableEvidence()},
	}
}

// Base score for panelCandidate before the consistency tier: table
// context 5, single evidence 0, brand+model 2, all three specs 3.
const panelCandidateBase = 10

func TestPanelScoreConsistencyBoundaries(t *testing.T) {
	cases := []struct {
		name string
		c    internal.PanelCandidate
		want int
	}{
		{name: "exact match", c: panelCandidate(25, 500, 12.5), want: panelCandidateBase + 3},
		{name: "two percent inclusive", c: panelCandidate(25, 510, 12.5), want: panelCandidateBase + 3},
		{name: "eight percent inclusive", c: panelCandidate(27, 500, 12.5), want: panelCandidateBase + 1},
		{name: "conflict", c: panelCandidate(28, 500, 12.5), want: panelCandidateBase - 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := panelScore(tc.c); got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

func batteryCandidate(totalKWh, statedKWh float64) internal.BatteryCandidate {
	return internal.BatteryCandidate{
		Brand:     util.StringPtr("sigenergy"),
		Model:     util.StringPtr("BAT 32.0"),
		UsableKWh: util.FloatPtr(totalKWh),
		Stack: &internal.BatteryStack{
			Modules:   2,
			ModuleKWh: totalKWh / 2,
			TotalKWh:  totalKWh,
			StatedKWh: util.FloatPtr(statedKWh),
		},
		Evidences: []internal.Evidence{tableEvidence()},
	}
}

const batteryCandidateBase = 10

func TestBatteryScoreConsistencyBoundaries(t *testing.T) {
	cases := []struct {
		name string
		c    internal.BatteryCandidate
		want int
	}{
		{name: "five percent inclusive", c: batteryCandidate(21, 20), want: batteryCandidateBase + 3},
		{name: "ten percent inclusive", c: batteryCandidate(22, 20), want: batteryCandidateBase + 1},
		{name: "conflict", c: batteryCandidate(26, 20), want: batteryCandidateBase - 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := batteryScore(tc.c); got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

func TestBatteryScoreUsesUsableWhenNoStatedFigure(t *testing.T) {
	c := batteryCandidate(32, 0)
	c.Stack.StatedKWh = nil
	if got := batteryScore(c); got != batteryCandidateBase+3 {
		t.Fatalf("got %d want %d", got, batteryCandidateBase+3)
	}
}

func TestClassifyConfidence(t *testing.T) {
	cases := []struct {
		name   string
		count  int
		best   int
		spread int
		want   internal.Confidence
	}{
		{name: "no candidates", count: 0, best: 0, spread: 0, want: internal.ConfidenceLow},
		{name: "lone candidate never high", count: 1, best: 15, spread: 0, want: internal.ConfidenceLow},
		{name: "high", count: 2, best: 8, spread: 2, want: internal.ConfidenceHigh},
		{name: "high score narrow spread", count: 2, best: 12, spread: 1, want: internal.ConfidenceMedium},
		{name: "medium floor", count: 2, best: 5, spread: 1, want: internal.ConfidenceMedium},
		{name: "zero spread", count: 2, best: 12, spread: 0, want: internal.ConfidenceLow},
		{name: "weak score", count: 2, best: 4, spread: 4, want: internal.ConfidenceLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyConfidence(tc.count, tc.best, tc.spread); got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestScorePanelsEmpty(t *testing.T) {
	result := ScorePanels(nil)
	if result.Best != nil {
		t.Fatal("best should be nil")
	}
	if result.Confidence != internal.ConfidenceLow {
		t.Fatalf("confidence = %s", result.Confidence)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("empty input must warn")
	}
}

func TestScorePanelsRanksAndWarns(t *testing.T) {
	strong := panelCandidate(25, 500, 12.5)
	weak := internal.PanelCandidate{
		Brand:     util.StringPtr("trina"),
		Evidences: []internal.Evidence{footerEvidence()},
	}

	result := ScorePanels([]internal.PanelCandidate{weak, strong})
	if result.Best == nil || result.Best.Brand == nil || *result.Best.Brand != "jinko" {
		t.Fatalf("best = %+v", result.Best)
	}
	if result.Confidence != internal.ConfidenceHigh {
		t.Fatalf("confidence = %s, want HIGH", result.Confidence)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestScorePanelsMismatchWarning(t *testing.T) {
	result := ScorePanels([]internal.PanelCandidate{panelCandidate(28, 500, 12.5)})
	want := "panel array size mismatch: 28 x 500W = 14.00kW, stated 12.50kW"
	if !containsWarning(result.Warnings, want) {
		t.Fatalf("warnings = %v, want %q", result.Warnings, want)
	}
}

func TestScorePanelsSimilarScoresWarning(t *testing.T) {
	a := panelCandidate(25, 500, 12.5)
	b := panelCandidate(20, 625, 12.5)
	result := ScorePanels([]internal.PanelCandidate{a, b})
	if result.Confidence == internal.ConfidenceHigh {
		t.Fatalf("confidence = %s, tied candidates cannot be HIGH", result.Confidence)
	}
	if !containsWarning(result.Warnings, "multiple candidates with similar scores") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestScorePanelsFooterOnlyWarning(t *testing.T) {
	c := internal.PanelCandidate{
		Brand:     util.StringPtr("jinko"),
		Evidences: []internal.Evidence{footerEvidence()},
	}
	result := ScorePanels([]internal.PanelCandidate{c})
	if !containsWarning(result.Warnings, "evidence found only in footer/marketing content") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
	if result.Confidence != internal.ConfidenceLow {
		t.Fatalf("confidence = %s", result.Confidence)
	}
}

func TestScoreBatteriesEmpty(t *testing.T) {
	result := ScoreBatteries(nil)
	if result.Best != nil || result.Confidence != internal.ConfidenceLow || len(result.Warnings) == 0 {
		t.Fatalf("got %+v", result)
	}
}

func TestScoreBatteriesMismatchWarning(t *testing.T) {
	result := ScoreBatteries([]internal.BatteryCandidate{batteryCandidate(26, 20)})
	want := "battery capacity mismatch: stack total 26.0kWh vs stated 20.0kWh"
	if !containsWarning(result.Warnings, want) {
		t.Fatalf("warnings = %v, want %q", result.Warnings, want)
	}
}

func TestScoreBatteriesCrossCandidateWarning(t *testing.T) {
	a := internal.BatteryCandidate{
		Brand:     util.StringPtr("sigenergy"),
		Model:     util.StringPtr("BAT 32.0"),
		UsableKWh: util.FloatPtr(32),
		Evidences: []internal.Evidence{tableEvidence(), tableEvidence()},
	}
	b := internal.BatteryCandidate{
		UsableKWh: util.FloatPtr(20),
		Evidences: []internal.Evidence{footerEvidence()},
	}

	result := ScoreBatteries([]internal.BatteryCandidate{a, b})
	want := "battery capacity differs between candidates: 32.0kWh vs 20.0kWh"
	if !containsWarning(result.Warnings, want) {
		t.Fatalf("warnings = %v, want %q", result.Warnings, want)
	}
}

func TestScoreBatteriesAgreementNoCrossWarning(t *testing.T) {
	a := internal.BatteryCandidate{
		UsableKWh: util.FloatPtr(32),
		Evidences: []internal.Evidence{tableEvidence(), tableEvidence()},
	}
	b := internal.BatteryCandidate{
		UsableKWh: util.FloatPtr(30),
		Evidences: []internal.Evidence{footerEvidence()},
	}

	result := ScoreBatteries([]internal.BatteryCandidate{a, b})
	for _, w := range result.Warnings {
		if w == "battery capacity differs between candidates: 32.0kWh vs 30.0kWh" {
			t.Fatal("6.25% apart is within tolerance, no warning expected")
		}
	}
}

func containsWarning(warnings []string, want string) bool {
	for _, w := range warnings {
		if w == want {
			return true
		}
	}
	return false
}
