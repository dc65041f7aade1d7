package engine

import (
	"fmt"

	"sunquote/internal"
	"sunquote/internal/config"
)

// Engine runs the full extraction pipeline over OCR'd quote pages:
// classify lines, correct units, extract candidates per equipment
// category, normalize, score and disambiguate. It is a pure function of
// its input; the caller owns persistence.
type Engine struct {
	cfg config.Config
}

func New(cfg config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Extract never lets an internal failure escape: any panic is converted
// into an entry in ExtractResult.Errors on an otherwise well-formed,
// empty, LOW-confidence result.
func (e *Engine) Extract(pages []internal.Page) (result internal.ExtractResult) {
	defer func() {
		if r := recover(); r != nil {
			result = emptyResult()
			result.Errors = append(result.Errors, fmt.Sprintf("extraction failed: %v", r))
		}
	}()

	var panelCandidates []internal.PanelCandidate
	var batteryCandidates []internal.BatteryCandidate
	var inverter *internal.InverterExtract
	var policy *internal.PolicyCalcInput

	for _, page := range pages {
		for _, line := range splitLines(page.Text) {
			ctx := Classify(line)
			text := CorrectUnit(line, ctx)

			// One malformed chunk must not abort the document.
			runChunk(func() {
				panelCandidates = append(panelCandidates, ExtractPanels(text, page.Page, ctx, e.cfg.DefaultPanelWatts)...)
			})
			runChunk(func() {
				batteryCandidates = append(batteryCandidates, ExtractBatteries(text, page.Page, ctx)...)
			})
			runChunk(func() {
				if inverter == nil {
					inverter = ExtractInverter(text, page.Page, ctx)
				}
			})
			runChunk(func() {
				if policy == nil {
					policy = ExtractPolicyInput(text)
				}
			})
		}
	}

	for i := range panelCandidates {
		panelCandidates[i] = NormalizePanel(panelCandidates[i])
	}
	for i := range batteryCandidates {
		batteryCandidates[i] = NormalizeBattery(batteryCandidates[i])
	}

	result = internal.ExtractResult{
		Panels:   ScorePanels(panelCandidates),
		Battery:  ScoreBatteries(batteryCandidates),
		Inverter: scoreInverter(inverter),
		Errors:   []string{},
	}
	if policy != nil {
		result.PolicyCalcInput = *policy
	}

	return result
}

// runChunk isolates one extractor invocation; a panic skips the chunk
// and processing continues.
func runChunk(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func scoreInverter(extract *internal.InverterExtract) internal.InverterResult {
	result := internal.InverterResult{Warnings: []string{}}
	if extract == nil {
		result.Confidence = internal.ConfidenceLow
		result.Warnings = append(result.Warnings, "no inverter details found")
		return result
	}

	normalized := NormalizeInverter(*extract)
	result.Value = &normalized

	switch {
	case normalized.BrandRaw != nil && normalized.ModelRaw != nil:
		result.Confidence = internal.ConfidenceHigh
	case len(normalized.Evidences) > 0:
		result.Confidence = internal.ConfidenceMedium
		result.Warnings = append(result.Warnings, "inverter brand or model missing")
	default:
		result.Confidence = internal.ConfidenceLow
	}

	return result
}

func emptyResult() internal.ExtractResult {
	return internal.ExtractResult{
		Panels:   ScorePanels(nil),
		Battery:  ScoreBatteries(nil),
		Inverter: scoreInverter(nil),
		Errors:   []string{},
	}
}
