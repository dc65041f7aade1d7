package engine

import (
	"reflect"
	"testing"

	"sunquote/internal"
	"sunquote/internal/config"
)

func testEngine() *Engine {
	return New(config.Config{DefaultPanelWatts: 400})
}

func TestExtractEmptyDocument(t *testing.T) {
	for _, pages := range [][]internal.Page{nil, {}, {{Page: 1, Text: ""}}} {
		result := testEngine().Extract(pages)

		if result.Panels.Confidence != internal.ConfidenceLow {
			t.Fatalf("panels confidence = %s", result.Panels.Confidence)
		}
		if result.Battery.Confidence != internal.ConfidenceLow {
			t.Fatalf("battery confidence = %s", result.Battery.Confidence)
		}
		if result.Inverter.Confidence != internal.ConfidenceLow {
			t.Fatalf("inverter confidence = %s", result.Inverter.Confidence)
		}
		if len(result.Panels.Warnings) == 0 || len(result.Battery.Warnings) == 0 {
			t.Fatal("empty document must carry warnings")
		}
		if len(result.Errors) != 0 {
			t.Fatalf("errors = %v", result.Errors)
		}
	}
}

func quotePages() []internal.Page {
	return []internal.Page{
		{
			Page: 1,
			Text: "Proposal for John Citizen\n" +
				"6.6kW of solar power\n" +
				"Panels | 15 x JKM440N-54HL4R-BDB | 440W\n" +
				"Battery Storage | SigenStor BAT 32.0 | 2 x 16.0kWh\n" +
				"Inverter | Sigenergy EC 10.0 TP | three phase | 10kW\n" +
				"Installation address: 123 Sunny St, Sydney NSW 2000\n",
		},
		{
			Page: 2,
			Text: "Usable battery capacity: 32kWh\n" +
				"www.sunnysolar.com.au | Page 2 of 2\n",
		},
	}
}

func TestExtractFullQuote(t *testing.T) {
	result := testEngine().Extract(quotePages())

	panels := result.Panels
	if panels.Best == nil {
		t.Fatal("no panel best")
	}
	if panels.Best.Count == nil || *panels.Best.Count != 15 {
		t.Fatalf("panel count = %v, want 15", panels.Best.Count)
	}
	if panels.Best.Brand == nil || *panels.Best.Brand != "jinko" {
		t.Fatalf("panel brand = %v", panels.Best.Brand)
	}
	if panels.Best.Model == nil || *panels.Best.Model != "JKM440N-54HL4R-BDB" {
		t.Fatalf("panel model = %v", panels.Best.Model)
	}
	if panels.Best.Wattage == nil || *panels.Best.Wattage != 440 {
		t.Fatalf("panel wattage = %v", panels.Best.Wattage)
	}
	if panels.Best.ArrayKwDc == nil || *panels.Best.ArrayKwDc != 6.6 {
		t.Fatalf("panel arrayKwDc = %v", panels.Best.ArrayKwDc)
	}
	if panels.Best.Synthetic {
		t.Fatal("table row candidate must beat the synthetic estimate")
	}
	if panels.Confidence != internal.ConfidenceHigh {
		t.Fatalf("panel confidence = %s", panels.Confidence)
	}

	battery := result.Battery
	if battery.Best == nil {
		t.Fatal("no battery best")
	}
	if battery.Best.Brand == nil || *battery.Best.Brand != "sigenergy" {
		t.Fatalf("battery brand = %v", battery.Best.Brand)
	}
	if battery.Best.Model == nil || *battery.Best.Model != "BAT 32.0" {
		t.Fatalf("battery model = %v", battery.Best.Model)
	}
	if battery.Best.UsableKWh == nil || *battery.Best.UsableKWh != 32 {
		t.Fatalf("battery usableKWh = %v", battery.Best.UsableKWh)
	}
	if battery.Confidence != internal.ConfidenceHigh {
		t.Fatalf("battery confidence = %s", battery.Confidence)
	}

	inverter := result.Inverter
	if inverter.Value == nil || inverter.Value.BrandRaw == nil || *inverter.Value.BrandRaw != "Sigenergy" {
		t.Fatalf("inverter = %+v", inverter.Value)
	}
	if inverter.Value.ModelRaw == nil || *inverter.Value.ModelRaw != "EC 10.0 TP" {
		t.Fatalf("inverter model = %v", inverter.Value.ModelRaw)
	}
	if inverter.Confidence != internal.ConfidenceHigh {
		t.Fatalf("inverter confidence = %s", inverter.Confidence)
	}

	policy := result.PolicyCalcInput
	if policy.Address == nil || *policy.Address != "123 Sunny St" {
		t.Fatalf("address = %v", policy.Address)
	}
	if policy.Postcode == nil || *policy.Postcode != "2000" {
		t.Fatalf("postcode = %v", policy.Postcode)
	}
	if policy.ZoneHint == nil || *policy.ZoneHint != "zone3" {
		t.Fatalf("zoneHint = %v", policy.ZoneHint)
	}

	if len(result.Errors) != 0 {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestExtractDeterministic(t *testing.T) {
	first := testEngine().Extract(quotePages())
	second := testEngine().Extract(quotePages())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same input must produce identical results")
	}
}

func TestExtractKeepsSyntheticRunnerUp(t *testing.T) {
	result := testEngine().Extract(quotePages())
	found := false
	for _, c := range result.Panels.Candidates {
		if c.Synthetic {
			found = true
		}
	}
	if !found {
		t.Fatal("the kW-derived estimate should survive as a runner-up candidate")
	}
}
