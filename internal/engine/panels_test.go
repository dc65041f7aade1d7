package engine

import (
	"strings"
	"testing"

	"sunquote/internal"
)

func TestExtractPanelsQtyModelRow(t *testing.T) {
	got := ExtractPanels("30 x JKM440N-54HL4R-BDB", 1, internal.ContextTable, 400)
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %d", len(got))
	}

	c := got[0]
	if c.Count == nil || *c.Count != 30 {
		t.Fatalf("count = %v, want 30", c.Count)
	}
	if c.Model == nil || *c.Model != "JKM440N-54HL4R-BDB" {
		t.Fatalf("model = %v", c.Model)
	}
	if c.Brand == nil || *c.Brand != "jinko" {
		t.Fatalf("brand = %v, want jinko via model prefix", c.Brand)
	}
	if c.Wattage != nil || c.ArrayKwDc != nil {
		t.Fatalf("wattage/arrayKwDc should be absent, got %v %v", c.Wattage, c.ArrayKwDc)
	}
	if c.Synthetic {
		t.Fatal("candidate should not be synthetic")
	}
	if len(c.Evidences) != 3 {
		t.Fatalf("expected brand, model and count evidence, got %d", len(c.Evidences))
	}
	for _, ev := range c.Evidences {
		if ev.Context != internal.ContextTable {
			t.Fatalf("evidence context = %s", ev.Context)
		}
		if ev.Page != 1 {
			t.Fatalf("evidence page = %d", ev.Page)
		}
	}
}

func TestExtractPanelsSystemKwEstimate(t *testing.T) {
	got := ExtractPanels("13.200kW of Solar Power", 2, internal.ContextLine, 400)
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %d", len(got))
	}

	c := got[0]
	if c.ArrayKwDc == nil || *c.ArrayKwDc != 13.2 {
		t.Fatalf("arrayKwDc = %v, want 13.2", c.ArrayKwDc)
	}
	if c.Count == nil || *c.Count != 33 {
		t.Fatalf("count = %v, want 33 estimated at 400W", c.Count)
	}
	if !c.Synthetic {
		t.Fatal("estimated count must flag the candidate synthetic")
	}

	found := false
	for _, ev := range c.Evidences {
		if strings.Contains(ev.Text, "estimated 33 panels") {
			found = true
		}
	}
	if !found {
		t.Fatal("estimation should be recorded as evidence")
	}
}

func TestExtractPanelsBrandLineWithWattage(t *testing.T) {
	got := ExtractPanels("30 panels of Jinko Solar 440W", 1, internal.ContextLine, 400)
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %d", len(got))
	}

	c := got[0]
	if c.Brand == nil || !strings.EqualFold(*c.Brand, "jinko solar") {
		t.Fatalf("brand = %v", c.Brand)
	}
	if c.Count == nil || *c.Count != 30 {
		t.Fatalf("count = %v, want 30", c.Count)
	}
	if c.Wattage == nil || *c.Wattage != 440 {
		t.Fatalf("wattage = %v, want 440", c.Wattage)
	}
	if c.Model != nil {
		t.Fatalf("model = %v, want nil: the watt token is not a model", c.Model)
	}
}

func TestExtractPanelsSkipsNoiseContexts(t *testing.T) {
	if got := ExtractPanels("Jinko 440W panels from $2999", 1, internal.ContextFooter, 400); got != nil {
		t.Fatalf("footer chunk should yield nothing, got %v", got)
	}
	if got := ExtractPanels("Proposal for 6.6kW of solar", 1, internal.ContextHeader, 400); got != nil {
		t.Fatalf("header chunk should yield nothing, got %v", got)
	}
}

func TestExtractPanelsNoMatch(t *testing.T) {
	if got := ExtractPanels("Thank you for choosing us", 1, internal.ContextLine, 400); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
