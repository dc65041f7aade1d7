package engine

import (
	"testing"

	"sunquote/internal"
)

func TestExtractBatteriesBrandModelRow(t *testing.T) {
	got := ExtractBatteries("SigenStor BAT 32.0", 1, internal.ContextTable)
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %d", len(got))
	}

	c := got[0]
	if c.Brand == nil || *c.Brand != "SigenStor" {
		t.Fatalf("brand = %v", c.Brand)
	}
	if c.Model == nil || *c.Model != "BAT 32.0" {
		t.Fatalf("model = %v", c.Model)
	}
	if c.UsableKWh == nil || *c.UsableKWh != 32 {
		t.Fatalf("usableKWh = %v, want 32", c.UsableKWh)
	}
}

func TestExtractBatteriesStatedCapacityLine(t *testing.T) {
	got := ExtractBatteries("battery storage: 30kWh usable", 1, internal.ContextLine)
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %d", len(got))
	}

	c := got[0]
	if c.UsableKWh == nil || *c.UsableKWh != 30 {
		t.Fatalf("usableKWh = %v, want 30", c.UsableKWh)
	}
	if c.Brand != nil {
		t.Fatalf("brand = %v, want nil", c.Brand)
	}
}

func TestExtractBatteriesStack(t *testing.T) {
	got := ExtractBatteries("Sungrow battery system: 2 x 16.0kWh modules", 1, internal.ContextLine)
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %d", len(got))
	}

	c := got[0]
	if c.Stack == nil {
		t.Fatal("stack missing")
	}
	if c.Stack.Modules != 2 || c.Stack.ModuleKWh != 16 {
		t.Fatalf("stack = %+v", c.Stack)
	}
	// 16.0kWh names the module size, not the usable total.
	if c.UsableKWh != nil {
		t.Fatalf("usableKWh = %v, want nil", c.UsableKWh)
	}
}

func TestExtractBatteriesModelStopWords(t *testing.T) {
	got := ExtractBatteries("Tesla Powerwall battery backup included", 1, internal.ContextLine)
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %d", len(got))
	}

	c := got[0]
	if c.Brand == nil {
		t.Fatal("brand missing")
	}
	if c.Model != nil {
		t.Fatalf("model = %v, want nil after stop words", c.Model)
	}
}

func TestExtractBatteriesSkipsNoiseContexts(t *testing.T) {
	if got := ExtractBatteries("Tesla Powerwall from $12,000", 1, internal.ContextFooter); got != nil {
		t.Fatalf("footer chunk should yield nothing, got %v", got)
	}
}

func TestExtractBatteriesNoMatch(t *testing.T) {
	if got := ExtractBatteries("Inverter mounted beside the meter box", 1, internal.ContextLine); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
