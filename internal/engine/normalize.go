package engine

import (
	"math"
	"regexp"
	"strings"

	"sunquote/internal"
	"sunquote/internal/util"
)

// stackTolerance is the kWh window inside which a stated usable capacity
// and a module-stack total are treated as confirming each other.
const stackTolerance = 0.5

// Alias table folding OCR misreads and marketing spellings onto one
// canonical brand. Values are fixed points of NormalizeBrand.
var brandAliases = map[string]string{
	"sigen":           "sigenergy",
	"sigenpower":      "sigenergy",
	"sigenstor":       "sigenergy",
	"sigenst0r":       "sigenergy",
	"solar edge":      "solaredge",
	"jink0":           "jinko",
	"jinko solar":     "jinko",
	"trina solar":     "trina",
	"l0ngi":           "longi",
	"longi solar":     "longi",
	"q cells":         "qcells",
	"q-cells":         "qcells",
	"tesla powerwall": "tesla",
	"powerwall":       "tesla",
	"alpha ess":       "alphaess",
	"lg chem":         "lg",
	"huawei luna":     "huawei",
	"sol1s":           "solis",
	"canadian":        "canadian solar",
}

var (
	reModelDisallowed = regexp.MustCompile(`[^A-Za-z0-9 \-.]+`)
	reRepeatDash      = regexp.MustCompile(`-{2,}`)
	reRepeatDot       = regexp.MustCompile(`\.{2,}`)
)

// NormalizeBrand lower-cases, collapses whitespace and folds known
// aliases. Unmapped brands pass through lower-cased. Idempotent.
func NormalizeBrand(input string) string {
	brand := util.CollapseSpaces(strings.ToLower(input))
	if canonical, ok := brandAliases[brand]; ok {
		return canonical
	}
	return brand
}

// NormalizeModel strips characters outside [A-Za-z0-9 -.], collapses
// repeated separators and upper-cases. Idempotent.
func NormalizeModel(input string) string {
	model := util.CollapseSpaces(input)
	model = reModelDisallowed.ReplaceAllString(model, "")
	model = reRepeatDash.ReplaceAllString(model, "-")
	model = reRepeatDot.ReplaceAllString(model, ".")
	return strings.ToUpper(util.CollapseSpaces(model))
}

// NormalizePanel canonicalizes brand/model and derives whichever one of
// count, wattage and arrayKwDc is missing when the other two are present.
// With all three present nothing is corrected; the scorer judges their
// consistency instead.
func NormalizePanel(c internal.PanelCandidate) internal.PanelCandidate {
	if c.Brand != nil {
		c.Brand = util.StringPtr(NormalizeBrand(*c.Brand))
	}
	if c.Model != nil {
		c.Model = util.StringPtr(NormalizeModel(*c.Model))
	}

	hasCount := c.Count != nil && *c.Count > 0
	hasWatt := c.Wattage != nil && *c.Wattage > 0
	hasArray := c.ArrayKwDc != nil && *c.ArrayKwDc > 0

	switch {
	case hasCount && hasWatt && !hasArray:
		c.ArrayKwDc = util.FloatPtr(float64(*c.Count) * *c.Wattage / 1000)
	case hasCount && hasArray && !hasWatt:
		c.Wattage = util.FloatPtr(*c.ArrayKwDc * 1000 / float64(*c.Count))
	case hasWatt && hasArray && !hasCount:
		if derived := int(math.Round(*c.ArrayKwDc * 1000 / *c.Wattage)); derived > 0 {
			c.Count = util.IntPtr(derived)
		}
	}

	return c
}

// NormalizeBattery canonicalizes brand/model and reconciles the module
// stack against the stated usable capacity. When they disagree by more
// than stackTolerance the stack-derived total wins; the stated figure is
// kept on the stack for the scorer's mismatch warning.
func NormalizeBattery(c internal.BatteryCandidate) internal.BatteryCandidate {
	if c.Brand != nil {
		c.Brand = util.StringPtr(NormalizeBrand(*c.Brand))
	}
	if c.Model != nil {
		c.Model = util.StringPtr(NormalizeModel(*c.Model))
	}

	if c.Stack == nil || c.Stack.Modules <= 0 || c.Stack.ModuleKWh <= 0 {
		return c
	}

	stack := *c.Stack
	stack.TotalKWh = float64(stack.Modules) * stack.ModuleKWh

	switch {
	case c.UsableKWh == nil:
		c.UsableKWh = util.FloatPtr(stack.TotalKWh)
	case math.Abs(*c.UsableKWh-stack.TotalKWh) > stackTolerance:
		stack.StatedKWh = util.FloatPtr(*c.UsableKWh)
		c.UsableKWh = util.FloatPtr(stack.TotalKWh)
	}

	c.Stack = &stack
	return c
}

// NormalizeInverter is deliberately light: raw strings are only trimmed
// and whitespace-collapsed, no catalog canonicalization.
func NormalizeInverter(v internal.InverterExtract) internal.InverterExtract {
	if v.BrandRaw != nil {
		v.BrandRaw = util.StringPtr(util.CollapseSpaces(*v.BrandRaw))
	}
	if v.ModelRaw != nil {
		v.ModelRaw = util.StringPtr(util.CollapseSpaces(*v.ModelRaw))
	}
	return v
}
