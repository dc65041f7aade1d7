package internal

type Context string

const (
	ContextTable  Context = "TABLE"
	ContextLine   Context = "LINE"
	ContextHeader Context = "HEADER"
	ContextFooter Context = "FOOTER"
	ContextNote   Context = "NOTE"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

type Phases string

const (
	PhaseSingle Phases = "SINGLE"
	PhaseThree  Phases = "THREE"
)

type Page struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

type Evidence struct {
	Page    int     `json:"page"`
	Text    string  `json:"text"`
	Context Context `json:"context"`
	Weight  int     `json:"weight"`
}

type PanelCandidate struct {
	Brand     *string    `json:"brand,omitempty"`
	Model     *string    `json:"model,omitempty"`
	Count     *int       `json:"count,omitempty"`
	Wattage   *float64   `json:"wattage,omitempty"`
	ArrayKwDc *float64   `json:"arrayKwDc,omitempty"`
	Evidences []Evidence `json:"evidences"`
	Score     int        `json:"score"`
	Synthetic bool       `json:"synthetic,omitempty"`
}

// StatedKWh keeps the document's original usable figure when the
// module-stack total overwrites it during normalization.
type BatteryStack struct {
	Modules   int      `json:"modules"`
	ModuleKWh float64  `json:"moduleKWh"`
	TotalKWh  float64  `json:"totalKWh"`
	StatedKWh *float64 `json:"statedKWh,omitempty"`
}

type BatteryCandidate struct {
	Brand     *string       `json:"brand,omitempty"`
	Model     *string       `json:"model,omitempty"`
	UsableKWh *float64      `json:"usableKWh,omitempty"`
	Stack     *BatteryStack `json:"stack,omitempty"`
	Evidences []Evidence    `json:"evidences"`
	Score     int           `json:"score"`
	Synthetic bool          `json:"synthetic,omitempty"`
}

// Synthetic is set after extraction when the brand+model pair is absent
// from the product catalog.
type InverterExtract struct {
	BrandRaw  *string    `json:"brandRaw,omitempty"`
	ModelRaw  *string    `json:"modelRaw,omitempty"`
	Phases    *Phases    `json:"phases,omitempty"`
	RatedKw   *float64   `json:"ratedKw,omitempty"`
	Evidences []Evidence `json:"evidences"`
	Synthetic bool       `json:"synthetic,omitempty"`
}

type PanelsResult struct {
	Best       *PanelCandidate  `json:"best,omitempty"`
	Candidates []PanelCandidate `json:"candidates"`
	Confidence Confidence       `json:"confidence"`
	Warnings   []string         `json:"warnings"`
}

type BatteryResult struct {
	Best       *BatteryCandidate  `json:"best,omitempty"`
	Candidates []BatteryCandidate `json:"candidates"`
	Confidence Confidence         `json:"confidence"`
	Warnings   []string           `json:"warnings"`
}

type InverterResult struct {
	Value      *InverterExtract `json:"value,omitempty"`
	Confidence Confidence       `json:"confidence"`
	Warnings   []string         `json:"warnings"`
}

type PolicyCalcInput struct {
	Address        *string `json:"address,omitempty"`
	Postcode       *string `json:"postcode,omitempty"`
	ZoneHint       *string `json:"zoneHint,omitempty"`
	InstallDateISO *string `json:"installDateISO,omitempty"`
}

type ExtractResult struct {
	Panels          PanelsResult    `json:"panels"`
	Battery         BatteryResult   `json:"battery"`
	Inverter        InverterResult  `json:"inverter"`
	PolicyCalcInput PolicyCalcInput `json:"policyCalcInput"`
	Errors          []string        `json:"errors"`
}

type ProductCategory string

const (
	CategoryPanel    ProductCategory = "panel"
	CategoryBattery  ProductCategory = "battery"
	CategoryInverter ProductCategory = "inverter"
)

type CatalogProduct struct {
	ID        int
	SyncUID   *string
	Category  ProductCategory
	Brand     string
	Model     string
	Watts     *float64
	UsableKWh *float64
	RatedKw   *float64
	Datasheet *string
	UpdatedAt *string
	RawJSON   string
}

// ExtractionRecord is the flattened per-category row persisted after a
// document run. Candidates holds the ranked candidate list and is stored
// as JSON alongside the flat columns.
type ExtractionRecord struct {
	Category   ProductCategory
	Brand      *string
	Model      *string
	Count      *int
	Watts      *float64
	ArrayKwDc  *float64
	UsableKWh  *float64
	RatedKw    *float64
	Phases     *string
	Score      int
	Confidence Confidence
	Synthetic  bool
	Warnings   []string
	Candidates any
	Address    *string
	Postcode   *string
}

type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

type ReviewExportRow struct {
	EmailID       int
	Category      string
	Brand         *string
	Model         *string
	Count         *int
	Watts         *float64
	ArrayKwDc     *float64
	UsableKWh     *float64
	RatedKw       *float64
	Phases        *string
	Score         int
	Confidence    string
	Synthetic     bool
	Warnings      string
	RunnerUpModel *string
	RunnerUpScore *int
	Address       *string
	Postcode      *string
}
