package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"sunquote/internal"
	"sunquote/internal/catalog"
	"sunquote/internal/config"
	"sunquote/internal/engine"
	"sunquote/internal/storage"
	"sunquote/internal/util"
)

type ProcessingService struct {
	db  *storage.DB
	cfg config.Config
}

func NewProcessingService(db *storage.DB, cfg config.Config) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg}
}

type ProcessResult struct {
	EmailID   int
	Extracted int
}

func (s *ProcessingService) ProcessByProviderMessageID(provider, messageID string) (ProcessResult, error) {
	email, err := s.db.MustEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessEmail(email)
}

func (s *ProcessingService) ProcessPending(limit int, provider string) (int, int, error) {
	pending, err := s.db.ListEmailsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	processedEmails := 0
	extracted := 0
	for _, email := range pending {
		if provider != "" && email.Provider != provider {
			continue
		}
		res, err := s.ProcessEmail(email)
		if err != nil {
			return processedEmails, extracted, err
		}
		processedEmails++
		extracted += res.Extracted
	}
	return processedEmails, extracted, nil
}

func (s *ProcessingService) ProcessEmail(email internal.EmailRow) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(email.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	doc, err := PagesFromEmailRaw(raw)
	if err != nil {
		return ProcessResult{}, err
	}

	detect := DetectSolarQuote(firstNonEmpty(doc.Subject, email.Subject), doc.Text, doc.HTML, doc.AttachmentNames, s.cfg.DetectThreshold)
	if err := s.db.ClearEmailProcessing(email.ID); err != nil {
		return ProcessResult{}, err
	}

	if !detect.IsQuote {
		_ = s.db.UpdateEmailStatus(email.ID, "skipped")
		_ = s.db.InsertRun(traceID(), email.ID, map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}, map[string]int{"pages": len(doc.Pages), "extracted": 0})
		return ProcessResult{EmailID: email.ID, Extracted: 0}, nil
	}

	result := engine.New(s.cfg).Extract(doc.Pages)

	products, err := s.db.ListProducts()
	if err != nil {
		return ProcessResult{}, err
	}
	enrichFromCatalog(catalog.BuildIndex(products), &result)

	extracted := 0
	for _, rec := range extractionRecords(result) {
		if _, err := s.db.InsertExtraction(email.ID, rec); err != nil {
			return ProcessResult{}, err
		}
		if rec.Brand != nil || rec.Model != nil || rec.Count != nil || rec.UsableKWh != nil || rec.RatedKw != nil {
			extracted++
		}
	}

	if err := s.db.UpdateEmailStatus(email.ID, "processed"); err != nil {
		return ProcessResult{}, err
	}
	_ = s.db.InsertRun(traceID(), email.ID,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{
			"pages":             len(doc.Pages),
			"extracted":         extracted,
			"panelCandidates":   len(result.Panels.Candidates),
			"batteryCandidates": len(result.Battery.Candidates),
			"warnings":          len(result.Panels.Warnings) + len(result.Battery.Warnings) + len(result.Inverter.Warnings),
		})

	return ProcessResult{EmailID: email.ID, Extracted: extracted}, nil
}

// enrichFromCatalog reconciles the best extraction per category with the
// synced catalog: numeric specs the document never stated are backfilled,
// and a brand+model pair the catalog does not know is flagged synthetic
// so reviewers see an unverified product. Document evidence is never
// overwritten. The top-ranked candidate is kept in lockstep with Best so
// the stored candidate list agrees with the flat columns.
func enrichFromCatalog(idx *catalog.Index, result *internal.ExtractResult) {
	if best := result.Panels.Best; best != nil && best.Brand != nil && best.Model != nil {
		if p := idx.Lookup(internal.CategoryPanel, *best.Brand, *best.Model); p != nil {
			if best.Wattage == nil && p.Watts != nil {
				best.Wattage = p.Watts
			}
		} else {
			best.Synthetic = true
		}
		if len(result.Panels.Candidates) > 0 {
			result.Panels.Candidates[0] = *best
		}
	}
	if best := result.Battery.Best; best != nil && best.Brand != nil && best.Model != nil {
		if p := idx.Lookup(internal.CategoryBattery, *best.Brand, *best.Model); p != nil {
			if best.UsableKWh == nil && p.UsableKWh != nil {
				best.UsableKWh = p.UsableKWh
			}
		} else {
			best.Synthetic = true
		}
		if len(result.Battery.Candidates) > 0 {
			result.Battery.Candidates[0] = *best
		}
	}
	if value := result.Inverter.Value; value != nil && value.BrandRaw != nil && value.ModelRaw != nil {
		if p := idx.Lookup(internal.CategoryInverter, *value.BrandRaw, *value.ModelRaw); p != nil {
			if value.RatedKw == nil && p.RatedKw != nil {
				value.RatedKw = p.RatedKw
			}
		} else {
			value.Synthetic = true
		}
	}
}

func extractionRecords(result internal.ExtractResult) []internal.ExtractionRecord {
	policy := result.PolicyCalcInput

	panel := internal.ExtractionRecord{
		Category:   internal.CategoryPanel,
		Confidence: result.Panels.Confidence,
		Warnings:   result.Panels.Warnings,
		Candidates: result.Panels.Candidates,
		Address:    policy.Address,
		Postcode:   policy.Postcode,
	}
	if best := result.Panels.Best; best != nil {
		panel.Brand = best.Brand
		panel.Model = best.Model
		panel.Count = best.Count
		panel.Watts = best.Wattage
		panel.ArrayKwDc = best.ArrayKwDc
		panel.Score = best.Score
		panel.Synthetic = best.Synthetic
	}

	battery := internal.ExtractionRecord{
		Category:   internal.CategoryBattery,
		Confidence: result.Battery.Confidence,
		Warnings:   result.Battery.Warnings,
		Candidates: result.Battery.Candidates,
		Address:    policy.Address,
		Postcode:   policy.Postcode,
	}
	if best := result.Battery.Best; best != nil {
		battery.Brand = best.Brand
		battery.Model = best.Model
		battery.UsableKWh = best.UsableKWh
		battery.Score = best.Score
		battery.Synthetic = best.Synthetic
	}

	inverter := internal.ExtractionRecord{
		Category:   internal.CategoryInverter,
		Confidence: result.Inverter.Confidence,
		Warnings:   result.Inverter.Warnings,
		Candidates: []internal.InverterExtract{},
		Address:    policy.Address,
		Postcode:   policy.Postcode,
	}
	if value := result.Inverter.Value; value != nil {
		inverter.Brand = value.BrandRaw
		inverter.Model = value.ModelRaw
		inverter.RatedKw = value.RatedKw
		inverter.Synthetic = value.Synthetic
		if value.Phases != nil {
			inverter.Phases = util.StringPtr(string(*value.Phases))
		}
		inverter.Candidates = []internal.InverterExtract{*value}
	}

	return []internal.ExtractionRecord{panel, battery, inverter}
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
