package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"sunquote/internal"
)

func ExportRowsToXLSX(rows []internal.ReviewExportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"email_id", "category", "brand", "model",
		"count", "watts", "array_kw_dc", "usable_kwh", "rated_kw", "phases",
		"score", "confidence", "synthetic", "warnings",
		"runner_up_model", "runner_up_score", "address", "postcode",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.EmailID)
		set(2, row.Category)
		set(3, derefString(row.Brand))
		set(4, derefString(row.Model))
		set(5, derefInt(row.Count))
		set(6, derefFloat(row.Watts))
		set(7, derefFloat(row.ArrayKwDc))
		set(8, derefFloat(row.UsableKWh))
		set(9, derefFloat(row.RatedKw))
		set(10, derefString(row.Phases))
		set(11, row.Score)
		set(12, row.Confidence)
		set(13, row.Synthetic)
		set(14, row.Warnings)
		set(15, derefString(row.RunnerUpModel))
		set(16, derefInt(row.RunnerUpScore))
		set(17, derefString(row.Address))
		set(18, derefString(row.Postcode))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
