package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"eegtfr/internal/errors"
	"eegtfr/ports"
)

const (
	clusterSheet = "Clusters"
	runSheet     = "Run"
)

// writeWorkbook saves the cluster table and run parameters as an Excel
// workbook so results can be inspected without rerunning the pipeline.
func writeWorkbook(path string, data ports.ReportData) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", clusterSheet); err != nil {
		return errors.ReportError("failed to rename workbook sheet", err)
	}

	headers := []string{"Cluster", "PValue", "Significant", "Mass", "Size", "FreqLoHz", "FreqHiHz", "TimeLoS", "TimeHiS"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(clusterSheet, cell, h); err != nil {
			return errors.ReportError("failed to write workbook header", err)
		}
	}
	for row, c := range data.Clusters {
		values := []interface{}{
			c.ID, c.PValue, c.Significant(data.Alpha), c.Mass, c.Size,
			c.FreqLoHz, c.FreqHiHz, c.TimeLoS, c.TimeHiS,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(clusterSheet, cell, v); err != nil {
				return errors.ReportError("failed to write cluster row", err)
			}
		}
	}

	if _, err := f.NewSheet(runSheet); err != nil {
		return errors.ReportError("failed to add run sheet", err)
	}
	params := [][2]interface{}{
		{"RunID", data.RunID.String()},
		{"GeneratedAt", data.GeneratedAt.String()},
		{"Dataset", data.Dataset},
		{"Channel", data.Channel},
		{"ConditionA", data.Conditions[0]},
		{"ConditionB", data.Conditions[1]},
		{"MatchedTrials", data.MatchedN},
		{"BaselineFrom", data.BaselineFrom},
		{"BaselineTo", data.BaselineTo},
		{"BaselineMode", data.BaselineMode},
		{"FreqLoHz", data.FreqLoHz},
		{"FreqHiHz", data.FreqHiHz},
		{"NumFreqs", data.NumFreqs},
		{"Permutations", data.Permutations},
		{"Alpha", data.Alpha},
		{"Seed", data.Seed},
		{"Fingerprint", data.Fingerprint.String()},
	}
	for row, kv := range params {
		keyCell := fmt.Sprintf("A%d", row+1)
		valCell := fmt.Sprintf("B%d", row+1)
		if err := f.SetCellValue(runSheet, keyCell, kv[0]); err != nil {
			return errors.ReportError("failed to write run parameter", err)
		}
		if err := f.SetCellValue(runSheet, valCell, kv[1]); err != nil {
			return errors.ReportError("failed to write run parameter", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.ReportError("failed to save workbook", err)
	}
	return nil
}
