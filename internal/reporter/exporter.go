package reporter

import (
	"os"
	"path/filepath"
	"time"

	"soa-reconciliation-engine/internal/models"
	"soa-reconciliation-engine/internal/reconciler"
	"soa-reconciliation-engine/pkg/errors"
	"soa-reconciliation-engine/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	DetailedSheet    = "Detailed"
	DiscrepancySheet = "Discrepancies"
)

// AmountDifferenceColumn is the trailing detailed-sheet column carrying the
// per-row amount-difference summary.
const AmountDifferenceColumn = "Amount Difference"

// ExportConfig controls artifact generation.
type ExportConfig struct {
	// OutputDir receives the workbook; created if absent. Defaults to
	// "output" under the working directory.
	OutputDir string
	// FilenamePrefix defaults to "soa_reco".
	FilenamePrefix string
}

// DefaultExportConfig returns the standard artifact location.
func DefaultExportConfig() *ExportConfig {
	return &ExportConfig{
		OutputDir:      "output",
		FilenamePrefix: "soa_reco",
	}
}

// Exporter writes reconciliation results to a styled Excel workbook.
type Exporter struct {
	config *ExportConfig
	log    logger.Logger
}

// NewExporter creates an exporter with the given configuration.
func NewExporter(config *ExportConfig) *Exporter {
	if config == nil {
		config = DefaultExportConfig()
	}
	if config.OutputDir == "" {
		config.OutputDir = "output"
	}
	if config.FilenamePrefix == "" {
		config.FilenamePrefix = "soa_reco"
	}
	return &Exporter{
		config: config,
		log:    logger.WithComponent("exporter"),
	}
}

// Export writes the detailed and discrepancy sheets plus annotation-driven
// highlighting and returns the artifact path. Failures are export errors:
// the caller keeps the in-memory tables and reports an empty path.
func (e *Exporter) Export(result *reconciler.RunResult, ann *Annotations) (string, error) {
	if ann == nil {
		ann = BuildAnnotations(result)
	}

	path := filepath.Join(e.config.OutputDir,
		e.config.FilenamePrefix+"_"+time.Now().Format("20060102_150405")+".xlsx")

	if err := os.MkdirAll(e.config.OutputDir, 0o755); err != nil {
		return "", errors.ExportError(path, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", DetailedSheet)
	if _, err := f.NewSheet(DiscrepancySheet); err != nil {
		return "", errors.ExportError(path, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"404040"}},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return "", errors.ExportError(path, err)
	}

	mismatchStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC7CE"}},
	})
	if err != nil {
		return "", errors.ExportError(path, err)
	}

	duplicateStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "9C6500"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFEB9C"}},
	})
	if err != nil {
		return "", errors.ExportError(path, err)
	}

	if err := e.writeDetailedSheet(f, result, ann, headerStyle, mismatchStyle, duplicateStyle); err != nil {
		return "", errors.ExportError(path, err)
	}
	if err := writeTable(f, DiscrepancySheet, result.Discrepancies, headerStyle); err != nil {
		return "", errors.ExportError(path, err)
	}

	if err := f.SaveAs(path); err != nil {
		return "", errors.ExportError(path, err)
	}

	e.log.WithField("path", path).Info("workbook written")
	return path, nil
}

// writeDetailedSheet writes the detailed table, the trailing Amount
// Difference column and the annotation highlights.
func (e *Exporter) writeDetailedSheet(f *excelize.File, result *reconciler.RunResult, ann *Annotations, headerStyle, mismatchStyle, duplicateStyle int) error {
	table := result.Detailed

	colIndex := make(map[string]int, len(table.Columns))
	for i, col := range table.Columns {
		colIndex[col] = i + 1
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(DetailedSheet, cell, col); err != nil {
			return err
		}
	}

	diffCol := len(table.Columns) + 1
	diffHeader, err := excelize.CoordinatesToCellName(diffCol, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(DetailedSheet, diffHeader, AmountDifferenceColumn); err != nil {
		return err
	}
	if err := f.SetCellStyle(DetailedSheet, "A1", diffHeader, headerStyle); err != nil {
		return err
	}

	for rowIdx, row := range table.Rows {
		for colIdx, col := range table.Columns {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(DetailedSheet, cell, row.Get(col).String()); err != nil {
				return err
			}
		}
		if rowIdx < len(ann.AmountDifferences) {
			cell, err := excelize.CoordinatesToCellName(diffCol, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(DetailedSheet, cell, ann.AmountDifferences[rowIdx]); err != nil {
				return err
			}
		}
	}

	for _, a := range ann.Cells {
		idx, ok := colIndex[a.Column]
		if !ok {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(idx, a.Row+2)
		if err != nil {
			return err
		}
		style := mismatchStyle
		if a.Reason == ReasonDuplicateKey {
			style = duplicateStyle
		}
		if err := f.SetCellStyle(DetailedSheet, cell, cell, style); err != nil {
			return err
		}
	}

	return nil
}

// writeTable writes a plain table with a styled header row.
func writeTable(f *excelize.File, sheet string, table *models.Table, headerStyle int) error {
	for i, col := range table.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	if len(table.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(table.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
	}

	for rowIdx, row := range table.Rows {
		for colIdx, col := range table.Columns {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, row.Get(col).String()); err != nil {
				return err
			}
		}
	}
	return nil
}
