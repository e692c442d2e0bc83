// Package parsers loads flat tabular files into the engine's table model.
//
// Cells are kept as display strings; numeric and date interpretation happens
// inside the engine so output preserves the input's formatting. The engine
// itself never touches files — this package is the producer side of its
// input data structures.
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"soa-reconciliation-engine/internal/models"
	"soa-reconciliation-engine/pkg/errors"
	"soa-reconciliation-engine/pkg/logger"
)

// ParseConfig holds CSV parsing options.
type ParseConfig struct {
	// Delimiter defaults to a comma.
	Delimiter rune
	// TrimLeadingSpace strips space after the delimiter.
	TrimLeadingSpace bool
	// SkipEmptyRows drops rows whose every cell is blank.
	SkipEmptyRows bool
}

// DefaultParseConfig returns sensible defaults for financial CSV exports.
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		Delimiter:        ',',
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
	}
}

// TableParser reads CSV files into models.Table values. The first record is
// the header row and becomes the column names.
type TableParser struct {
	config *ParseConfig
	log    logger.Logger
}

// NewTableParser creates a parser with the given configuration.
func NewTableParser(config *ParseConfig) *TableParser {
	if config == nil {
		config = DefaultParseConfig()
	}
	if config.Delimiter == 0 {
		config.Delimiter = ','
	}
	return &TableParser{
		config: config,
		log:    logger.WithComponent("parser"),
	}
}

// ParseFile loads the named CSV file.
func (p *TableParser) ParseFile(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.FileError(path, err)
	}
	defer f.Close()

	table, err := p.Parse(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryParse, errors.CodeInvalidFormat,
			fmt.Sprintf("failed to parse %s: %v", path, err))
	}

	p.log.WithFields(logger.Fields{
		"path":    path,
		"rows":    table.Len(),
		"columns": len(table.Columns),
	}).Info("loaded table")
	return table, nil
}

// Parse reads CSV data from a reader.
func (p *TableParser) Parse(r io.Reader) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.config.Delimiter
	reader.TrimLeadingSpace = p.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1 // ragged rows are padded with nulls

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}
	table := models.NewTable(columns...)

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		if p.config.SkipEmptyRows && isEmptyRecord(record) {
			continue
		}

		row := make(models.Row, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(record) {
				row[col] = models.NewString(record[i])
			}
		}
		table.AddRow(row)
	}

	return table, nil
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
