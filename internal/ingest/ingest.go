// Package ingest turns uploaded spreadsheets into normalized records.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kiranshivaraju/agentlist/pkg/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrParse             = errors.New("file could not be parsed")
	ErrFileTooLarge      = errors.New("file exceeds size limit")
)

// Format identifies a supported upload encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// DetectFormat maps a filename extension to a Format.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return "", fmt.Errorf("%w: %q (allowed: .csv, .xlsx, .xls)", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ReadFile decodes every record of the file at path.
func ReadFile(path string, format Format) ([]models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatCSV:
		var records []models.Record
		err := ReadCSV(f, func(rec models.Record) error {
			records = append(records, rec)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return records, nil
	case FormatXLSX:
		return ReadXLSX(f)
	case FormatXLS:
		return ReadXLS(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// recordsFromRows converts a header-first cell grid into records.
// Leading and fully blank rows are skipped.
func recordsFromRows(rows [][]string) []models.Record {
	start := 0
	for start < len(rows) && isBlankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil
	}

	keys := NormalizeHeaders(rows[start])
	records := make([]models.Record, 0, len(rows)-start-1)
	for _, row := range rows[start+1:] {
		if isBlankRow(row) {
			continue
		}
		records = append(records, buildRecord(keys, row))
	}
	return records
}

func buildRecord(keys []string, cells []string) models.Record {
	rec := make(models.Record, len(keys))
	for i, k := range keys {
		if k == "" {
			continue
		}
		v := ""
		if i < len(cells) {
			v = NormalizeValue(cells[i])
		}
		rec[k] = v
	}
	return rec
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
