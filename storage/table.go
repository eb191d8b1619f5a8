// Package storage moves tables and workflow records between memory and
// disk. CSV and Excel files are read into table.Table; typed helpers convert
// to and from the models at this boundary.
package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	dErrors "material-master/domainerrors"
	"material-master/table"
)

const utf8BOM = "\ufeff"

// LoadTable reads a .csv file, or the first sheet of a .xlsx file. The
// first row names the columns; empty cells load as null. A missing file is
// a NotFound error.
func LoadTable(path string) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "file not found at "+path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".xlsx", ".xlsm":
		return loadExcel(path)
	default:
		return nil, dErrors.Newf(dErrors.CodeValidation, "unsupported file type %q", filepath.Ext(path))
	}
}

func loadCSV(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return fromRecords(records)
}

func loadExcel(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table.New(), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheets[0], path, err)
	}
	return fromRecords(rows)
}

// fromRecords treats the first record as the header.
func fromRecords(records [][]string) (*table.Table, error) {
	if len(records) == 0 {
		return table.New(), nil
	}
	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := table.New(header...)
	width := len(t.Columns())
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		if len(rec) > width {
			rec = rec[:width]
		}
		values := make([]table.Value, len(rec))
		for i, cell := range rec {
			if cell == "" {
				values[i] = table.Null()
				continue
			}
			values[i] = table.String(cell)
		}
		if err := t.AppendRow(values...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// SaveTable writes t as CSV, replacing path atomically. Null cells are
// written empty.
func SaveTable(t *table.Table, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := writeCSV(tmp, t); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func writeCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return err
	}
	for i := 0; i < t.Len(); i++ {
		if err := cw.Write(cellStrings(t.Row(i))); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellStrings(values []table.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
