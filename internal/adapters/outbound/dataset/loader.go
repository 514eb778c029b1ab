// Package dataset reads CSV files and Excel workbooks into domain.Dataset.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/dqcheck/dqcheck/internal/domain"
)

// Loader implements domain.DatasetLoader. Files ending in .xlsx are read as
// workbooks; everything else is read as delimited text.
type Loader struct{}

func New() *Loader { return &Loader{} }

// Load reads the file at path. Missing files wrap domain.ErrDatasetNotFound,
// unreadable content wraps domain.ErrInvalidDataset.
func (l *Loader) Load(path string, opts domain.LoadOptions) (*domain.Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDatasetNotFound, path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidDataset, path)
	}

	var records [][]string
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err = readWorkbook(path, opts.Sheet)
	} else {
		records, err = readCSV(path, opts.Delimiter)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidDataset, path, err)
	}
	return build(path, records, opts.NullValues)
}

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readCSV(path string, delimiter rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(stripUTF8BOM(bufio.NewReader(f)))
	if delimiter != 0 {
		r.Comma = delimiter
	}
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = false

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	// GetRows omits trailing empty rows but keeps interior blank ones.
	out := rows[:0]
	for _, row := range rows {
		if !blank(row) {
			out = append(out, row)
		}
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

func build(path string, records [][]string, nullValues []string) (*domain.Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: file is empty", domain.ErrInvalidDataset, path)
	}

	header, err := normalizeHeader(records[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidDataset, path, err)
	}

	nulls := make(map[string]bool, len(nullValues))
	for _, v := range nullValues {
		nulls[v] = true
	}

	ds := &domain.Dataset{
		Name:    Stem(path),
		Path:    path,
		Columns: header,
		Rows:    make([][]string, 0, len(records)-1),
		Nulls:   make([][]bool, 0, len(records)-1),
	}
	for i, rec := range records[1:] {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("%w: %s: row %d has %d fields, header has %d",
				domain.ErrInvalidDataset, path, i+2, len(rec), len(header))
		}
		row := make([]string, len(header))
		missing := make([]bool, len(header))
		copy(row, rec)
		for j := range row {
			missing[j] = j >= len(rec) || nulls[row[j]]
		}
		ds.Rows = append(ds.Rows, row)
		ds.Nulls = append(ds.Nulls, missing)
	}
	return ds, nil
}

// normalizeHeader trims names, fills blanks with "Unnamed: i" and suffixes
// repeated names with ".1", ".2", ...
func normalizeHeader(raw []string) ([]string, error) {
	header := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if !utf8.ValidString(h) {
			return nil, fmt.Errorf("invalid header encoding in column %d", i+1)
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", h, n)
		}
		used[name] = true
		header[i] = name
	}
	return header, nil
}
