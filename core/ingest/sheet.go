package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// parseSheet reads the first sheet of a workbook (or the only table of a
// CSV) into row records keyed by the header row.
func parseSheet(format string, data []byte) ([]string, []map[string]string, error) {
	var records [][]string
	var err error
	switch format {
	case "csv":
		records, err = readCSV(data)
	case "xlsx":
		records, err = readXLSX(data)
	default:
		err = fmt.Errorf("unknown spreadsheet format %q", format)
	}
	if err != nil {
		return nil, nil, err
	}
	return buildRows(records)
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return records, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// buildRows turns raw records into uniform row maps. The first non-blank
// record is the header. Fully blank records are skipped, missing cells
// become "", and columns without a header that never hold a value are dropped.
func buildRows(records [][]string) ([]string, []map[string]string, error) {
	hdr := -1
	for i, rec := range records {
		if !blankRecord(rec) {
			hdr = i
			break
		}
	}
	if hdr < 0 {
		return nil, nil, fmt.Errorf("spreadsheet is empty")
	}

	var body [][]string
	width := len(records[hdr])
	for _, rec := range records[hdr+1:] {
		if blankRecord(rec) {
			continue
		}
		body = append(body, rec)
		width = max(width, len(rec))
	}
	if len(body) == 0 {
		return nil, nil, fmt.Errorf("spreadsheet has a header but no data rows")
	}

	// Keep a column if it has a header or any value.
	var keep []int
	for i := 0; i < width; i++ {
		if cell(records[hdr], i) != "" {
			keep = append(keep, i)
			continue
		}
		for _, rec := range body {
			if cell(rec, i) != "" {
				keep = append(keep, i)
				break
			}
		}
	}

	columns := headerNames(records[hdr], keep)
	rows := make([]map[string]string, 0, len(body))
	for _, rec := range body {
		row := make(map[string]string, len(columns))
		for j, i := range keep {
			row[columns[j]] = cell(rec, i)
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}

// headerNames names the kept columns, filling blanks with "Column N" and
// suffixing duplicates with _1, _2, ...
func headerNames(header []string, keep []int) []string {
	names := make([]string, 0, len(keep))
	seen := make(map[string]bool, len(keep))
	for _, i := range keep {
		name := cell(header, i)
		if name == "" {
			name = "Column " + strconv.Itoa(i+1)
		}
		unique := name
		for n := 1; seen[unique]; n++ {
			unique = name + "_" + strconv.Itoa(n)
		}
		seen[unique] = true
		names = append(names, unique)
	}
	return names
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
