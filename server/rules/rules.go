// Package rules loads expected-result rule tables from CSV and spreadsheet
// sources.
package rules

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/xuri/excelize/v2"

	"github.com/benchvalid/benchvalid/server/benchvalid"
)

// Columns that must be present in a rule-table header. DESCRIPTION and
// PROFILE are optional and default to empty.
var requiredColumns = []string{"NUMBER", "RULE_ID", "EXPECTED_RESULT"}

// Loader reads rule tables. A Loader is safe to reuse across loads; each
// load re-reads its source.
type Loader struct {
	logger kitlog.Logger
}

// NewLoader returns a Loader logging through the provided logger.
func NewLoader(logger kitlog.Logger) *Loader {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Loader{logger: logger}
}

// LoadOption adjusts a single load call.
type LoadOption func(*loadOptions)

type loadOptions struct {
	profile string
	sheet   string
}

// WithProfile restricts the load to rows whose PROFILE column matches p
// case-insensitively.
func WithProfile(p string) LoadOption {
	return func(o *loadOptions) {
		o.profile = p
	}
}

// WithSheet selects the worksheet to read from a spreadsheet source. The
// default is the workbook's first sheet.
func WithSheet(name string) LoadOption {
	return func(o *loadOptions) {
		o.sheet = name
	}
}

// LoadCSV reads rule records from a delimited text file, preserving source
// order. It returns a SourceNotFoundError if path does not exist and a
// MalformedSourceError if a required column is missing or a row cannot be
// parsed.
func (l *Loader) LoadCSV(path string, opts ...LoadOption) ([]benchvalid.RuleRecord, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &benchvalid.SourceNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("open rule source: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Rule tables exported from spreadsheets may have ragged rows when the
	// trailing optional columns are empty.
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &benchvalid.MalformedSourceError{Path: path, Reason: err.Error()}
	}
	if len(rows) == 0 {
		return nil, &benchvalid.MalformedSourceError{Path: path, Reason: "missing header row"}
	}
	return l.parse(path, rows[0], rows[1:], o)
}

// LoadSpreadsheet reads rule records from an xlsx workbook. Unless WithSheet
// is given, the workbook's first sheet is read. Error contract matches
// LoadCSV.
func (l *Loader) LoadSpreadsheet(path string, opts ...LoadOption) ([]benchvalid.RuleRecord, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &benchvalid.SourceNotFoundError{Path: path}
	}
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &benchvalid.MalformedSourceError{Path: path, Reason: err.Error()}
	}
	defer wb.Close()

	sheet := o.sheet
	if sheet == "" {
		sheet = wb.GetSheetName(0)
	}
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, &benchvalid.MalformedSourceError{Path: path, Reason: err.Error()}
	}
	if len(rows) == 0 {
		return nil, &benchvalid.MalformedSourceError{Path: path, Reason: "missing header row"}
	}
	return l.parse(path, rows[0], rows[1:], o)
}

func (l *Loader) parse(path string, header []string, rows [][]string, o loadOptions) ([]benchvalid.RuleRecord, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, &benchvalid.MalformedSourceError{Path: path, Reason: "missing required column " + required}
		}
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	records := make([]benchvalid.RuleRecord, 0, len(rows))
	for i, row := range rows {
		rawNum := cell(row, "NUMBER")
		if rawNum == "" {
			// Blank first cell marks a separator row.
			continue
		}
		num, err := parseRowNumber(rawNum)
		if err != nil {
			return nil, &benchvalid.MalformedSourceError{
				Path:   path,
				Reason: fmt.Sprintf("row %d: NUMBER %q is not an integer", i+2, rawNum),
			}
		}
		rec := benchvalid.RuleRecord{
			Number:         num,
			RuleID:         cell(row, "RULE_ID"),
			ExpectedResult: strings.ToUpper(cell(row, "EXPECTED_RESULT")),
			Description:    cell(row, "DESCRIPTION"),
			Profile:        cell(row, "PROFILE"),
		}
		if o.profile != "" && !strings.EqualFold(rec.Profile, o.profile) {
			continue
		}
		records = append(records, rec)
	}

	level.Debug(l.logger).Log(
		"msg", "loaded rule table",
		"source", path,
		"rules", len(records),
		"profile", o.profile,
	)
	return records, nil
}

// parseRowNumber accepts plain integers and the integral floats spreadsheet
// cells round-trip as, e.g. "3.0".
func parseRowNumber(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}
