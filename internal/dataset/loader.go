// Package dataset loads, validates, and cleans price-table CSV files in the
// analyzer's input format: a Date column (mm-dd-yyyy or yyyy-mm-dd) followed
// by one column of daily closing prices per instrument.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/seenimoa/alphabeta/pkg/models"
	"github.com/seenimoa/alphabeta/pkg/utils"
)

// ErrNoData means the CSV had no usable data rows.
var ErrNoData = errors.New("no usable data rows in file")

// Issue is one row- or cell-level problem found while loading or cleaning.
type Issue struct {
	Row     int    `json:"row"`    // 1-based data row (excluding header)
	Column  string `json:"column"` // empty for row-level issues
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Issue kinds.
const (
	IssueBadDate       = "bad_date"
	IssueDuplicateDate = "duplicate_date"
	IssueBadNumber     = "bad_number"
	IssueShortRow      = "short_row"
	IssueImputed       = "imputed"
	IssueLongGap       = "long_gap"
)

// ValidationReport summarizes everything the loader and cleaner found.
// Presentation is the caller's job; the report is plain data.
type ValidationReport struct {
	RowsRead    int     `json:"rowsRead"`
	RowsLoaded  int     `json:"rowsLoaded"`
	RowsDropped int     `json:"rowsDropped"`
	Issues      []Issue `json:"issues,omitempty"`
}

func (r *ValidationReport) add(row int, column, kind, msg string) {
	r.Issues = append(r.Issues, Issue{Row: row, Column: column, Kind: kind, Message: msg})
}

// HasErrors reports whether any issue dropped data (as opposed to the
// informational imputed/long-gap entries added by Clean).
func (r *ValidationReport) HasErrors() bool {
	for _, is := range r.Issues {
		switch is.Kind {
		case IssueBadDate, IssueDuplicateDate, IssueShortRow:
			return true
		}
	}
	return false
}

// Load reads an analyzer-format CSV into a PriceTable. Rows with unparseable
// or duplicate dates are dropped and reported; unparseable price cells
// become missing (NaN) and are reported; blank cells become missing
// silently. Rows are sorted ascending by date. An error is returned only
// for malformed CSV or a table with no usable rows.
func Load(r io.Reader) (*models.PriceTable, *ValidationReport, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return nil, nil, fmt.Errorf("expected a Date column plus at least one price column, got %d columns", len(header))
	}
	if !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, nil, fmt.Errorf("first column must be Date, got %q", header[0])
	}

	columns := make([]string, 0, len(header)-1)
	for _, h := range header[1:] {
		name := utils.NormalizeSymbol(h)
		if name == "" {
			return nil, nil, fmt.Errorf("blank column name in header")
		}
		columns = append(columns, name)
	}

	report := &ValidationReport{}
	type row struct {
		date   string // yyyy-mm-dd key, for duplicate detection and sorting
		prices []float64
	}
	rows := make([]row, 0, 256)
	seen := make(map[string]bool)

	for rowNum := 1; ; rowNum++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row %d: %w", rowNum, err)
		}
		report.RowsRead++

		if len(rec) < 2 {
			report.add(rowNum, "", IssueShortRow, "row has no price cells")
			report.RowsDropped++
			continue
		}

		date, err := utils.ParseFlexibleDate(strings.TrimSpace(rec[0]))
		if err != nil {
			report.add(rowNum, "Date", IssueBadDate, err.Error())
			report.RowsDropped++
			continue
		}
		key := utils.FormatDate(date)
		if seen[key] {
			report.add(rowNum, "Date", IssueDuplicateDate, fmt.Sprintf("date %s appears more than once", key))
			report.RowsDropped++
			continue
		}
		seen[key] = true

		prices := make([]float64, len(columns))
		for c := range columns {
			prices[c] = models.Missing()
			if c+1 >= len(rec) {
				continue // short row tail: treat as missing
			}
			cell := strings.TrimSpace(rec[c+1])
			if cell == "" || strings.EqualFold(cell, "null") || strings.EqualFold(cell, "nan") {
				continue
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
			if err != nil {
				report.add(rowNum, columns[c], IssueBadNumber, fmt.Sprintf("cannot parse %q as a price", cell))
				continue
			}
			prices[c] = v
		}
		rows = append(rows, row{date: key, prices: prices})
	}

	if len(rows) == 0 {
		return nil, report, ErrNoData
	}
	report.RowsLoaded = len(rows)

	sort.Slice(rows, func(i, j int) bool { return rows[i].date < rows[j].date })

	table := &models.PriceTable{
		Columns: columns,
		Prices:  make(map[string][]float64, len(columns)),
	}
	for _, r := range rows {
		d, _ := utils.ParseFlexibleDate(r.date)
		table.Dates = append(table.Dates, d)
	}
	for c, name := range columns {
		col := make([]float64, len(rows))
		for i, r := range rows {
			col[i] = r.prices[c]
		}
		table.Prices[name] = col
	}
	return table, report, nil
}

// Write serializes a PriceTable back to analyzer-format CSV with ISO dates.
// Missing cells become empty fields.
func Write(w io.Writer, table *models.PriceTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Date"}, table.Columns...)); err != nil {
		return err
	}
	rec := make([]string, len(table.Columns)+1)
	for i, d := range table.Dates {
		rec[0] = utils.FormatDate(d)
		for c, name := range table.Columns {
			p := table.Prices[name][i]
			if models.IsMissing(p) {
				rec[c+1] = ""
			} else {
				rec[c+1] = strconv.FormatFloat(p, 'f', -1, 64)
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
