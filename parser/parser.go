// Package parser turns catalog search responses into tables and derives
// the summary values the client reports.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aluiziolira/itunes-catalog/models"
)

var (
	// ErrInvalidJSON is returned when the body is not a JSON object.
	ErrInvalidJSON = errors.New("parser: invalid json")
	// ErrMissingResults is returned when the body has no results array.
	ErrMissingResults = errors.New("parser: response has no results array")
	// ErrMissingColumn is returned when a projection names an absent column.
	ErrMissingColumn = errors.New("parser: missing column")
)

// MissingColumnError lists every requested column the table lacks.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumn.Error(), strings.Join(e.Columns, ", "))
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

type searchResponse struct {
	ResultCount int                `json:"resultCount"`
	Results     *[]json.RawMessage `json:"results"`
}

// DecodeResults loads the results array of a search response into a table.
// Columns appear in the order they are first seen across records.
func DecodeResults(body []byte) (*models.Table, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if resp.Results == nil {
		return nil, ErrMissingResults
	}

	table := &models.Table{
		Columns: make([]string, 0),
		Rows:    make([]models.Record, 0, len(*resp.Results)),
	}
	seen := make(map[string]struct{})
	for i, raw := range *resp.Results {
		keys, record, err := decodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: result %d: %v", ErrInvalidJSON, i, err)
		}
		for _, key := range keys {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			table.Columns = append(table.Columns, key)
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

func decodeRecord(raw json.RawMessage) ([]string, models.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []string
	record := make(models.Record)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected key %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("decode %q: %w", key, err)
		}
		if _, dup := record[key]; !dup {
			keys = append(keys, key)
		}
		record[key] = value
	}
	return keys, record, nil
}

// AddConstantColumn sets column to value on every row, appending the column
// if the table does not have it yet.
func AddConstantColumn(table *models.Table, column string, value any) {
	if table == nil {
		return
	}
	if !table.HasColumn(column) {
		table.Columns = append(table.Columns, column)
	}
	for _, row := range table.Rows {
		row[column] = value
	}
}

// Project returns a new table restricted to columns, in that order. Rows keep
// their order and are re-indexed from zero.
func Project(table *models.Table, columns []string) (*models.Table, error) {
	if table == nil {
		return nil, &MissingColumnError{Columns: append([]string(nil), columns...)}
	}

	var missing []string
	for _, c := range columns {
		if !table.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}

	out := &models.Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([]models.Record, len(table.Rows)),
	}
	for i, row := range table.Rows {
		projected := make(models.Record, len(columns))
		for _, c := range columns {
			if v, ok := row[c]; ok {
				projected[c] = v
			}
		}
		out.Rows[i] = projected
	}
	return out, nil
}

// MissingValues reports the percentage of missing cells per column, rounded
// to one decimal and sorted highest first. Ties keep column order.
func MissingValues(table *models.Table) models.MissingReport {
	if table == nil {
		return models.MissingReport{}
	}

	report := make(models.MissingReport, 0, len(table.Columns))
	total := len(table.Rows)
	for _, column := range table.Columns {
		missing := 0
		for i := range table.Rows {
			if _, ok := table.Value(i, column); !ok {
				missing++
			}
		}
		pct := 0.0
		if total > 0 {
			pct = roundTo(float64(missing)*100/float64(total), 1)
		}
		report = append(report, models.MissingEntry{Column: column, Percent: pct})
	}

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].Percent > report[j].Percent
	})
	return report
}

// ColumnSeries extracts column as numbers. Cells that are missing or not
// numeric become NaN.
func ColumnSeries(table *models.Table, column string) models.Series {
	series := models.Series{Name: column, Values: make([]float64, table.Len())}
	for i := range series.Values {
		v, _ := table.Value(i, column)
		series.Values[i] = toFloat(v)
	}
	return series
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
