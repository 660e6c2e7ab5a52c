// Package models defines data structures for the catalog client.
package models

import (
	"math"
	"time"
)

// SnapshotColumn records the day a result was downloaded.
const SnapshotColumn = "crawl_time"

// DurationColumn holds the track length in milliseconds.
const DurationColumn = "trackTimeMillis"

// Attributes are the catalog fields kept in the projected table, in output order.
var Attributes = []string{
	"collectionId",
	"trackPrice",
	DurationColumn,
	"primaryGenreName",
	"contentAdvisoryRating",
	"isStreamable",
	"artistId",
	"trackName",
}

// Record is one catalog entry keyed by column name. An absent key and a nil
// value are both treated as missing.
type Record map[string]any

// Table is a row-oriented result set with a stable column order.
type Table struct {
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Value returns the cell at row i for column, and whether it is present.
func (t *Table) Value(i int, column string) (any, bool) {
	if t == nil || i < 0 || i >= len(t.Rows) {
		return nil, false
	}
	v, ok := t.Rows[i][column]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Series is a numeric column aligned by position with the table it came from.
// Missing or non-numeric cells are NaN.
type Series struct {
	Name   string
	Values []float64
}

// Len returns the number of values.
func (s Series) Len() int {
	return len(s.Values)
}

// MissingEntry is the share of missing cells for one column.
type MissingEntry struct {
	Column  string  `json:"column"`
	Percent float64 `json:"percent"`
}

// MissingReport lists missing-value percentages, highest first.
type MissingReport []MissingEntry

// Percent returns the entry for column, if present.
func (r MissingReport) Percent(column string) (float64, bool) {
	for _, e := range r {
		if e.Column == column {
			return e.Percent, true
		}
	}
	return 0, false
}

// Playtime is a (minutes, seconds) pair per track.
type Playtime struct {
	Minutes []float64
	Seconds []float64
}

// At returns the pair at index i. Missing durations come back as NaN.
func (p Playtime) At(i int) (float64, float64) {
	if i < 0 || i >= len(p.Minutes) || i >= len(p.Seconds) {
		return math.NaN(), math.NaN()
	}
	return p.Minutes[i], p.Seconds[i]
}

// Result holds the output of a single fetch-and-project run.
type Result struct {
	Raw       *Table
	Projected *Table
	Missing   MissingReport
	Durations Series

	RunID        string
	URL          string
	SnapshotDate string
	FetchedAt    time.Time
	FromCache    bool
}
