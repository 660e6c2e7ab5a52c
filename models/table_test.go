package models

import (
	"math"
	"testing"
)

func TestTableValue(t *testing.T) {
	table := &Table{
		Columns: []string{"trackName", "contentAdvisoryRating"},
		Rows: []Record{
			{"trackName": "Monkey Gone to Heaven", "contentAdvisoryRating": nil},
		},
	}

	if v, ok := table.Value(0, "trackName"); !ok || v != "Monkey Gone to Heaven" {
		t.Fatalf("trackName = %v (%v)", v, ok)
	}
	if _, ok := table.Value(0, "contentAdvisoryRating"); ok {
		t.Fatalf("nil cell should be missing")
	}
	if _, ok := table.Value(3, "trackName"); ok {
		t.Fatalf("out of range row should be missing")
	}
	if !table.HasColumn("trackName") || table.HasColumn("artistId") {
		t.Fatalf("HasColumn mismatch")
	}

	var empty *Table
	if empty.Len() != 0 || empty.HasColumn("trackName") {
		t.Fatalf("nil table should be empty")
	}
}

func TestPlaytimeAtOutOfRange(t *testing.T) {
	p := Playtime{Minutes: []float64{2}, Seconds: []float64{5}}
	if m, s := p.At(0); m != 2 || s != 5 {
		t.Fatalf("At(0) = (%v, %v)", m, s)
	}
	if m, s := p.At(1); !math.IsNaN(m) || !math.IsNaN(s) {
		t.Fatalf("At(1) = (%v, %v), want NaN", m, s)
	}
}

func TestAttributesFixed(t *testing.T) {
	if len(Attributes) != 8 {
		t.Fatalf("attributes = %d, want 8", len(Attributes))
	}
	if Attributes[2] != DurationColumn {
		t.Fatalf("duration column moved: %v", Attributes)
	}
}
