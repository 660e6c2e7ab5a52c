package parser

import (
	"math"
	"testing"

	"github.com/aluiziolira/itunes-catalog/models"
)

func TestComputePlaytime(t *testing.T) {
	tests := []struct {
		name        string
		ms          float64
		wantMinutes float64
		wantSeconds float64
	}{
		{name: "zero", ms: 0, wantMinutes: 0, wantSeconds: 0},
		{name: "two minutes five", ms: 125000, wantMinutes: 2, wantSeconds: 5},
		{name: "half minute rounds up", ms: 90000, wantMinutes: 2, wantSeconds: 30},
		{name: "seconds boundary normalized", ms: 239600, wantMinutes: 4, wantSeconds: 0},
		{name: "just under a minute", ms: 59600, wantMinutes: 1, wantSeconds: 0},
		{name: "exact minutes", ms: 180000, wantMinutes: 3, wantSeconds: 0},
		{name: "short fraction", ms: 229000, wantMinutes: 4, wantSeconds: 49},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePlaytime(models.Series{Values: []float64{tt.ms}})
			minutes, seconds := got.At(0)
			if minutes != tt.wantMinutes || seconds != tt.wantSeconds {
				t.Fatalf("ComputePlaytime(%v) = (%v, %v), want (%v, %v)",
					tt.ms, minutes, seconds, tt.wantMinutes, tt.wantSeconds)
			}
		})
	}
}

func TestComputePlaytimeAlignsAndPropagatesNaN(t *testing.T) {
	series := models.Series{Values: []float64{125000, math.NaN(), 90000}}

	got := ComputePlaytime(series)
	if len(got.Minutes) != 3 || len(got.Seconds) != 3 {
		t.Fatalf("lengths = %d/%d, want 3", len(got.Minutes), len(got.Seconds))
	}
	if m, s := got.At(1); !math.IsNaN(m) || !math.IsNaN(s) {
		t.Fatalf("NaN input produced (%v, %v)", m, s)
	}
	if m, s := got.At(2); m != 2 || s != 30 {
		t.Fatalf("third = (%v, %v), want (2, 30)", m, s)
	}
}

func TestComputePlaytimeIdempotent(t *testing.T) {
	series := models.Series{Values: []float64{0, 125000, 239600}}
	first := ComputePlaytime(series)
	second := ComputePlaytime(series)
	for i := range series.Values {
		m1, s1 := first.At(i)
		m2, s2 := second.At(i)
		if m1 != m2 || s1 != s2 {
			t.Fatalf("index %d differs: (%v, %v) vs (%v, %v)", i, m1, s1, m2, s2)
		}
	}
}
