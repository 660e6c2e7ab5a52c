package parser

import (
	"math"

	"github.com/aluiziolira/itunes-catalog/models"
)

const millisPerMinute = 60000

// ComputePlaytime converts millisecond durations into rounded minutes and
// the seconds left over from the fractional minute. Both are rounded half
// away from zero. Seconds that round up to 60 are reported as 0, since the
// minute count has already been rounded up.
func ComputePlaytime(durations models.Series) models.Playtime {
	out := models.Playtime{
		Minutes: make([]float64, len(durations.Values)),
		Seconds: make([]float64, len(durations.Values)),
	}
	for i, ms := range durations.Values {
		out.Minutes[i], out.Seconds[i] = playtime(ms)
	}
	return out
}

func playtime(ms float64) (float64, float64) {
	minutes := ms / millisPerMinute
	frac := minutes - math.Floor(minutes)
	seconds := math.Round(frac * 60)
	if seconds == 60 {
		seconds = 0
	}
	return math.Round(minutes), seconds
}
