package weather

import (
	"math"
	"time"
)

// Stat holds the summary statistics of one column. Count is the number of
// non-nil values; when it is zero the statistics are undefined.
type Stat struct {
	Mean  float64
	Max   float64
	Min   float64
	Range float64
	Count int
}

// OK reports whether the column had any values.
func (s Stat) OK() bool {
	return s.Count > 0
}

// Summary describes an exported window of observations.
type Summary struct {
	Location    Location // first observation's coordinates
	Start       time.Time
	End         time.Time
	Count       int
	Temperature Stat
	Humidity    Stat
}

// Summarize computes the report summary for obs. Nil values are excluded
// from the statistics; Range is always Max - Min.
func Summarize(obs []Observation) Summary {
	if len(obs) == 0 {
		return Summary{}
	}

	temps := make([]*float64, 0, len(obs))
	hums := make([]*float64, 0, len(obs))
	start, end := obs[0].Time, obs[0].Time
	for _, o := range obs {
		temps = append(temps, o.Temperature)
		hums = append(hums, o.Humidity)
		if o.Time.Before(start) {
			start = o.Time
		}
		if o.Time.After(end) {
			end = o.Time
		}
	}

	return Summary{
		Location:    obs[0].Location(),
		Start:       start,
		End:         end,
		Count:       len(obs),
		Temperature: summarizeValues(temps),
		Humidity:    summarizeValues(hums),
	}
}

func summarizeValues(values []*float64) Stat {
	var (
		sum   float64
		count int
		max   = math.Inf(-1)
		min   = math.Inf(1)
	)
	for _, v := range values {
		if v == nil || math.IsNaN(*v) {
			continue
		}
		sum += *v
		count++
		if *v > max {
			max = *v
		}
		if *v < min {
			min = *v
		}
	}
	if count == 0 {
		return Stat{}
	}
	return Stat{
		Mean:  sum / float64(count),
		Max:   max,
		Min:   min,
		Range: max - min,
		Count: count,
	}
}
