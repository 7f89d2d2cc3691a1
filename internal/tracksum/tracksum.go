// Package tracksum computes whole-track statistics for decoded or parsed
// tracks.
package tracksum

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"ribgpx/internal/gpx"
)

// Mean Earth radius (IUGG), meters.
const earthRadiusM = 6371008.8

type Summary struct {
	Points int

	Start    time.Time
	End      time.Time
	Duration time.Duration

	DistanceM float64

	SpeedSamples int
	MaxSpeedMps  float64
	MeanSpeedMps float64
	P95SpeedMps  float64

	EleSamples int
	MinEleM    float64
	MaxEleM    float64
	AscentM    float64
	DescentM   float64

	TempSamples int
	MinTempC    float64
	MaxTempC    float64
	MeanTempC   float64
}

// Summarize computes statistics over pts in order. Fields whose samples are
// all missing stay zero with a zero sample count.
func Summarize(pts []gpx.Point) Summary {
	s := Summary{Points: len(pts)}
	if len(pts) == 0 {
		return s
	}

	var speeds, eles, temps []float64
	for i, p := range pts {
		if !p.Time.IsZero() {
			if s.Start.IsZero() {
				s.Start = p.Time
			}
			s.End = p.Time
		}
		if i > 0 {
			s.DistanceM += haversineM(pts[i-1], p)
		}
		if p.HasSpeed {
			speeds = append(speeds, p.SpeedMps)
		}
		if p.HasEle {
			eles = append(eles, p.ElevationM)
		}
		if p.HasTemp {
			temps = append(temps, p.TempC)
		}
	}
	if !s.Start.IsZero() {
		s.Duration = s.End.Sub(s.Start)
	}

	if s.SpeedSamples = len(speeds); s.SpeedSamples > 0 {
		s.MaxSpeedMps = floats.Max(speeds)
		s.MeanSpeedMps = stat.Mean(speeds, nil)
		sorted := append([]float64(nil), speeds...)
		sort.Float64s(sorted)
		s.P95SpeedMps = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	}

	if s.EleSamples = len(eles); s.EleSamples > 0 {
		s.MinEleM = floats.Min(eles)
		s.MaxEleM = floats.Max(eles)
		if len(eles) > 1 {
			diffs := make([]float64, len(eles)-1)
			floats.SubTo(diffs, eles[1:], eles[:len(eles)-1])
			for _, d := range diffs {
				if d > 0 {
					s.AscentM += d
				} else {
					s.DescentM -= d
				}
			}
		}
	}

	if s.TempSamples = len(temps); s.TempSamples > 0 {
		s.MinTempC = floats.Min(temps)
		s.MaxTempC = floats.Max(temps)
		s.MeanTempC = stat.Mean(temps, nil)
	}
	return s
}

func haversineM(a, b gpx.Point) float64 {
	lat1 := a.LatDeg * math.Pi / 180
	lat2 := b.LatDeg * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.LonDeg - a.LonDeg) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Print writes s as "key: value" lines.
func (s Summary) Print(w io.Writer) error {
	lines := []string{
		fmt.Sprintf("points: %d", s.Points),
	}
	if !s.Start.IsZero() {
		lines = append(lines,
			fmt.Sprintf("start: %s", s.Start.UTC().Format(time.RFC3339)),
			fmt.Sprintf("end: %s", s.End.UTC().Format(time.RFC3339)),
			fmt.Sprintf("duration: %s", s.Duration),
		)
	}
	lines = append(lines, fmt.Sprintf("distance_m: %.1f", s.DistanceM))
	if s.SpeedSamples > 0 {
		lines = append(lines,
			fmt.Sprintf("speed_max_mps: %.2f", s.MaxSpeedMps),
			fmt.Sprintf("speed_mean_mps: %.2f", s.MeanSpeedMps),
			fmt.Sprintf("speed_p95_mps: %.2f", s.P95SpeedMps),
		)
	}
	if s.EleSamples > 0 {
		lines = append(lines,
			fmt.Sprintf("elevation_min_m: %.0f", s.MinEleM),
			fmt.Sprintf("elevation_max_m: %.0f", s.MaxEleM),
			fmt.Sprintf("ascent_m: %.0f", s.AscentM),
			fmt.Sprintf("descent_m: %.0f", s.DescentM),
		)
	}
	if s.TempSamples > 0 {
		lines = append(lines,
			fmt.Sprintf("temp_min_c: %.1f", s.MinTempC),
			fmt.Sprintf("temp_max_c: %.1f", s.MaxTempC),
			fmt.Sprintf("temp_mean_c: %.1f", s.MeanTempC),
		)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
