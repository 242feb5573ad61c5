// Package series groups a session's meter readings into independently
// plottable time series keyed by measurand, phase and unit.
package series

import (
	"sort"
	"strings"
	"time"

	"charging_console/internal/models"
)

const (
	// DefaultLabel names the series of readings that carry no qualifiers.
	DefaultLabel = "Value"
	// KeySeparator joins the present key components.
	KeySeparator = " - "
)

// Palette is cycled over series in first-appearance order.
var Palette = []string{"#2563eb", "#dc2626", "#16a34a", "#ca8a04", "#9333ea", "#0891b2"}

// Key derives the series label of a reading from its non-empty measurand,
// phase and unit, in that order.
func Key(r models.Reading) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.Measurand, r.Phase, r.Unit} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return DefaultLabel
	}
	return strings.Join(parts, KeySeparator)
}

// Stats summarises the points of one series.
type Stats struct {
	Count   int       `json:"count"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Avg     float64   `json:"avg"`
	Sum     float64   `json:"sum"`
	First   float64   `json:"first"`
	Last    float64   `json:"last"`
	FirstAt time.Time `json:"first_at"`
	LastAt  time.Time `json:"last_at"`
}

// Series is the timestamp-ordered subsequence of readings sharing one key.
type Series struct {
	Key       string           `json:"key"`
	Measurand string           `json:"measurand,omitempty"`
	Phase     string           `json:"phase,omitempty"`
	Unit      string           `json:"unit,omitempty"`
	Color     string           `json:"color"`
	Points    []models.Reading `json:"points"`
	Stats     Stats            `json:"stats"`
}

// Result is the partition of a reading bag into series.
type Result struct {
	Series []Series `json:"series"`
	index  map[string]int
}

// Empty reports whether there is nothing to plot.
func (r Result) Empty() bool {
	return len(r.Series) == 0
}

// Len returns the number of series.
func (r Result) Len() int {
	return len(r.Series)
}

// Keys lists series keys in first-appearance order.
func (r Result) Keys() []string {
	keys := make([]string, len(r.Series))
	for i, s := range r.Series {
		keys[i] = s.Key
	}
	return keys
}

// Lookup returns the series for key.
func (r Result) Lookup(key string) (Series, bool) {
	i, ok := r.index[key]
	if !ok {
		return Series{}, false
	}
	return r.Series[i], true
}

// PointCount returns the total number of readings across all series.
func (r Result) PointCount() int {
	n := 0
	for _, s := range r.Series {
		n += len(s.Points)
	}
	return n
}

// Aggregate partitions readings by Key in a single pass. Series keep the order
// in which their key first appeared; points inside a series are stably sorted
// by timestamp so readings that arrived out of order still draw a valid line.
// The input slice is not modified.
func Aggregate(readings []models.Reading) Result {
	res := Result{index: make(map[string]int)}
	for _, r := range readings {
		key := Key(r)
		i, ok := res.index[key]
		if !ok {
			i = len(res.Series)
			res.index[key] = i
			res.Series = append(res.Series, Series{
				Key:       key,
				Measurand: r.Measurand,
				Phase:     r.Phase,
				Unit:      r.Unit,
				Color:     Palette[i%len(Palette)],
			})
		}
		res.Series[i].Points = append(res.Series[i].Points, r)
	}

	for i := range res.Series {
		pts := res.Series[i].Points
		sort.SliceStable(pts, func(a, b int) bool {
			return pts[a].Timestamp.Before(pts[b].Timestamp.Time)
		})
		res.Series[i].Stats = summarize(pts)
	}
	return res
}

// summarize expects pts sorted by timestamp and non-empty.
func summarize(pts []models.Reading) Stats {
	if len(pts) == 0 {
		return Stats{}
	}
	first, last := pts[0], pts[len(pts)-1]
	st := Stats{
		Count:   len(pts),
		Min:     first.Value,
		Max:     first.Value,
		First:   first.Value,
		Last:    last.Value,
		FirstAt: first.Timestamp.Time,
		LastAt:  last.Timestamp.Time,
	}
	for _, p := range pts {
		st.Sum += p.Value
		if p.Value < st.Min {
			st.Min = p.Value
		}
		if p.Value > st.Max {
			st.Max = p.Value
		}
	}
	st.Avg = st.Sum / float64(st.Count)
	return st
}
