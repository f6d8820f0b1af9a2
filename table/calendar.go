package table

import "time"

// DaySpans splits an increasing index into contiguous calendar days. Days are
// taken from each timestamp in its own location
func DaySpans(index []time.Time) []Span {
	var spans []Span
	for j := range index {
		if j == 0 || !sameDay(index[j-1], index[j]) {
			if j > 0 {
				spans[len(spans)-1].End = j
			}
			spans = append(spans, Span{Start: j})
		}
	}
	if len(spans) > 0 {
		spans[len(spans)-1].End = len(index)
	}
	return spans
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FirstOfDay flags the first bar of every calendar day
func FirstOfDay(index []time.Time) []bool {
	resp := make([]bool, len(index))
	for _, s := range DaySpans(index) {
		resp[s.Start] = true
	}
	return resp
}

// LastOfDay flags the last bar of every calendar day
func LastOfDay(index []time.Time) []bool {
	resp := make([]bool, len(index))
	for _, s := range DaySpans(index) {
		resp[s.End-1] = true
	}
	return resp
}

// InLocation returns a copy of the index converted to loc
func InLocation(index []time.Time, loc *time.Location) []time.Time {
	resp := make([]time.Time, len(index))
	for j := range index {
		resp[j] = index[j].In(loc)
	}
	return resp
}
