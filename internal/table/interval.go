package table

import "sort"

// Interval is a half-open row range [Start, End).
type Interval struct {
	Start int
	End   int
}

// Len returns the number of rows covered by the interval.
func (iv Interval) Len() int { return iv.End - iv.Start }

// IntervalSet is a sparse set of row indices kept as sorted, non-overlapping,
// non-adjacent intervals. The zero value is an empty set.
type IntervalSet struct {
	ivs []Interval
}

// Set marks a single row.
func (s *IntervalSet) Set(i int) {
	s.SetRange(i, i+1)
}

// SetRange marks rows in [start, end). Empty or inverted ranges are ignored.
func (s *IntervalSet) SetRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end <= start {
		return
	}
	// Appending at the tail is the common case while rows accumulate.
	if n := len(s.ivs); n == 0 || s.ivs[n-1].End < start {
		s.ivs = append(s.ivs, Interval{Start: start, End: end})
		return
	}
	// first interval that could touch [start, end)
	lo := sort.Search(len(s.ivs), func(k int) bool { return s.ivs[k].End >= start })
	hi := lo
	for hi < len(s.ivs) && s.ivs[hi].Start <= end {
		if s.ivs[hi].Start < start {
			start = s.ivs[hi].Start
		}
		if s.ivs[hi].End > end {
			end = s.ivs[hi].End
		}
		hi++
	}
	merged := Interval{Start: start, End: end}
	out := make([]Interval, 0, len(s.ivs)-(hi-lo)+1)
	out = append(out, s.ivs[:lo]...)
	out = append(out, merged)
	out = append(out, s.ivs[hi:]...)
	s.ivs = out
}

// Contains reports whether row i is in the set.
func (s *IntervalSet) Contains(i int) bool {
	k := sort.Search(len(s.ivs), func(k int) bool { return s.ivs[k].End > i })
	return k < len(s.ivs) && s.ivs[k].Start <= i
}

// Count returns the number of rows in the set.
func (s *IntervalSet) Count() int {
	n := 0
	for _, iv := range s.ivs {
		n += iv.Len()
	}
	return n
}

// Empty reports whether no rows are set.
func (s *IntervalSet) Empty() bool { return len(s.ivs) == 0 }

// Indices lists every row in ascending order.
func (s *IntervalSet) Indices() []int {
	out := make([]int, 0, s.Count())
	for _, iv := range s.ivs {
		for i := iv.Start; i < iv.End; i++ {
			out = append(out, i)
		}
	}
	return out
}

// Intervals returns a copy of the underlying ranges.
func (s *IntervalSet) Intervals() []Interval {
	out := make([]Interval, len(s.ivs))
	copy(out, s.ivs)
	return out
}

// Clone returns an independent copy.
func (s *IntervalSet) Clone() IntervalSet {
	return IntervalSet{ivs: s.Intervals()}
}
