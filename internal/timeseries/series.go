package timeseries

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
)

// Point is a single (date, price) observation.
type Point struct {
	Date  Date
	Price float64
}

// Series maps calendar dates to prices. At most one price is stored per date.
// A Series is not safe for concurrent mutation; it is owned by a single Stock or Portfolio.
type Series struct {
	prices map[Date]float64
}

// NewSeries returns an empty series.
func NewSeries() *Series {
	return &Series{prices: make(map[Date]float64)}
}

// SeriesOf builds a series from points. Later points overwrite earlier ones on the same date.
func SeriesOf(points ...Point) *Series {
	s := NewSeries()
	for _, p := range points {
		s.Put(p.Date, p.Price)
	}
	return s
}

// Len returns the number of observations.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.prices)
}

// Get returns the price on date d, if present.
func (s *Series) Get(d Date) (float64, bool) {
	if s == nil {
		return 0, false
	}
	p, ok := s.prices[d]
	return p, ok
}

// Has reports whether the series holds a price on d.
func (s *Series) Has(d Date) bool {
	_, ok := s.Get(d)
	return ok
}

// Put stores price on date d, replacing any previous price for that date.
func (s *Series) Put(d Date, price float64) {
	if s.prices == nil {
		s.prices = make(map[Date]float64)
	}
	s.prices[d] = price
}

// Delete removes the observation on d.
func (s *Series) Delete(d Date) {
	if s != nil {
		delete(s.prices, d)
	}
}

// Latest returns the maximum-keyed entry. ok is false for an empty series.
func (s *Series) Latest() (p Point, ok bool) {
	if s.Len() == 0 {
		return Point{}, false
	}
	first := true
	for d, v := range s.prices {
		if first || d.After(p.Date) {
			p = Point{d, v}
			first = false
		}
	}
	return p, true
}

// Dates returns all dates in ascending order.
func (s *Series) Dates() []Date {
	if s == nil {
		return nil
	}
	return slices.SortedFunc(maps.Keys(s.prices), Date.Compare)
}

// Ascending yields the observations ordered by date, oldest first.
// The sequence is restartable and reflects the series at the time iteration starts.
func (s *Series) Ascending() iter.Seq2[Date, float64] {
	return func(yield func(Date, float64) bool) {
		for _, d := range s.Dates() {
			if !yield(d, s.prices[d]) {
				return
			}
		}
	}
}

// Descending yields the observations ordered by date, newest first.
func (s *Series) Descending() iter.Seq2[Date, float64] {
	return func(yield func(Date, float64) bool) {
		dates := s.Dates()
		for i := len(dates) - 1; i >= 0; i-- {
			if !yield(dates[i], s.prices[dates[i]]) {
				return
			}
		}
	}
}

// Points returns the observations in ascending date order.
func (s *Series) Points() []Point {
	out := make([]Point, 0, s.Len())
	for d, v := range s.Ascending() {
		out = append(out, Point{d, v})
	}
	return out
}

// Clone returns an independent copy.
func (s *Series) Clone() *Series {
	c := NewSeries()
	if s != nil {
		maps.Copy(c.prices, s.prices)
	}
	return c
}

// Equal reports whether both series hold exactly the same observations.
func (s *Series) Equal(o *Series) bool {
	if s.Len() != o.Len() {
		return false
	}
	for d, v := range s.Ascending() {
		if ov, ok := o.Get(d); !ok || ov != v {
			return false
		}
	}
	return true
}

// ToMap converts the series to a string-keyed map (YYYY-MM-DD), suitable for serialization.
func (s *Series) ToMap() map[string]float64 {
	out := make(map[string]float64, s.Len())
	for d, v := range s.Ascending() {
		out[d.String()] = v
	}
	return out
}

// FromMap builds a series from a YYYY-MM-DD keyed map. Negative prices are rejected.
func FromMap(m map[string]float64) (*Series, error) {
	s := NewSeries()
	for k, v := range m {
		d, err := ParseDate(k)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("negative price %v on %s", v, k)
		}
		s.Put(d, v)
	}
	return s, nil
}

// String renders a short description, mostly for logs and test failures.
func (s *Series) String() string {
	if s.Len() == 0 {
		return "Series{}"
	}
	var b strings.Builder
	first := s.Dates()[0]
	last, _ := s.Latest()
	fmt.Fprintf(&b, "Series{%d points, %s..%s}", s.Len(), first, last.Date)
	return b.String()
}
