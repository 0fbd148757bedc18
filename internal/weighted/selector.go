// Package weighted picks an index from a list of non-negative weights.
package weighted

import "sort"

// Selector maps a draw in [0, Total()) to a candidate index. Index i owns
// the bucket [cum[i], cum[i+1]), so zero weights are never returned.
type Selector struct {
	cum []float64 // cum[0] == 0, cum[i] == cum[i-1] + w[i-1]
}

// New builds the cumulative sums for weights. Negative weights are treated as 0.
func New(weights []float64) *Selector {
	cum := make([]float64, len(weights)+1)
	for i, w := range weights {
		if w < 0 {
			w = 0
		}
		cum[i+1] = cum[i] + w
	}
	return &Selector{cum: cum}
}

// Build returns the selector as a plain function.
func Build(weights []float64) func(x float64) int {
	return New(weights).Index
}

// Len returns the number of candidates.
func (s *Selector) Len() int { return len(s.cum) - 1 }

// Total returns the sum of all weights.
func (s *Selector) Total() float64 { return s.cum[len(s.cum)-1] }

// Index returns the candidate whose bucket contains x. Draws at or beyond
// Total() land on the last non-empty bucket. Calling Index on an empty
// selector is a caller error and returns -1.
func (s *Selector) Index(x float64) int {
	n := s.Len()
	if n <= 0 {
		return -1
	}
	if total := s.Total(); x >= total {
		return sort.Search(n, func(j int) bool { return s.cum[j+1] >= total })
	}
	return sort.Search(n, func(j int) bool { return s.cum[j+1] > x })
}

// Pick draws from rnd, which must return values in [0, 1).
func (s *Selector) Pick(rnd func() float64) int {
	return s.Index(rnd() * s.Total())
}
