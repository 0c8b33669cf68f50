package dataset

import "github.com/scttfrdmn/deepcare-go/pkg/msa"

// Example is one cropped window with its label
type Example struct {
	Window    *msa.Window
	Label     Base
	Erroneous bool

	// Provenance
	Source string // MSA file
	Line   int    // Header line of the block
	Column int    // Center column in the block
}

// Accumulator collects examples into eight buckets: clean and erroneous,
// each keyed by label base.
type Accumulator struct {
	clean     map[Base][]Example
	erroneous map[Base][]Example
}

// NewAccumulator returns an empty accumulator
func NewAccumulator() *Accumulator {
	a := &Accumulator{
		clean:     make(map[Base][]Example, len(Bases)),
		erroneous: make(map[Base][]Example, len(Bases)),
	}
	for _, b := range Bases {
		a.clean[b] = nil
		a.erroneous[b] = nil
	}
	return a
}

func (a *Accumulator) buckets(erroneous bool) map[Base][]Example {
	if erroneous {
		return a.erroneous
	}
	return a.clean
}

// Add appends ex to its bucket
func (a *Accumulator) Add(ex Example) {
	m := a.buckets(ex.Erroneous)
	m[ex.Label] = append(m[ex.Label], ex)
}

// Len returns the size of one bucket
func (a *Accumulator) Len(erroneous bool, base Base) int {
	return len(a.buckets(erroneous)[base])
}

// Total returns the number of accumulated examples
func (a *Accumulator) Total() int {
	n := 0
	for _, b := range Bases {
		n += len(a.clean[b]) + len(a.erroneous[b])
	}
	return n
}

// Min returns the size of the smallest of the eight buckets
func (a *Accumulator) Min() int {
	m := -1
	for _, b := range Bases {
		for _, n := range []int{len(a.clean[b]), len(a.erroneous[b])} {
			if m < 0 || n < m {
				m = n
			}
		}
	}
	return m
}

// Reached reports whether every bucket holds at least limit examples.
// A non-positive limit never triggers.
func (a *Accumulator) Reached(limit int) bool {
	return limit > 0 && a.Min() >= limit
}

// Merge appends other's buckets after a's, bucket by bucket
func (a *Accumulator) Merge(other *Accumulator) {
	for _, b := range Bases {
		a.clean[b] = append(a.clean[b], other.clean[b]...)
		a.erroneous[b] = append(a.erroneous[b], other.erroneous[b]...)
	}
}

// Counts returns the current bucket sizes
func (a *Accumulator) Counts() BucketCounts {
	c := newBucketCounts()
	for _, b := range Bases {
		c.Clean[b.String()] = len(a.clean[b])
		c.Erroneous[b.String()] = len(a.erroneous[b])
	}
	return c
}

// Finalize truncates every bucket to its first m examples, where m is the
// smallest bucket size, capped at limit when limit > 0.
func (a *Accumulator) Finalize(limit int) *Balanced {
	m := a.Min()
	if limit > 0 && m > limit {
		m = limit
	}

	bal := &Balanced{
		PerBucket: m,
		Clean:     make(map[Base][]Example, len(Bases)),
		Erroneous: make(map[Base][]Example, len(Bases)),
	}
	for _, b := range Bases {
		bal.Clean[b] = a.clean[b][:m:m]
		bal.Erroneous[b] = a.erroneous[b][:m:m]
	}
	return bal
}

// Balanced is a finalized set of equally sized buckets
type Balanced struct {
	PerBucket int
	Clean     map[Base][]Example
	Erroneous map[Base][]Example
}

// Len returns the total number of retained examples
func (b *Balanced) Len() int {
	return 2 * len(Bases) * b.PerBucket
}

// Each calls fn for every example in output order: clean buckets A, C, G, T,
// then erroneous buckets A, C, G, T; n is the example's ordinal in its bucket.
func (b *Balanced) Each(fn func(ex Example, n int) error) error {
	for _, m := range []map[Base][]Example{b.Clean, b.Erroneous} {
		for _, base := range Bases {
			for n, ex := range m[base] {
				if err := fn(ex, n); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// BucketCounts holds per-bucket sizes keyed by base
type BucketCounts struct {
	Clean     map[string]int `json:"clean"`
	Erroneous map[string]int `json:"erroneous"`
}

func newBucketCounts() BucketCounts {
	return BucketCounts{
		Clean:     make(map[string]int, len(Bases)),
		Erroneous: make(map[string]int, len(Bases)),
	}
}
