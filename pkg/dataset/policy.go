package dataset

import (
	"fmt"
	"math/rand"

	"github.com/scttfrdmn/deepcare-go/pkg/msa"
)

// Selection is the outcome of the center policy for one block
type Selection struct {
	Position  int  // Center position relative to the anchor row
	Column    int  // Center column in the block
	Label     Base // Reference base at Position
	Erroneous bool // Anchor differs from the reference somewhere
	Errors    int  // Number of mismatching positions
}

// Policy chooses the center column and label of each block. It owns its
// random source; use one Policy per worker.
type Policy struct {
	rng *rand.Rand
}

// NewPolicy returns a policy seeded with seed
func NewPolicy(seed int64) *Policy {
	return &Policy{rng: rand.New(rand.NewSource(seed))}
}

// ErrorPositions returns the anchor-relative positions where anchor and
// reference differ, over their common length.
func ErrorPositions(anchor, reference string) []int {
	n := len(anchor)
	if len(reference) < n {
		n = len(reference)
	}

	var positions []int
	for i := 0; i < n; i++ {
		if anchor[i] != reference[i] {
			positions = append(positions, i)
		}
	}
	return positions
}

// Select picks the center of b against the anchor's reference read.
// An error-free anchor is centered on its middle (truncating division);
// otherwise a mismatching position is drawn uniformly at random.
// Positions index the anchor symbols and the reference read alike: the label
// is reference[position], and the center column is ColumnStart+position.
func (p *Policy) Select(b *msa.Block, reference string) (Selection, error) {
	anchor := b.Anchor()
	if len(anchor.Symbols) == 0 {
		return Selection{}, fmt.Errorf("%w: empty anchor row", msa.ErrMalformed)
	}

	errs := ErrorPositions(anchor.Symbols, reference)

	sel := Selection{Errors: len(errs)}
	if len(errs) == 0 {
		sel.Position = len(anchor.Symbols) / 2
	} else {
		sel.Position = errs[p.rng.Intn(len(errs))]
		sel.Erroneous = true
	}

	if sel.Position >= len(reference) {
		return Selection{}, fmt.Errorf("%w: center position %d beyond reference read %d of length %d",
			msa.ErrMalformed, sel.Position, b.AnchorRead, len(reference))
	}

	label, err := ParseBase(reference[sel.Position])
	if err != nil {
		return Selection{}, fmt.Errorf("reference read %d position %d: %w", b.AnchorRead, sel.Position, err)
	}

	sel.Label = label
	sel.Column = anchor.ColumnStart + sel.Position
	return sel, nil
}
