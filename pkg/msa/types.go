package msa

import "errors"

var (
	// ErrMalformed is returned for header or row lines that do not parse,
	// or for blocks that violate the layout invariants.
	ErrMalformed = errors.New("malformed MSA block")

	// ErrUnknownSymbol is returned for bytes outside the alignment alphabet
	ErrUnknownSymbol = errors.New("unknown alignment symbol")
)

// Row is one read of an alignment block
type Row struct {
	ColumnStart int    // 0-based offset of the first symbol within the block width
	Symbols     string // Aligned bases, gaps as '-'
}

// End returns the column one past the row's last symbol
func (r Row) End() int {
	return r.ColumnStart + len(r.Symbols)
}

// Block is one parsed MSA block
type Block struct {
	Rows       []Row
	Columns    int // Width of the alignment
	AnchorRow  int // Index into Rows of the read under evaluation
	AnchorRead int // Index of the anchor read in the reference collection
	FirstLine  int // 1-based line number of the header, 0 when unknown
}

// NumRows returns the number of rows in the block
func (b *Block) NumRows() int {
	return len(b.Rows)
}

// Anchor returns the anchor row
func (b *Block) Anchor() Row {
	return b.Rows[b.AnchorRow]
}

// Code is the numeric category of one alignment cell
type Code uint8

// Symbol codes. Absent marks cells without data.
const (
	Absent Code = iota
	BaseA
	BaseC
	BaseG
	BaseT
	Gap
)

// NumCodes is the number of distinct codes
const NumCodes = int(Gap) + 1

// Tensor is a dense rows x columns grid of codes
type Tensor struct {
	Rows    int
	Columns int
	Data    []Code // Row-major
}

// NewTensor returns a tensor with every cell Absent
func NewTensor(rows, columns int) *Tensor {
	return &Tensor{
		Rows:    rows,
		Columns: columns,
		Data:    make([]Code, rows*columns),
	}
}

// At returns the code at (row, column)
func (t *Tensor) At(row, column int) Code {
	return t.Data[row*t.Columns+column]
}

// Set stores a code at (row, column)
func (t *Tensor) Set(row, column int, c Code) {
	t.Data[row*t.Columns+column] = c
}

// InBounds reports whether (row, column) lies inside the tensor
func (t *Tensor) InBounds(row, column int) bool {
	return row >= 0 && row < t.Rows && column >= 0 && column < t.Columns
}

// Window is a fixed-size crop of a Tensor
type Window struct {
	Height int
	Width  int
	Data   []Code // Row-major
}

// NewWindow returns a window with every cell Absent
func NewWindow(height, width int) *Window {
	return &Window{
		Height: height,
		Width:  width,
		Data:   make([]Code, height*width),
	}
}

// At returns the code at (row, column)
func (w *Window) At(row, column int) Code {
	return w.Data[row*w.Width+column]
}

// Set stores a code at (row, column)
func (w *Window) Set(row, column int, c Code) {
	w.Data[row*w.Width+column] = c
}
