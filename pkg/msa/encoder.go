package msa

import "fmt"

// EncodeSymbol maps an alignment byte to its code
func EncodeSymbol(b byte) (Code, error) {
	switch b {
	case 'A':
		return BaseA, nil
	case 'C':
		return BaseC, nil
	case 'G':
		return BaseG, nil
	case 'T':
		return BaseT, nil
	case '-':
		return Gap, nil
	}
	return Absent, fmt.Errorf("%w: %q", ErrUnknownSymbol, b)
}

// Symbol returns the byte for a code; Absent maps to ' '
func (c Code) Symbol() byte {
	switch c {
	case BaseA:
		return 'A'
	case BaseC:
		return 'C'
	case BaseG:
		return 'G'
	case BaseT:
		return 'T'
	case Gap:
		return '-'
	}
	return ' '
}

// IsBase reports whether the code is one of A, C, G, T
func (c Code) IsBase() bool {
	return c >= BaseA && c <= BaseT
}

// Encode builds the tensor of a block. Each row's codes are placed from its
// column start; every other cell stays Absent.
func Encode(b *Block) (*Tensor, error) {
	t := NewTensor(len(b.Rows), b.Columns)

	for r, row := range b.Rows {
		if row.End() > b.Columns {
			return nil, fmt.Errorf("%w: row %d overflows %d columns", ErrMalformed, r, b.Columns)
		}
		for i := 0; i < len(row.Symbols); i++ {
			code, err := EncodeSymbol(row.Symbols[i])
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", r, row.ColumnStart+i, err)
			}
			t.Set(r, row.ColumnStart+i, code)
		}
	}

	return t, nil
}
