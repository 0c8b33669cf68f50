package msa

import (
	"fmt"
	"strconv"
	"strings"
)

// Header holds the four integers of a block header line
type Header struct {
	Rows       int
	Columns    int
	AnchorRow  int
	AnchorRead int
}

// ParseHeader parses "<rows> <cols> <anchor_row> <anchor_read_index>"
func ParseHeader(line string) (Header, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Header{}, fmt.Errorf("%w: header %q: want 4 fields, got %d", ErrMalformed, line, len(fields))
	}

	var values [4]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return Header{}, fmt.Errorf("%w: header %q: field %d is not an integer", ErrMalformed, line, i+1)
		}
		values[i] = v
	}

	h := Header{
		Rows:       values[0],
		Columns:    values[1],
		AnchorRow:  values[2],
		AnchorRead: values[3],
	}

	if h.Rows < 1 || h.Columns < 0 || h.AnchorRead < 0 {
		return Header{}, fmt.Errorf("%w: header %q: negative or empty dimensions", ErrMalformed, line)
	}
	if h.AnchorRow < 0 || h.AnchorRow >= h.Rows {
		return Header{}, fmt.Errorf("%w: header %q: anchor row %d out of range [0, %d)",
			ErrMalformed, line, h.AnchorRow, h.Rows)
	}

	return h, nil
}

// ParseRow parses "<column_start> <symbols>"
func ParseRow(line string) (Row, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Row{}, fmt.Errorf("%w: row %q: want 2 fields, got %d", ErrMalformed, line, len(fields))
	}

	start, err := strconv.Atoi(fields[0])
	if err != nil || start < 0 {
		return Row{}, fmt.Errorf("%w: row %q: invalid column start", ErrMalformed, line)
	}

	return Row{ColumnStart: start, Symbols: fields[1]}, nil
}

// ParseBlock parses the block that starts at lines[0] and returns it together
// with the number of lines it spans (rows+1).
func ParseBlock(lines []string) (*Block, int, error) {
	if len(lines) == 0 {
		return nil, 0, fmt.Errorf("%w: no header line", ErrMalformed)
	}

	h, err := ParseHeader(lines[0])
	if err != nil {
		return nil, 0, err
	}

	if len(lines) < h.Rows+1 {
		return nil, 0, fmt.Errorf("%w: header declares %d rows, only %d lines follow",
			ErrMalformed, h.Rows, len(lines)-1)
	}

	block := &Block{
		Rows:       make([]Row, h.Rows),
		Columns:    h.Columns,
		AnchorRow:  h.AnchorRow,
		AnchorRead: h.AnchorRead,
	}

	for i := 0; i < h.Rows; i++ {
		row, err := ParseRow(lines[i+1])
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: %w", i, err)
		}
		if row.End() > h.Columns {
			return nil, 0, fmt.Errorf("%w: row %d ends at column %d, block has %d columns",
				ErrMalformed, i, row.End(), h.Columns)
		}
		block.Rows[i] = row
	}

	return block, h.Rows + 1, nil
}
