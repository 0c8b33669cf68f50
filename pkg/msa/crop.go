package msa

// Crop cuts a height x width window out of t centered on (row, column).
// The top-left source cell is (row-height/2, column-width/2); cells that fall
// outside the tensor are Absent, so the window shape never depends on where
// the center lies.
func Crop(t *Tensor, height, width, row, column int) *Window {
	w := NewWindow(height, width)

	top := row - height/2
	left := column - width/2

	for i := 0; i < height; i++ {
		sr := top + i
		if sr < 0 || sr >= t.Rows {
			continue
		}
		for j := 0; j < width; j++ {
			sc := left + j
			if sc < 0 || sc >= t.Columns {
				continue
			}
			w.Set(i, j, t.At(sr, sc))
		}
	}

	return w
}
