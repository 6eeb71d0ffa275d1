package layout

// GridCoords converts a linear cell index into column and row for a grid
// that is cols cells wide.
func GridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// Screen fills a cols×rows cell buffer with lines starting at line top.
// Empty cells hold 0; runes past the right edge are cut.
func Screen(lines []string, top, cols, rows int) []rune {
	cells := make([]rune, cols*rows)
	for row := 0; row < rows; row++ {
		i := top + row
		if i < 0 || i >= len(lines) {
			continue
		}
		col := 0
		for _, r := range lines[i] {
			if col >= cols {
				break
			}
			if r != ' ' {
				cells[row*cols+col] = r
			}
			col++
		}
	}
	return cells
}

// MaxTop is the largest useful scroll offset for a view of rows lines.
func MaxTop(lines []string, rows int) int {
	return max(0, len(lines)-rows)
}
