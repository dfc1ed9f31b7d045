package cluster

// LabelComponents assigns a positive label to each 4-connected
// component of true cells in mask, and returns the label grid plus the
// component count. Cells outside any component stay 0.
func LabelComponents(mask [][]bool) ([][]int, int) {
	rows := len(mask)
	if rows == 0 {
		return nil, 0
	}
	cols := len(mask[0])

	labels := make([][]int, rows)
	for i := range labels {
		labels[i] = make([]int, cols)
	}

	type cell struct{ r, c int }
	next := 0
	queue := make([]cell, 0, rows*cols/4)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if !mask[r][c] || labels[r][c] != 0 {
				continue
			}
			next++
			labels[r][c] = next
			queue = queue[:0]
			queue = append(queue, cell{r, c})
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
					nr, nc := cur.r+d[0], cur.c+d[1]
					if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
						continue
					}
					if mask[nr][nc] && labels[nr][nc] == 0 {
						labels[nr][nc] = next
						queue = append(queue, cell{nr, nc})
					}
				}
			}
		}
	}
	return labels, next
}
