// Package grid lays out a flat sequence of cells in rows of fixed width.
package grid

// GetGridCoords returns the column and row of the cell at index when cols
// cells fit in a row.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// Rows returns how many rows n cells occupy.
func Rows(n, cols int) int {
	return (n + cols - 1) / cols
}
