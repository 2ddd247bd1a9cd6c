package integrators

func makeRectangular(rows, cols int) [][]float64 {
	arr := make([]float64, rows*cols)
	rect := make([][]float64, rows)
	for i := range rect {
		rect[i] = arr[:cols:cols]
		arr = arr[cols:]
	}
	return rect
}
