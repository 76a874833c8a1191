package logic

// Matrix geometry.
const (
	MatrixWidth  = 5
	MatrixHeight = 5
	NumPixels    = MatrixWidth * MatrixHeight
)

// digitRows holds each digit as visual rows, top row first. Bit 4 is the
// leftmost column.
var digitRows = [10][MatrixHeight]uint8{
	{0b01110, 0b01010, 0b01010, 0b01010, 0b01110}, // 0
	{0b00100, 0b01100, 0b00100, 0b00100, 0b01110}, // 1
	{0b01110, 0b00010, 0b01110, 0b01000, 0b01110}, // 2
	{0b01110, 0b00010, 0b01110, 0b00010, 0b01110}, // 3
	{0b01010, 0b01010, 0b01110, 0b00010, 0b00010}, // 4
	{0b01110, 0b01000, 0b01110, 0b00010, 0b01110}, // 5
	{0b01110, 0b01000, 0b01110, 0b01010, 0b01110}, // 6
	{0b01110, 0b00010, 0b00100, 0b01000, 0b01000}, // 7
	{0b01110, 0b01010, 0b01110, 0b01010, 0b01110}, // 8
	{0b01110, 0b01010, 0b01110, 0b00010, 0b01110}, // 9
}

// PixelPosition maps a strip index to its visual column and row (row 0 at
// the top). The strip starts at the bottom-left corner and snakes upwards:
// even strip rows run left to right, odd ones right to left.
func PixelPosition(index int) (x, y int) {
	row := index / MatrixWidth
	col := index % MatrixWidth
	if row%2 == 1 {
		col = MatrixWidth - 1 - col
	}
	return col, MatrixHeight - 1 - row
}

// Lit reports whether the pixel at strip index is on for digit.
func Lit(digit, index int) bool {
	if digit < 0 || digit > 9 || index < 0 || index >= NumPixels {
		return false
	}
	x, y := PixelPosition(index)
	return digitRows[digit][y]>>(MatrixWidth-1-x)&1 == 1
}

// Pattern returns the on/off mask of digit in strip order.
func Pattern(digit int) (p [NumPixels]bool, ok bool) {
	if digit < 0 || digit > 9 {
		return p, false
	}
	for i := range p {
		p[i] = Lit(digit, i)
	}
	return p, true
}

// RenderDigit streams digit to the matrix: one SetPixel per position in
// ascending index order, c for lit pixels and 0 for the rest. Digits outside
// 0-9 are ignored. A failed pixel does not stop the stream; the first error
// is returned.
func RenderDigit(m Matrix, digit int, c Color) error {
	if digit < 0 || digit > 9 {
		return nil
	}
	packed := c.Packed()
	var first error
	for i := 0; i < NumPixels; i++ {
		v := uint32(0)
		if Lit(digit, i) {
			v = packed
		}
		if err := m.SetPixel(i, v); err != nil && first == nil {
			first = err
		}
	}
	return first
}
