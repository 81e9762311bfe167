package model

// Color is one of the fixed subject palette colors.
type Color string

// Palette colors, in preference order.
const (
	ColorMint     Color = "mint"
	ColorLavender Color = "lavender"
	ColorPeach    Color = "peach"
	ColorPink     Color = "pink"
	ColorBlue     Color = "blue"
	ColorYellow   Color = "yellow"
	ColorSage     Color = "sage"
	ColorCoral    Color = "coral"
)

// Palette lists every subject color in assignment order.
var Palette = []Color{
	ColorMint,
	ColorLavender,
	ColorPeach,
	ColorPink,
	ColorBlue,
	ColorYellow,
	ColorSage,
	ColorCoral,
}

var colorHex = map[Color]string{
	ColorMint:     "#A8E0D4",
	ColorLavender: "#CDB8E6",
	ColorPeach:    "#F0C8B0",
	ColorPink:     "#EDBCCD",
	ColorBlue:     "#B8CFEA",
	ColorYellow:   "#F0DFAE",
	ColorSage:     "#AFD3B9",
	ColorCoral:    "#EBB4AE",
}

// Valid reports whether c belongs to the palette.
func (c Color) Valid() bool {
	_, ok := colorHex[c]
	return ok
}

// Hex returns the display color, or an empty string for unknown colors.
func (c Color) Hex() string {
	return colorHex[c]
}

// NextColor picks the first palette color not in used. When every color is
// taken it cycles through the palette by count.
func NextColor(palette, used []Color, count int) Color {
	if len(palette) == 0 {
		return ""
	}
	taken := make(map[Color]struct{}, len(used))
	for _, c := range used {
		taken[c] = struct{}{}
	}
	for _, c := range palette {
		if _, ok := taken[c]; !ok {
			return c
		}
	}
	if count < 0 {
		count = 0
	}
	return palette[count%len(palette)]
}
