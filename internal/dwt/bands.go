package dwt

import "image"

// Orientation names a sub-band by the pass band of its horizontal and
// vertical filters, horizontal first.
type Orientation int

const (
	LL Orientation = iota
	HL             // horizontal detail: high across columns, low across rows
	LH             // vertical detail: low across columns, high across rows
	HH             // diagonal detail
)

func (o Orientation) String() string {
	switch o {
	case LL:
		return "LL"
	case HL:
		return "HL"
	case LH:
		return "LH"
	case HH:
		return "HH"
	}
	return "unknown"
}

// Band is one sub-band of a decomposed signal. Rect is in (col, row)
// coordinates of the coefficient matrix.
type Band struct {
	Level       int // 1 is the finest level
	Orientation Orientation
	Rect        image.Rectangle
}

// LowBand returns the LL rectangle of a width x height signal decomposed
// levels times.
func LowBand(width, height, levels int) image.Rectangle {
	return image.Rect(0, 0, width>>levels, height>>levels)
}

// Bands lists the sub-bands of a width x height signal decomposed levels
// times, coarsest first: the LL band, then HL, LH, HH from level `levels`
// down to level 1. The rectangles tile the whole signal. The shape must
// satisfy Validate.
func Bands(width, height, levels int) []Band {
	bands := make([]Band, 0, 1+3*levels)
	bands = append(bands, Band{Level: levels, Orientation: LL, Rect: LowBand(width, height, levels)})
	for level := levels; level >= 1; level-- {
		w, h := width>>level, height>>level
		bands = append(bands,
			Band{Level: level, Orientation: HL, Rect: image.Rect(w, 0, 2*w, h)},
			Band{Level: level, Orientation: LH, Rect: image.Rect(0, h, w, 2*h)},
			Band{Level: level, Orientation: HH, Rect: image.Rect(w, h, 2*w, 2*h)},
		)
	}
	return bands
}
