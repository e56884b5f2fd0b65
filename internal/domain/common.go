package domain

// BoundingBox is an axis-aligned rectangle in image pixel coordinates.
// A box with Right <= Left or Bottom <= Top is degenerate and has zero area.
type BoundingBox struct {
	Left   float64 `json:"left" db:"box_left" validate:"min=0"`
	Top    float64 `json:"top" db:"box_top" validate:"min=0"`
	Right  float64 `json:"right" db:"box_right" validate:"gtfield=Left"`
	Bottom float64 `json:"bottom" db:"box_bottom" validate:"gtfield=Top"`
}

// NewBoundingBox builds a box from detector box points (left, top, right, bottom).
func NewBoundingBox(left, top, right, bottom float64) BoundingBox {
	return BoundingBox{Left: left, Top: top, Right: right, Bottom: bottom}
}

// IsDegenerate reports whether the box has no positive extent on some axis.
func (b BoundingBox) IsDegenerate() bool {
	return b.Right <= b.Left || b.Bottom <= b.Top
}

// Area returns (right-left)*(bottom-top), or 0 for a degenerate box.
func (b BoundingBox) Area() float64 {
	if b.IsDegenerate() {
		return 0
	}
	return (b.Right - b.Left) * (b.Bottom - b.Top)
}

// IntersectionArea returns the area shared by b and o. Each axis is clamped
// at zero, so boxes that do not meet give 0, never a negative value.
func (b BoundingBox) IntersectionArea(o BoundingBox) float64 {
	width := max(0, min(b.Right, o.Right)-max(b.Left, o.Left))
	height := max(0, min(b.Bottom, o.Bottom)-max(b.Top, o.Top))
	return width * height
}

// OverlapRatio returns the intersection-over-union of a and b in [0, 1].
// When the union is empty (both boxes degenerate) the ratio is 0.
func OverlapRatio(a, b BoundingBox) float64 {
	intersection := a.IntersectionArea(b)
	union := a.Area() + b.Area() - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

// Detection is a single detector hit. Confidence is a percentage (0-100).
type Detection struct {
	Box        BoundingBox `json:"box"`
	Confidence float64     `json:"confidence"`
	Label      string      `json:"label,omitempty"`
}

// Boxes extracts the bounding boxes of detections, preserving order.
func Boxes(detections []Detection) []BoundingBox {
	boxes := make([]BoundingBox, len(detections))
	for i, d := range detections {
		boxes[i] = d.Box
	}
	return boxes
}
