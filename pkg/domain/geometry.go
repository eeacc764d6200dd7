package domain

// Rect is an element's bounding rectangle in host viewport coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Geometry is the outline drawn around the highlighted element.
type Geometry struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// GeometryFromRect expands r by padding on every side.
func GeometryFromRect(r Rect, padding float64) Geometry {
	return Geometry{
		Top:    r.Y - padding,
		Left:   r.X - padding,
		Width:  r.Width + 2*padding,
		Height: r.Height + 2*padding,
	}
}
