package math

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vec3
	Max Vec3
}

// NewBox creates a box from two corners, ordering each axis so Min <= Max.
func NewBox(a, b Vec3) Box {
	box := Box{Min: a, Max: b}
	if box.Min.X > box.Max.X {
		box.Min.X, box.Max.X = box.Max.X, box.Min.X
	}
	if box.Min.Y > box.Max.Y {
		box.Min.Y, box.Max.Y = box.Max.Y, box.Min.Y
	}
	if box.Min.Z > box.Max.Z {
		box.Min.Z, box.Max.Z = box.Max.Z, box.Min.Z
	}
	return box
}

// Size returns the extent along each axis.
func (b Box) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Radius returns half the diagonal length.
func (b Box) Radius() float32 {
	return b.Size().Length() * 0.5
}

// ContainsXZ reports whether p lies inside the box footprint, ignoring Y.
func (b Box) ContainsXZ(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Z >= b.Min.Z && p.Z <= b.Max.Z
}
