// Package math provides the small vector and box types shared by the terrain and flight code.
package math

import "math"

// Vec2 is a 2D vector. Ground-plane vectors store world X in X and world Z in Y.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// IsZero reports whether both components are exactly zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Normalize returns a unit vector, or the zero vector when the length is below Epsilon.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l < Epsilon {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// ClampLength scales v down uniformly so its length does not exceed max.
func (v Vec2) ClampLength(max float32) Vec2 {
	l := v.Length()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float32 {
	return v.Sub(other).Length()
}
