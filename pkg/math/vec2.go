// Package math provides the small vector and matrix types shared by the
// terrain core and its callers.
package math

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}
