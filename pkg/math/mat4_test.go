package math

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

const tol = 1e-4

func assertMatEqual(t *testing.T, want mgl32.Mat4, got Mat4) {
	t.Helper()
	assertMatEqualDelta(t, want, got, tol)
}

func assertMatEqualDelta(t *testing.T, want mgl32.Mat4, got Mat4, delta float64) {
	t.Helper()
	for i := 0; i < 16; i++ {
		assert.InDelta(t, want[i], got[i], delta, "element %d", i)
	}
}

func TestPerspectiveMatchesMathGL(t *testing.T) {
	fov := float32(math32.Pi / 4)
	got := Perspective(fov, 16.0/9.0, 0.1, 1000)
	want := mgl32.Perspective(fov, 16.0/9.0, 0.1, 1000)
	assertMatEqual(t, want, got)
}

func TestLookAtMatchesMathGL(t *testing.T) {
	eye := Vec3{10, 25, -40}
	center := Vec3{64, 0, 64}
	got := LookAt(eye, center, Up)
	want := mgl32.LookAtV(
		mgl32.Vec3{eye.X, eye.Y, eye.Z},
		mgl32.Vec3{center.X, center.Y, center.Z},
		mgl32.Vec3{0, 1, 0},
	)
	assertMatEqual(t, want, got)
}

func TestMulMatchesMathGL(t *testing.T) {
	proj := Perspective(1.0, 1.5, 1, 500)
	view := LookAt(Vec3{0, 5, 5}, Vec3{}, Up)

	mp := mgl32.Mat4(proj)
	mv := mgl32.Mat4(view)
	assertMatEqual(t, mp.Mul4(mv), proj.Mul(view))
}

func TestMulVec4MatchesMathGL(t *testing.T) {
	m := Perspective(1.0, 1.5, 1, 500).Mul(LookAt(Vec3{0, 5, 5}, Vec3{}, Up))
	got := m.MulVec4(Vec4{1, 2, 3, 1})
	want := mgl32.Mat4(m).Mul4x1(mgl32.Vec4{1, 2, 3, 1})
	for i := 0; i < 4; i++ {
		assert.InDelta(t, want[i], got[i], tol, "component %d", i)
	}
}

func TestRow(t *testing.T) {
	// Column-major: the last column holds the translation.
	m := Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		5, 6, 7, 1,
	}
	assert.Equal(t, Vec4{1, 0, 0, 5}, m.Row(0))
	assert.Equal(t, Vec4{0, 1, 0, 6}, m.Row(1))
	assert.Equal(t, Vec4{0, 0, 1, 7}, m.Row(2))
	assert.Equal(t, Vec4{0, 0, 0, 1}, m.Row(3))
}

func TestInverseMatchesMathGL(t *testing.T) {
	view := LookAt(Vec3{10, 25, -40}, Vec3{64, 0, 64}, Up)
	proj := Perspective(math32.Pi/3, 4.0/3.0, 0.5, 500)
	vp := proj.Mul(view)

	got, ok := vp.Inverse()
	assert.True(t, ok)
	want := mgl32.Mat4(vp).Inv()
	assertMatEqualDelta(t, want, got, 1e-3)

	assertMatEqualDelta(t, mgl32.Ident4(), got.Mul(vp), 1e-3)
}

func TestInverseSingular(t *testing.T) {
	_, ok := Mat4{}.Inverse()
	assert.False(t, ok)
}
