package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Y axis
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	// Should have Y component and W = cos(45deg)
	expectedW := float32(math.Cos(math.Pi / 4))
	expectedY := float32(math.Sin(math.Pi / 4))

	if math.Abs(float64(q.W-expectedW)) > 0.001 {
		t.Errorf("QuatFromAxisAngle W: expected %v, got %v", expectedW, q.W)
	}
	if math.Abs(float64(q.Y-expectedY)) > 0.001 {
		t.Errorf("QuatFromAxisAngle Y: expected %v, got %v", expectedY, q.Y)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/2))
	got := q.Rotate(Vec3{Z: 1})

	// +Z turned 90 degrees about +Y lands on +X
	if math.Abs(float64(got.X-1)) > 0.001 || math.Abs(float64(got.Z)) > 0.001 {
		t.Errorf("Rotate(+Z) = %v, want ~(1,0,0)", got)
	}
}

func TestQuatLookYaw(t *testing.T) {
	q := QuatLookYaw(Vec3{X: 1})
	got := q.Rotate(Vec3{Z: 1})
	if math.Abs(float64(got.X-1)) > 0.001 {
		t.Errorf("LookYaw(+X) should turn +Z to +X, got %v", got)
	}

	if QuatLookYaw(Vec3{Y: 1}) != QuatIdentity() {
		t.Error("vertical direction should give identity")
	}
}
