package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrustumContainsSphere(t *testing.T) {
	var proj, view, vp [16]float32
	Perspective(proj[:], float32(math.Pi/2), 1.0, 0.1, 100)
	LookAt(view[:], 0, 0, 10, 0, 0, 0, 0, 1, 0)
	Mul4(vp[:], proj[:], view[:])

	f := ExtractFrustumFromMatrix(vp[:])

	assert.True(t, f.ContainsSphere(0, 0, 0, 1), "sphere in front of the camera")
	assert.False(t, f.ContainsSphere(0, 0, 200, 1), "sphere behind the camera")
	assert.False(t, f.ContainsSphere(0, 0, -150, 1), "sphere past the far plane")
	assert.False(t, f.ContainsSphere(500, 0, 0, 1), "sphere far off to the side")

	// a large sphere overlapping the side plane still counts as visible
	assert.True(t, f.ContainsSphere(15, 0, 0, 20))
}

func TestFrustumPlanesNormalized(t *testing.T) {
	var proj, view, vp [16]float32
	Perspective(proj[:], float32(math.Pi/3), 16.0/9.0, 0.1, 100)
	LookAt(view[:], 5, 5, 5, 0, 0, 0, 0, 1, 0)
	Mul4(vp[:], proj[:], view[:])

	f := ExtractFrustumFromMatrix(vp[:])
	for i, p := range f.Planes {
		length := math.Sqrt(float64(p.Normal[0]*p.Normal[0] + p.Normal[1]*p.Normal[1] + p.Normal[2]*p.Normal[2]))
		assert.InDelta(t, 1.0, length, 1e-5, "plane %d", i)
	}
}
