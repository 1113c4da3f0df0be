package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlane(t *testing.T) {
	vertices, indices := NewPlane(25, 10)
	require.Len(t, vertices, 4)
	require.Len(t, indices, 6)

	for _, v := range vertices {
		assert.Equal(t, [3]float32{0, 1, 0}, v.Normal)
		assert.Equal(t, float32(0), v.Position[1])
	}
	// UVs tile across the plane.
	assert.Equal(t, [2]float32{10, 10}, vertices[2].TexCoord)
}

func TestNewPlaneTangentFrame(t *testing.T) {
	vertices, _ := NewPlane(25, 10)

	// u increases with +x and v increases with +z, so the tangent frame
	// follows the world axes.
	for _, v := range vertices {
		assert.InDelta(t, 1.0, v.Tangent[0], 1e-5)
		assert.InDelta(t, 0.0, v.Tangent[1], 1e-5)
		assert.InDelta(t, 0.0, v.Tangent[2], 1e-5)
		assert.InDelta(t, 0.0, v.Bitangent[0], 1e-5)
		assert.InDelta(t, 1.0, v.Bitangent[2], 1e-5)
	}
}

func TestNewCube(t *testing.T) {
	vertices, indices := NewCube(0.5)
	require.Len(t, vertices, 24)
	require.Len(t, indices, 36)

	// Every face normal is axis-aligned and unit length, and the tangent
	// frame is perpendicular to it.
	for _, v := range vertices {
		lenSq := v.Normal[0]*v.Normal[0] + v.Normal[1]*v.Normal[1] + v.Normal[2]*v.Normal[2]
		assert.InDelta(t, 1.0, lenSq, 1e-5)

		dot := v.Tangent[0]*v.Normal[0] + v.Tangent[1]*v.Normal[1] + v.Tangent[2]*v.Normal[2]
		assert.InDelta(t, 0.0, dot, 1e-5)
	}

	assert.InDelta(t, 0.5*float32(1.7320508), ComputeBoundingRadius(vertices), 1e-4)
}

func TestNewCubeWinding(t *testing.T) {
	vertices, indices := NewCube(1)

	// Each triangle winds counter-clockwise when viewed from outside:
	// the geometric normal matches the stored face normal.
	for i := 0; i+2 < len(indices); i += 3 {
		v0 := vertices[indices[i]]
		v1 := vertices[indices[i+1]]
		v2 := vertices[indices[i+2]]
		e1 := [3]float32{v1.Position[0] - v0.Position[0], v1.Position[1] - v0.Position[1], v1.Position[2] - v0.Position[2]}
		e2 := [3]float32{v2.Position[0] - v0.Position[0], v2.Position[1] - v0.Position[1], v2.Position[2] - v0.Position[2]}
		n := cross3v(e1, e2)
		dot := n[0]*v0.Normal[0] + n[1]*v0.Normal[1] + n[2]*v0.Normal[2]
		assert.Greater(t, dot, float32(0))
	}
}

func TestNewQuad(t *testing.T) {
	vertices, indices := NewQuad()
	require.Len(t, vertices, 4)
	require.Len(t, indices, 6)

	// Unit extents in the XY plane, v=0 at the top edge.
	assert.Equal(t, [3]float32{-0.5, 0.5, 0}, vertices[3].Position)
	assert.Equal(t, [2]float32{0, 0}, vertices[3].TexCoord)
	assert.Equal(t, [2]float32{0, 1}, vertices[0].TexCoord)
}

func TestComputeTangentsDegenerateUVs(t *testing.T) {
	vertices := []GPUModelVertex{
		{Position: [3]float32{0, 0, 0}, TexCoord: [2]float32{0, 0}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{1, 0, 0}, TexCoord: [2]float32{0, 0}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 0}, Normal: [3]float32{0, 1, 0}},
	}
	ComputeTangents(vertices, []uint32{0, 1, 2})

	// Collapsed UVs fall back to a frame perpendicular to the normal.
	for _, v := range vertices {
		dot := v.Tangent[0]*v.Normal[0] + v.Tangent[1]*v.Normal[1] + v.Tangent[2]*v.Normal[2]
		assert.InDelta(t, 0.0, dot, 1e-5)
		lenSq := v.Tangent[0]*v.Tangent[0] + v.Tangent[1]*v.Tangent[1] + v.Tangent[2]*v.Tangent[2]
		assert.InDelta(t, 1.0, lenSq, 1e-5)
	}
}
