package model

// NewPlane builds a flat square plane on the XZ axis centered at the origin
// with its normal pointing up (+Y). UVs run from 0 to uvRepeat across the
// plane so textures can tile on large floors. Tangent frames are computed
// from the generated UVs.
//
// Parameters:
//   - halfExtent: half the edge length of the plane
//   - uvRepeat: number of texture repeats across the full plane
//
// Returns:
//   - []GPUModelVertex: 4 vertices with positions, UVs, normals and tangent frames
//   - []uint32: 6 indices forming 2 counter-clockwise triangles
func NewPlane(halfExtent, uvRepeat float32) ([]GPUModelVertex, []uint32) {
	h := halfExtent
	r := uvRepeat
	vertices := []GPUModelVertex{
		{Position: [3]float32{-h, 0, -h}, TexCoord: [2]float32{0, 0}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{-h, 0, h}, TexCoord: [2]float32{0, r}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{h, 0, h}, TexCoord: [2]float32{r, r}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{h, 0, -h}, TexCoord: [2]float32{r, 0}, Normal: [3]float32{0, 1, 0}},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	ComputeTangents(vertices, indices)
	return vertices, indices
}

// NewCube builds an axis-aligned cube centered at the origin with 4 unique
// vertices per face so every face carries its own flat normal and UVs.
// Tangent frames are computed from the generated UVs.
//
// Parameters:
//   - halfExtent: half the edge length of the cube
//
// Returns:
//   - []GPUModelVertex: 24 vertices with positions, UVs, normals and tangent frames
//   - []uint32: 36 indices forming 12 counter-clockwise triangles
func NewCube(halfExtent float32) ([]GPUModelVertex, []uint32) {
	h := halfExtent
	type face struct {
		normal  [3]float32
		corners [4][3]float32
	}
	faces := []face{
		// +Z (front)
		{[3]float32{0, 0, 1}, [4][3]float32{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		// -Z (back)
		{[3]float32{0, 0, -1}, [4][3]float32{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
		// +X (right)
		{[3]float32{1, 0, 0}, [4][3]float32{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		// -X (left)
		{[3]float32{-1, 0, 0}, [4][3]float32{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
		// +Y (top)
		{[3]float32{0, 1, 0}, [4][3]float32{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		// -Y (bottom)
		{[3]float32{0, -1, 0}, [4][3]float32{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	vertices := make([]GPUModelVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for fi, f := range faces {
		base := uint32(fi * 4)
		for ci := range f.corners {
			vertices = append(vertices, GPUModelVertex{
				Position: f.corners[ci],
				TexCoord: uvs[ci],
				Normal:   f.normal,
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	ComputeTangents(vertices, indices)
	return vertices, indices
}

// NewQuad builds a unit quad in the XY plane centered at the origin, facing
// +Z, for billboards and screen-space passes. UVs cover the full texture
// with v=0 at the top.
//
// Returns:
//   - []GPUSimpleVertex: 4 vertices with positions and UVs
//   - []uint32: 6 indices forming 2 counter-clockwise triangles
func NewQuad() ([]GPUSimpleVertex, []uint32) {
	vertices := []GPUSimpleVertex{
		{Position: [3]float32{-0.5, -0.5, 0}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{0.5, -0.5, 0}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{0.5, 0.5, 0}, TexCoord: [2]float32{1, 0}},
		{Position: [3]float32{-0.5, 0.5, 0}, TexCoord: [2]float32{0, 0}},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return vertices, indices
}
