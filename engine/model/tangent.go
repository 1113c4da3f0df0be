package model

import "math"

// ComputeTangents fills in the Tangent and Bitangent fields of the given
// vertices from triangle positions and UVs. For each triangle the tangent
// frame is solved from the edge and UV deltas and assigned to all three
// vertices; vertices shared between triangles keep the frame of the last
// triangle that touched them. Triangles with degenerate UVs fall back to an
// arbitrary frame perpendicular to the vertex normal.
//
// Parameters:
//   - vertices: the vertex slice to update in place
//   - indices: triangle indices into vertices, length must be a multiple of 3
func ComputeTangents(vertices []GPUModelVertex, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		v0, v1, v2 := &vertices[i0], &vertices[i1], &vertices[i2]

		e1 := [3]float32{
			v1.Position[0] - v0.Position[0],
			v1.Position[1] - v0.Position[1],
			v1.Position[2] - v0.Position[2],
		}
		e2 := [3]float32{
			v2.Position[0] - v0.Position[0],
			v2.Position[1] - v0.Position[1],
			v2.Position[2] - v0.Position[2],
		}
		du1 := [2]float32{v1.TexCoord[0] - v0.TexCoord[0], v1.TexCoord[1] - v0.TexCoord[1]}
		du2 := [2]float32{v2.TexCoord[0] - v0.TexCoord[0], v2.TexCoord[1] - v0.TexCoord[1]}

		det := du1[0]*du2[1] - du1[1]*du2[0]
		var tangent, bitangent [3]float32
		if absf(det) < 1e-8 {
			tangent, bitangent = fallbackFrame(v0.Normal)
		} else {
			r := 1.0 / det
			for k := 0; k < 3; k++ {
				tangent[k] = (e1[k]*du2[1] - e2[k]*du1[1]) * r
				bitangent[k] = (e2[k]*du1[0] - e1[k]*du2[0]) * r
			}
			tangent = normalize3v(tangent)
			bitangent = normalize3v(bitangent)
		}

		for _, v := range []*GPUModelVertex{v0, v1, v2} {
			v.Tangent = tangent
			v.Bitangent = bitangent
		}
	}
}

// fallbackFrame builds an arbitrary orthonormal tangent frame around a normal.
func fallbackFrame(normal [3]float32) (tangent, bitangent [3]float32) {
	n := normalize3v(normal)
	up := [3]float32{0, 1, 0}
	if absf(n[1]) > 0.99 {
		up = [3]float32{1, 0, 0}
	}
	tangent = normalize3v(cross3v(up, n))
	bitangent = cross3v(n, tangent)
	return tangent, bitangent
}

func cross3v(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize3v(v [3]float32) [3]float32 {
	lenSq := v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
	if lenSq < 1e-12 {
		return [3]float32{1, 0, 0}
	}
	inv := float32(1.0 / math.Sqrt(float64(lenSq)))
	return [3]float32{v[0] * inv, v[1] * inv, v[2] * inv}
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
