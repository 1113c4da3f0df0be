// package shading holds the CPU-side reference implementation of the lighting
// math used by the WGSL shaders. The renderer never calls into this package at
// draw time; it exists so the lighting and shadow contracts have a single
// testable definition that the shader sources mirror.
package shading

import "math"

// Fixed Blinn-Phong terms shared by every lit shader variant.
const (
	// AmbientStrength scales the light color for the ambient term.
	AmbientStrength = 0.1
	// SpecularStrength scales the specular highlight.
	SpecularStrength = 0.5
	// Shininess is the specular exponent.
	Shininess = 32.0
	// AlphaCutoffThreshold is the discard boundary for alpha-tested passes.
	AlphaCutoffThreshold = 0.5
)

// Vec3 is a plain 3-component vector used by the reference shading math.
type Vec3 [3]float32

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }

// Scale returns v * s.
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }

// MulComp returns the component-wise product of v and o.
func (v Vec3) MulComp(o Vec3) Vec3 { return Vec3{v[0] * o[0], v[1] * o[1], v[2] * o[2]} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] }

// Cross returns the cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Normalize returns v scaled to unit length, or v unchanged when zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1.0 / l)
}

// TangentBasis is an orthonormal tangent-space frame at a surface point.
// Transforming with it moves world-space vectors into tangent space, the
// space the normal map is authored in.
type TangentBasis struct {
	Tangent   Vec3
	Bitangent Vec3
	Normal    Vec3
}

// ToTangent transforms a world-space vector into tangent space. For an
// orthonormal frame this is multiplication by the transpose of the TBN matrix.
//
// Parameters:
//   - v: world-space vector or position
//
// Returns:
//   - Vec3: the vector expressed in tangent space
func (b TangentBasis) ToTangent(v Vec3) Vec3 {
	return Vec3{v.Dot(b.Tangent), v.Dot(b.Bitangent), v.Dot(b.Normal)}
}

// DecodeNormal remaps a normal-map texel from [0, 1] storage range to a unit
// direction in [-1, 1] (n * 2 - 1, then normalized).
//
// Parameters:
//   - r, g, b: sampled texel channels in [0, 1]
//
// Returns:
//   - Vec3: the decoded unit normal
func DecodeNormal(r, g, b float32) Vec3 {
	return Vec3{r*2 - 1, g*2 - 1, b*2 - 1}.Normalize()
}

// BlinnPhong computes the contribution of a single light using the fixed
// ambient/diffuse/specular terms shared by all lit shader variants:
//
//	ambient + (1 - shadow) * (diffuse + specular), modulated by objectColor
//
// All direction vectors must be unit length and expressed in the same space
// (tangent space in the shaders).
//
// Parameters:
//   - normal: surface normal
//   - lightDir: direction from the fragment towards the light
//   - viewDir: direction from the fragment towards the camera
//   - lightColor: RGB light color
//   - objectColor: RGB albedo sample
//   - shadow: shadow factor in [0, 1], 0 = fully lit
//
// Returns:
//   - Vec3: the shaded RGB contribution of this light
func BlinnPhong(normal, lightDir, viewDir, lightColor, objectColor Vec3, shadow float32) Vec3 {
	ambient := lightColor.Scale(AmbientStrength)

	diff := normal.Dot(lightDir)
	if diff < 0 {
		diff = 0
	}
	diffuse := lightColor.Scale(diff)

	half := lightDir.Add(viewDir).Normalize()
	spec := normal.Dot(half)
	if spec < 0 {
		spec = 0
	}
	spec = float32(math.Pow(float64(spec), Shininess))
	specular := lightColor.Scale(spec * SpecularStrength)

	lit := diffuse.Add(specular).Scale(1 - shadow)
	return ambient.Add(lit).MulComp(objectColor)
}

// AlphaCutoff reports whether an alpha-tested fragment must be discarded.
// The boundary is strict: alpha of exactly the threshold survives.
//
// Parameters:
//   - alpha: sampled alpha channel in [0, 1]
//
// Returns:
//   - bool: true when the fragment is discarded
func AlphaCutoff(alpha float32) bool {
	return alpha < AlphaCutoffThreshold
}

// LinearizeDepth converts a non-linear depth-buffer sample back to a linear
// view-space distance:
//
//	z_ndc = depth*2 - 1
//	linear = 2*near*far / (far + near - z_ndc*(far - near))
//
// Display code normalizes the result by far to get a [0, 1] grayscale value.
//
// Parameters:
//   - depth: depth-buffer sample in [0, 1]
//   - near, far: clip planes of the projection that produced the sample
//
// Returns:
//   - float32: linear view-space distance
func LinearizeDepth(depth, near, far float32) float32 {
	zNDC := depth*2 - 1
	return (2 * near * far) / (far + near - zNDC*(far-near))
}
