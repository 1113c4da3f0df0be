package shading

// Shadow sampling parameters shared by the shaders and this reference.
const (
	// CubeShadowBias is subtracted from the fragment-to-light distance before
	// comparing against the stored cube-map distance.
	CubeShadowBias = 0.15
	// DirShadowBias is the depth bias for 2D shadow-map comparisons.
	DirShadowBias = 0.005
	// CubeSampleCount is the number of taps in the offset-disk PCF kernel.
	CubeSampleCount = len(cubeSampleOffsets)
)

// cubeSampleOffsets is the precomputed 20-direction sampling disk used to
// soften cube-map shadow edges. Directions cover the corners, edge midpoints
// and axis planes of a cube around the lookup vector.
var cubeSampleOffsets = [20]Vec3{
	{1, 1, 1}, {1, -1, 1}, {-1, -1, 1}, {-1, 1, 1},
	{1, 1, -1}, {1, -1, -1}, {-1, -1, -1}, {-1, 1, -1},
	{1, 1, 0}, {1, -1, 0}, {-1, -1, 0}, {-1, 1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, -1, -1}, {0, 1, -1},
}

// CubeDepthSampler returns the stored normalized distance ([0, 1], distance
// divided by the light's far plane) for a cube-map lookup direction.
type CubeDepthSampler func(dir Vec3) float32

// DepthMapSampler returns the stored depth at a 2D shadow-map texture
// coordinate in [0, 1] x [0, 1].
type DepthMapSampler func(u, v float32) float32

// CubeDiskRadius returns the PCF disk radius for a fragment at the given view
// distance. The disk widens with distance so far shadows blur more than near
// ones.
func CubeDiskRadius(viewDistance, farPlane float32) float32 {
	return (1 + viewDistance/farPlane) / 25.0
}

// CubeShadowFactor computes the soft shadow factor for a point light with a
// cube shadow map. Twenty taps are taken around the fragment-to-light vector,
// each compared against the fragment's true distance minus a bias, and the
// binary results are averaged into a continuous [0, 1] factor.
//
// The lookup vector's z component is negated before sampling to align the
// cube face convention with the coordinate system the depth pass rendered in.
//
// Parameters:
//   - sample: cube-map distance lookup
//   - fragPos: fragment position in world space
//   - lightPos: light position in world space
//   - viewPos: camera position in world space
//   - farPlane: far plane of the shadow projection
//   - shadowsEnabled: global shadow toggle; false forces a fully lit result
//
// Returns:
//   - float32: shadow factor in [0, 1], 0 = fully lit, 1 = fully shadowed
func CubeShadowFactor(sample CubeDepthSampler, fragPos, lightPos, viewPos Vec3, farPlane float32, shadowsEnabled bool) float32 {
	if !shadowsEnabled {
		return 0
	}

	fragToLight := fragPos.Sub(lightPos)
	currentDist := fragToLight.Length()
	viewDistance := viewPos.Sub(fragPos).Length()
	diskRadius := CubeDiskRadius(viewDistance, farPlane)

	var occluded float32
	for _, offset := range cubeSampleOffsets {
		dir := fragToLight.Add(offset.Scale(diskRadius))
		dir[2] = -dir[2]
		closest := sample(dir) * farPlane
		if currentDist-CubeShadowBias > closest {
			occluded++
		}
	}
	return occluded / float32(CubeSampleCount)
}

// DirectionalShadowFactor computes the soft shadow factor for a directional
// (or spot) light with a 2D shadow map. The fragment's light-clip-space
// position is perspective-divided, remapped to texture space with a y flip,
// and compared against a 3x3 PCF neighborhood.
//
// Fragments projecting outside the shadow map, or beyond the light frustum's
// far plane, are treated as unshadowed and return exactly 0.
//
// Parameters:
//   - sample: shadow-map depth lookup
//   - texelSize: size of one shadow-map texel in texture space (1 / resolution)
//   - clipX, clipY, clipZ, clipW: fragment position in light clip space
//   - shadowsEnabled: global shadow toggle; false forces a fully lit result
//
// Returns:
//   - float32: shadow factor in [0, 1], 0 = fully lit, 1 = fully shadowed
func DirectionalShadowFactor(sample DepthMapSampler, texelSize, clipX, clipY, clipZ, clipW float32, shadowsEnabled bool) float32 {
	if !shadowsEnabled {
		return 0
	}
	if clipW == 0 {
		return 0
	}

	projX := clipX / clipW
	projY := clipY / clipW
	projZ := clipZ / clipW

	u := projX*0.5 + 0.5
	v := 1 - (projY*0.5 + 0.5)
	if u < 0 || u > 1 || v < 0 || v > 1 || projZ > 1 {
		return 0
	}

	var occluded float32
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			tap := sample(u+float32(dx)*texelSize, v+float32(dy)*texelSize)
			if projZ-DirShadowBias > tap {
				occluded++
			}
		}
	}
	return occluded / 9.0
}
