package shading

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeNormal(t *testing.T) {
	// flat normal-map texel (0.5, 0.5, 1) decodes to +z
	n := DecodeNormal(0.5, 0.5, 1.0)
	assert.InDelta(t, 0.0, n[0], 1e-5)
	assert.InDelta(t, 0.0, n[1], 1e-5)
	assert.InDelta(t, 1.0, n[2], 1e-5)

	// mid-gray red channel decodes negative x
	n = DecodeNormal(0.0, 0.5, 0.5)
	assert.Less(t, n[0], float32(0))
	assert.InDelta(t, 1.0, n.Length(), 1e-5)
}

func TestTangentBasisRoundTrip(t *testing.T) {
	b := TangentBasis{
		Tangent:   Vec3{1, 0, 0},
		Bitangent: Vec3{0, 0, -1},
		Normal:    Vec3{0, 1, 0},
	}
	v := b.ToTangent(Vec3{3, 5, -2})
	assert.Equal(t, Vec3{3, 2, 5}, v)

	// basis vectors map to the canonical axes
	assert.Equal(t, Vec3{1, 0, 0}, b.ToTangent(b.Tangent))
	assert.Equal(t, Vec3{0, 1, 0}, b.ToTangent(b.Bitangent))
	assert.Equal(t, Vec3{0, 0, 1}, b.ToTangent(b.Normal))
}

// A head-on white point light with no shadow must produce the analytic
// ambient + diffuse + specular value: dot(n, l) = 1 and the half vector
// equals the normal, so 0.1 + 1.0 + 0.5 per channel.
func TestBlinnPhongHeadOn(t *testing.T) {
	normal := Vec3{0, 0, 1}
	lightDir := Vec3{0, 0, 1}
	viewDir := Vec3{0, 0, 1}
	white := Vec3{1, 1, 1}

	c := BlinnPhong(normal, lightDir, viewDir, white, white, 0)
	want := float32(AmbientStrength + 1.0 + SpecularStrength)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want, c[i], 1e-5)
	}
}

func TestBlinnPhongBackFacing(t *testing.T) {
	// light behind the surface leaves only the ambient term
	c := BlinnPhong(Vec3{0, 0, 1}, Vec3{0, 0, -1}, Vec3{0, 0, 1}, Vec3{1, 1, 1}, Vec3{1, 1, 1}, 0)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, AmbientStrength, c[i], 1e-5)
	}
}

func TestBlinnPhongFullShadowKeepsAmbient(t *testing.T) {
	c := BlinnPhong(Vec3{0, 0, 1}, Vec3{0, 0, 1}, Vec3{0, 0, 1}, Vec3{1, 1, 1}, Vec3{1, 1, 1}, 1)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, AmbientStrength, c[i], 1e-5)
	}
}

func TestBlinnPhongGrazingDiffuse(t *testing.T) {
	// 45 degree light angle gives diffuse = cos(45)
	lightDir := Vec3{1, 0, 1}.Normalize()
	c := BlinnPhong(Vec3{0, 0, 1}, lightDir, Vec3{0, 0, 1}, Vec3{1, 1, 1}, Vec3{1, 1, 1}, 1)
	// shadowed, so only ambient survives regardless of angle
	assert.InDelta(t, AmbientStrength, c[0], 1e-5)

	c = BlinnPhong(Vec3{0, 0, 1}, lightDir, Vec3{0, 0, 1}, Vec3{1, 1, 1}, Vec3{1, 1, 1}, 0)
	cos45 := float32(math.Sqrt2 / 2)
	half := lightDir.Add(Vec3{0, 0, 1}).Normalize()
	spec := float32(math.Pow(float64(half[2]), Shininess)) * SpecularStrength
	assert.InDelta(t, AmbientStrength+cos45+spec, c[0], 1e-5)
}

func TestAlphaCutoffBoundary(t *testing.T) {
	assert.False(t, AlphaCutoff(0.5), "alpha of exactly 0.5 survives")
	assert.True(t, AlphaCutoff(0.49))
	assert.False(t, AlphaCutoff(1.0))
	assert.True(t, AlphaCutoff(0.0))
}

func TestLinearizeDepth(t *testing.T) {
	near, far := float32(0.1), float32(100.0)

	// the near plane stores depth 0, the far plane depth 1
	assert.InDelta(t, near, LinearizeDepth(0, near, far), 1e-4)
	assert.InDelta(t, far, LinearizeDepth(1, near, far), 1e-2)

	// linearized depth grows monotonically
	prev := float32(0)
	for d := float32(0); d <= 1.0; d += 0.1 {
		lin := LinearizeDepth(d, near, far)
		assert.Greater(t, lin, prev)
		prev = lin
	}
}

func TestCubeShadowDisabledReturnsZero(t *testing.T) {
	allOccluded := func(dir Vec3) float32 { return 0 }
	got := CubeShadowFactor(allOccluded, Vec3{0, 0, 0}, Vec3{0, 10, 0}, Vec3{0, 0, 5}, 100, false)
	assert.Equal(t, float32(0), got)
}

func TestCubeShadowFullyLit(t *testing.T) {
	// every tap reports the maximum distance, so nothing occludes
	farLit := func(dir Vec3) float32 { return 1.0 }
	got := CubeShadowFactor(farLit, Vec3{0, 0, 0}, Vec3{0, 10, 0}, Vec3{0, 0, 5}, 100, true)
	assert.Equal(t, float32(0), got)
}

func TestCubeShadowFullyOccluded(t *testing.T) {
	// every tap reports an occluder right at the light
	nearOccluder := func(dir Vec3) float32 { return 0.0 }
	got := CubeShadowFactor(nearOccluder, Vec3{0, 0, 0}, Vec3{0, 10, 0}, Vec3{0, 0, 5}, 100, true)
	assert.Equal(t, float32(1), got)
}

func TestCubeShadowIsMeanOfTaps(t *testing.T) {
	// occlude taps whose flipped lookup direction leans +x; the result must be
	// exactly k/20 for the k occluded taps
	var calls int
	half := func(dir Vec3) float32 {
		calls++
		if dir[0] > 0 {
			return 0.0
		}
		return 1.0
	}
	got := CubeShadowFactor(half, Vec3{0, 0, 0}, Vec3{0, 10, 0}, Vec3{0, 0, 5}, 100, true)
	assert.Equal(t, CubeSampleCount, calls)
	frac := got * float32(CubeSampleCount)
	assert.InDelta(t, math.Round(float64(frac)), float64(frac), 1e-5, "factor must be a whole number of taps")
	assert.Greater(t, got, float32(0))
	assert.Less(t, got, float32(1))
}

func TestCubeShadowLookupZFlipped(t *testing.T) {
	// fragment sits on the light's +z side; every lookup must arrive with a
	// negative z after the axis correction
	sampler := func(dir Vec3) float32 {
		assert.Less(t, dir[2], float32(0))
		return 1.0
	}
	CubeShadowFactor(sampler, Vec3{0, 0, 50}, Vec3{0, 0, 0}, Vec3{0, 0, 60}, 100, true)
}

func TestCubeDiskRadiusGrowsWithDistance(t *testing.T) {
	near := CubeDiskRadius(1, 100)
	far := CubeDiskRadius(90, 100)
	assert.Greater(t, far, near)
	assert.InDelta(t, 1.0/25.0, CubeDiskRadius(0, 100), 1e-6)
}

func TestDirectionalShadowOutOfBounds(t *testing.T) {
	alwaysOccluded := func(u, v float32) float32 { return 0 }
	texel := float32(1.0 / 1024.0)

	// projected x outside [-1, 1]
	got := DirectionalShadowFactor(alwaysOccluded, texel, 2.0, 0, 0.5, 1, true)
	assert.Equal(t, float32(0), got)

	// projected y outside
	got = DirectionalShadowFactor(alwaysOccluded, texel, 0, -3.0, 0.5, 1, true)
	assert.Equal(t, float32(0), got)

	// depth beyond the light frustum
	got = DirectionalShadowFactor(alwaysOccluded, texel, 0, 0, 1.5, 1, true)
	assert.Equal(t, float32(0), got)
}

func TestDirectionalShadowDisabledReturnsZero(t *testing.T) {
	alwaysOccluded := func(u, v float32) float32 { return 0 }
	got := DirectionalShadowFactor(alwaysOccluded, 1.0/1024.0, 0, 0, 0.5, 1, false)
	assert.Equal(t, float32(0), got)
}

func TestDirectionalShadowPCFMean(t *testing.T) {
	texel := float32(1.0 / 1024.0)

	// all nine taps occluded
	got := DirectionalShadowFactor(func(u, v float32) float32 { return 0 }, texel, 0, 0, 0.5, 1, true)
	assert.Equal(t, float32(1), got)

	// all nine taps lit
	got = DirectionalShadowFactor(func(u, v float32) float32 { return 1 }, texel, 0, 0, 0.5, 1, true)
	assert.Equal(t, float32(0), got)

	// occlude only taps left of center: exactly 3 of 9
	got = DirectionalShadowFactor(func(u, v float32) float32 {
		if u < 0.5 {
			return 0
		}
		return 1
	}, texel, 0, 0, 0.5, 1, true)
	assert.InDelta(t, 3.0/9.0, got, 1e-6)
}

// A flat surface directly facing its light stores its own depth in the map,
// so the biased comparison never reports occlusion.
func TestDirectionalShadowFlatSurfaceUnshadowed(t *testing.T) {
	depth := float32(0.5)
	selfDepth := func(u, v float32) float32 { return depth }
	got := DirectionalShadowFactor(selfDepth, 1.0/1024.0, 0, 0, depth, 1, true)
	assert.Equal(t, float32(0), got)
}

func TestCubeShadowFlatSurfaceUnshadowed(t *testing.T) {
	lightPos := Vec3{0, 10, 0}
	fragPos := Vec3{0, 0, 0}
	trueDist := fragPos.Sub(lightPos).Length()
	far := float32(100.0)

	// the map stores the surface's own distance in every direction
	selfDist := func(dir Vec3) float32 { return trueDist / far }
	got := CubeShadowFactor(selfDist, fragPos, lightPos, Vec3{0, 5, 5}, far, true)
	assert.Equal(t, float32(0), got)
}
