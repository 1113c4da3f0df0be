package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/kanvas-go/common"
)

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
}

func TestGPUStructSizes(t *testing.T) {
	assert.Equal(t, 64, (&GPULights{}).Size())
	assert.Equal(t, 16, (&GPULightConfig{}).Size())
	assert.Equal(t, 80, (&GPUShadowFace{}).Size())
	assert.Equal(t, 80, (&GPUShadowData{}).Size())
}

func TestMarshalLightsLayout(t *testing.T) {
	lights := []Light{
		NewLight(LightTypePoint, WithPosition(-15, 12, 8), WithColor(1, 1, 1), WithCastsShadows(true)),
		NewLight(LightTypePoint, WithPosition(10, 10, 0), WithColor(0.5, 0.25, 1), WithIntensity(2)),
	}

	buf, err := MarshalLights(lights)
	require.NoError(t, err)
	require.Len(t, buf, 64)

	// slot 0 position with w = 1 for a point light
	assert.Equal(t, float32(-15), f32At(buf, 0))
	assert.Equal(t, float32(12), f32At(buf, 4))
	assert.Equal(t, float32(8), f32At(buf, 8))
	assert.Equal(t, float32(1), f32At(buf, 12))

	// slot 1 color is premultiplied by intensity
	assert.Equal(t, float32(1.0), f32At(buf, 48))
	assert.Equal(t, float32(0.5), f32At(buf, 52))
	assert.Equal(t, float32(2.0), f32At(buf, 56))
}

func TestMarshalLightsDirectional(t *testing.T) {
	dir := NewLight(LightTypeDirectional, WithDirection(0, -1, 0))
	buf, err := MarshalLights([]Light{dir})
	require.NoError(t, err)

	// directional slots store the negated direction with w = 0
	assert.Equal(t, float32(0), f32At(buf, 0))
	assert.Equal(t, float32(1), f32At(buf, 4))
	assert.Equal(t, float32(0), f32At(buf, 8))
	assert.Equal(t, float32(0), f32At(buf, 12))
}

func TestMarshalLightsDisabledSlotIsBlack(t *testing.T) {
	off := NewLight(LightTypePoint, WithColor(1, 1, 1), WithEnabled(false))
	buf, err := MarshalLights([]Light{off})
	require.NoError(t, err)
	for c := 0; c < 4; c++ {
		assert.Equal(t, float32(0), f32At(buf, 32+c*4))
	}
}

func TestMarshalLightsOverBudget(t *testing.T) {
	lights := []Light{
		NewLight(LightTypePoint),
		NewLight(LightTypePoint),
		NewLight(LightTypePoint),
	}
	_, err := MarshalLights(lights)
	assert.Error(t, err)
}

func TestGPULightConfigMarshal(t *testing.T) {
	cfg := GPULightConfig{ShadowsEnabled: 1}
	buf := cfg.Marshal()
	require.Len(t, buf, 16)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[4:8]))
}

func TestComputeCubeFacesFarPlanePacked(t *testing.T) {
	faces := ComputeCubeFaces([3]float32{1, 2, 3})
	for _, f := range faces {
		assert.Equal(t, float32(1), f.LightPosition[0])
		assert.Equal(t, float32(2), f.LightPosition[1])
		assert.Equal(t, float32(3), f.LightPosition[2])
		assert.Equal(t, CubeShadowFar, f.LightPosition[3])
	}
}

func TestComputeCubeFaceVPsProjectAlongAxes(t *testing.T) {
	lightPos := [3]float32{0, 5, 0}
	vps := ComputeCubeFaceVPs(lightPos)

	// a point 10 units along +x from the light must land at clip center with
	// positive depth in face 0 (+X) and behind the camera in face 1 (-X)
	x, y, z, w := common.TransformVec4(vps[0][:], lightPos[0]+10, lightPos[1], lightPos[2], 1)
	assert.InDelta(t, 0.0, float64(x/w), 1e-5)
	assert.InDelta(t, 0.0, float64(y/w), 1e-5)
	assert.Greater(t, z/w, float32(0))
	assert.Less(t, z/w, float32(1))

	_, _, _, w = common.TransformVec4(vps[1][:], lightPos[0]+10, lightPos[1], lightPos[2], 1)
	assert.Less(t, w, float32(0), "point behind the -X face camera")
}

func TestComputeCubeFaceVPsCoverAllDirections(t *testing.T) {
	lightPos := [3]float32{0, 0, 0}
	vps := ComputeCubeFaceVPs(lightPos)

	probes := [][3]float32{
		{10, 0, 0}, {-10, 0, 0},
		{0, 10, 0}, {0, -10, 0},
		{0, 0, -10}, {0, 0, 10},
	}
	for i, p := range probes {
		x, y, z, w := common.TransformVec4(vps[i][:], p[0], p[1], p[2], 1)
		require.Greater(t, w, float32(0), "face %d", i)
		assert.InDelta(t, 0.0, float64(x/w), 1e-5, "face %d", i)
		assert.InDelta(t, 0.0, float64(y/w), 1e-5, "face %d", i)
		assert.Greater(t, z/w, float32(0), "face %d", i)
	}
}

func TestGPUShadowFaceMarshal(t *testing.T) {
	f := GPUShadowFace{LightPosition: [4]float32{1, 2, 3, CubeShadowFar}}
	common.Identity(f.LightVP[:])
	buf := f.Marshal()
	require.Len(t, buf, 80)
	assert.Equal(t, float32(1), f32At(buf, 0))
	assert.Equal(t, float32(1), f32At(buf, 20))
	assert.Equal(t, float32(3), f32At(buf, 72))
	assert.Equal(t, CubeShadowFar, f32At(buf, 76))
}

func TestDirectionalLightVPCentersFrustum(t *testing.T) {
	var s GPUShadowData
	s.ComputeDirectionalLightVP([3]float32{0, -1, 0}, 0, 0, 0, DefaultShadowHalfExtent, DefaultShadowNear, DefaultShadowFar)

	// the frustum center projects to the middle of the map
	x, y, _, w := common.TransformVec4(s.LightVP[:], 0, 0, 0, 1)
	require.NotZero(t, w)
	assert.InDelta(t, 0.0, float64(x/w), 1e-4)
	assert.InDelta(t, 0.0, float64(y/w), 1e-4)

	// a point outside the half-extent falls off the map
	x, y, _, w = common.TransformVec4(s.LightVP[:], DefaultShadowHalfExtent*2, 0, 0, 1)
	outside := absF32(x/w) > 1 || absF32(y/w) > 1
	assert.True(t, outside)
}

func TestComputeNormalBias(t *testing.T) {
	var s GPUShadowData
	s.ComputeNormalBias(10, 3, 1000)
	assert.InDelta(t, 0.06, float64(s.NormalBias), 1e-6)
}

func TestLightDefaultsAndSetters(t *testing.T) {
	l := NewLight(LightTypePoint)
	assert.True(t, l.Enabled())
	assert.False(t, l.CastsShadows())
	assert.Equal(t, [3]float32{1, 1, 1}, l.Color())
	assert.Equal(t, float32(1), l.Intensity())

	l.SetDirection(0, 0, 10)
	assert.Equal(t, [3]float32{0, 0, 1}, l.Direction())

	l.SetCastsShadows(true)
	assert.True(t, l.CastsShadows())
}
