package light

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/kanvas-go/common"
)

// MaxLights is the number of light slots in the GPU light uniform. The lit
// shaders loop over exactly this many slots; unused or disabled slots marshal
// as black so they contribute nothing.
const MaxLights = 2

// GPULights is the GPU-aligned representation of all light slots evaluated by
// the lit fragment shaders. Positions and colors are stored as vec4 so each
// array element lands on a 16-byte boundary, matching the WGSL uniform layout.
// Size: 64 bytes.
//
// Layout:
//
//	array<vec4<f32>, 2> positions (32 bytes, offset  0)
//	array<vec4<f32>, 2> colors    (32 bytes, offset 32)
//
// A position's w component is 1 for point lights and 0 for directional
// lights, where xyz then holds the negated light direction.
type GPULights struct {
	Positions [MaxLights][4]float32
	Colors    [MaxLights][4]float32
}

// Size returns the size of the GPULights struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPULights) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULights struct into a byte buffer suitable for GPU
// uniform upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULights) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := 0
	for i := 0; i < MaxLights; i++ {
		for c := 0; c < 4; c++ {
			binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(g.Positions[i][c]))
			off += 4
		}
	}
	for i := 0; i < MaxLights; i++ {
		for c := 0; c < 4; c++ {
			binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(g.Colors[i][c]))
			off += 4
		}
	}
	return buf
}

// MarshalLights packs a slice of lights into the fixed GPULights uniform.
// Colors are pre-multiplied by intensity. Disabled lights occupy their slot
// with a black color so slot indices stay stable across toggles.
//
// Parameters:
//   - lights: the lights to pack, at most MaxLights of them
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
//   - error: error when len(lights) exceeds MaxLights
func MarshalLights(lights []Light) ([]byte, error) {
	if len(lights) > MaxLights {
		return nil, fmt.Errorf("light count %d exceeds GPU budget of %d", len(lights), MaxLights)
	}

	var g GPULights
	for i, l := range lights {
		pos := l.Position()
		if l.Type() == LightTypeDirectional {
			dir := l.Direction()
			g.Positions[i] = [4]float32{-dir[0], -dir[1], -dir[2], 0}
		} else {
			g.Positions[i] = [4]float32{pos[0], pos[1], pos[2], 1}
		}
		if l.Enabled() {
			col := l.Color()
			in := l.Intensity()
			g.Colors[i] = [4]float32{col[0] * in, col[1] * in, col[2] * in, 1}
		}
	}
	return g.Marshal(), nil
}

// GPULightConfig is the GPU-aligned light configuration uniform read by the
// lit fragment shaders. Size: 16 bytes.
type GPULightConfig struct {
	ShadowsEnabled uint32     // offset 0: 1 = sample shadow maps, 0 = force factor to zero
	_pad           [3]uint32  // offset 4: padding to 16-byte alignment
}

// Size returns the size of the GPULightConfig struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (c *GPULightConfig) Size() int {
	return int(unsafe.Sizeof(*c))
}

// Marshal serializes the GPULightConfig struct into a byte buffer suitable for
// GPU uniform upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (c *GPULightConfig) Marshal() []byte {
	buf := make([]byte, c.Size())
	binary.LittleEndian.PutUint32(buf[0:4], c.ShadowsEnabled)
	return buf
}

// GPUShadowFace is the per-face uniform for the cube shadow depth pass. One
// instance exists per cube face per shadow-casting light, uploaded at dynamic
// offsets of ShadowFaceUniformStride bytes. Size: 80 bytes.
//
// Layout:
//
//	mat4x4<f32> light_vp  (64 bytes, offset  0)
//	vec4<f32>   light_pos (16 bytes, offset 64), w holds the far plane
type GPUShadowFace struct {
	LightVP       [16]float32
	LightPosition [4]float32
}

// Size returns the size of the GPUShadowFace struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (f *GPUShadowFace) Size() int {
	return int(unsafe.Sizeof(*f))
}

// Marshal serializes the GPUShadowFace struct into a byte buffer suitable for
// GPU uniform upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload
func (f *GPUShadowFace) Marshal() []byte {
	buf := make([]byte, f.Size())
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(f.LightVP[i]))
	}
	for c := 0; c < 4; c++ {
		binary.LittleEndian.PutUint32(buf[64+c*4:68+c*4], math.Float32bits(f.LightPosition[c]))
	}
	return buf
}

// cubeFaceTargets holds the look direction and up vector for each cube face,
// in the +X, -X, +Y, -Y, -Z, +Z order the depth pass renders them.
var cubeFaceTargets = [ShadowFaceCount][2][3]float32{
	{{1, 0, 0}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 1, 0}},
	{{0, 1, 0}, {0, 0, 1}},
	{{0, -1, 0}, {0, 0, -1}},
	{{0, 0, -1}, {0, 1, 0}},
	{{0, 0, 1}, {0, 1, 0}},
}

// ComputeCubeFaceVPs builds the six view-projection matrices for a point
// light's cube shadow pass. Each face uses a 90 degree perspective projection
// from CubeShadowNear to CubeShadowFar.
//
// Parameters:
//   - lightPos: world-space light position
//
// Returns:
//   - [ShadowFaceCount][16]float32: one column-major VP matrix per face
func ComputeCubeFaceVPs(lightPos [3]float32) [ShadowFaceCount][16]float32 {
	var proj [16]float32
	common.Perspective(proj[:], float32(math.Pi/2), 1.0, CubeShadowNear, CubeShadowFar)

	var out [ShadowFaceCount][16]float32
	for i, face := range cubeFaceTargets {
		dir, up := face[0], face[1]
		var view [16]float32
		common.LookAt(view[:],
			lightPos[0], lightPos[1], lightPos[2],
			lightPos[0]+dir[0], lightPos[1]+dir[1], lightPos[2]+dir[2],
			up[0], up[1], up[2],
		)
		common.Mul4(out[i][:], proj[:], view[:])
	}
	return out
}

// ComputeCubeFaces builds the full per-face uniform set for a point light's
// cube shadow pass, with the far plane packed into light_pos.w.
//
// Parameters:
//   - lightPos: world-space light position
//
// Returns:
//   - [ShadowFaceCount]GPUShadowFace: one uniform per face
func ComputeCubeFaces(lightPos [3]float32) [ShadowFaceCount]GPUShadowFace {
	vps := ComputeCubeFaceVPs(lightPos)
	var out [ShadowFaceCount]GPUShadowFace
	for i := range out {
		out[i].LightVP = vps[i]
		out[i].LightPosition = [4]float32{lightPos[0], lightPos[1], lightPos[2], CubeShadowFar}
	}
	return out
}

// GPUShadowData is the GPU-aligned representation of directional shadow data
// read by the lit fragment shader. Size: 80 bytes.
//
// Layout:
//
//	mat4x4<f32> light_vp       (64 bytes, offset 0)
//	vec2<f32>   texel_size     ( 8 bytes, offset 64)
//	f32         bias           ( 4 bytes, offset 72)
//	f32         normal_bias    ( 4 bytes, offset 76)
type GPUShadowData struct {
	LightVP    [16]float32 // orthographic view-projection from light's perspective
	TexelSize  [2]float32  // 1.0 / shadow_map_resolution for PCF offset calculations
	Bias       float32     // depth comparison bias to reduce shadow acne
	NormalBias float32     // world-space normal-offset distance for shadow lookup
}

// Size returns the size of the GPUShadowData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (s *GPUShadowData) Size() int {
	return int(unsafe.Sizeof(*s))
}

// ComputeDirectionalLightVP builds an orthographic view-projection matrix for a
// directional light's shadow pass and stores it in the receiver's LightVP field.
// The frustum is centered on the provided center position (typically the camera
// position) and aligned to look along the light's direction.
//
// Parameters:
//   - lightDir: normalized direction the light points (from light toward scene)
//   - centerX, centerY, centerZ: world-space center of the shadow frustum
//   - halfExtent: half-size of the orthographic frustum in world units
//   - near: near plane distance
//   - far: far plane distance
func (s *GPUShadowData) ComputeDirectionalLightVP(lightDir [3]float32, centerX, centerY, centerZ, halfExtent, near, far float32) {
	// Position the "eye" behind the center, opposite the light direction,
	// so we look from behind the scene toward the lit area.
	eyeX := centerX - lightDir[0]*far*0.5
	eyeY := centerY - lightDir[1]*far*0.5
	eyeZ := centerZ - lightDir[2]*far*0.5

	// Choose a stable up vector that isn't parallel to the light direction.
	// If the light points nearly straight up or down, use X-axis as up.
	upX, upY, upZ := float32(0), float32(1), float32(0)
	if absF32(lightDir[1]) > 0.99 {
		upX, upY, upZ = 1, 0, 0
	}

	var view [16]float32
	common.LookAt(view[:],
		eyeX, eyeY, eyeZ,
		centerX, centerY, centerZ,
		upX, upY, upZ,
	)

	var proj [16]float32
	common.Ortho(proj[:], -halfExtent, halfExtent, -halfExtent, halfExtent, near, far)

	common.Mul4(s.LightVP[:], proj[:], view[:])
}

// ComputeNormalBias derives the world-space normal-offset bias from the shadow
// map parameters and stores it in the receiver's NormalBias field. The result is
// the distance (in world units) that fragment positions are shifted along their
// surface normal before projecting into light clip space. This prevents
// self-shadowing on concave geometry.
//
// Parameters:
//   - halfExtent: orthographic frustum half-size in world units
//   - scale: multiplier on the per-texel world size (typically 2.0–4.0)
//   - resolution: shadow map resolution in texels (width and height)
func (s *GPUShadowData) ComputeNormalBias(halfExtent, scale float32, resolution int) {
	texelWorldSize := 2.0 * halfExtent / float32(resolution)
	s.NormalBias = texelWorldSize * scale
}

// Marshal serializes the GPUShadowData struct into a byte buffer suitable for
// GPU uniform upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload
func (s *GPUShadowData) Marshal() []byte {
	buf := make([]byte, 80)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(s.LightVP[i]))
	}
	binary.LittleEndian.PutUint32(buf[64:68], math.Float32bits(s.TexelSize[0]))
	binary.LittleEndian.PutUint32(buf[68:72], math.Float32bits(s.TexelSize[1]))
	binary.LittleEndian.PutUint32(buf[72:76], math.Float32bits(s.Bias))
	binary.LittleEndian.PutUint32(buf[76:80], math.Float32bits(s.NormalBias))
	return buf
}

// absF32 returns the absolute value of a float32.
func absF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
