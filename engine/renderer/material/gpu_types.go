package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialParamsSource is the canonical WGSL definition of the MaterialParams struct.
// Matches GPUMaterialParams layout exactly (16 bytes, std430 aligned).
//
//go:embed assets/material_params.wgsl
var GPUMaterialParamsSource string

// GPUMaterialParams is the GPU-aligned uniform for mesh fragment shaders.
// The base color multiplies the sampled diffuse texel, so a plain white
// texture renders the material's flat color.
// Matches the WGSL MaterialParams struct layout exactly (see GPUMaterialParamsSource).
// Size: 16 bytes (one vec4<f32>, std430 aligned).
type GPUMaterialParams struct {
	BaseColor [4]float32 // offset 0: RGBA base color multiplied into the diffuse sample (16 bytes)
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.BaseColor[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.BaseColor[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.BaseColor[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.BaseColor[3]))
	return buf
}
