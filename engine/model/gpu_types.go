package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/kanvas-go/common"
)

// GPUModelVertexSource is the canonical WGSL definition of the VertexInput struct for lit mesh pipelines.
// Matches GPUModelVertex layout exactly (56 bytes, tightly packed).
//
//go:embed assets/model_vertex.wgsl
var GPUModelVertexSource string

// GPUModelVertex is the GPU-aligned representation of a single mesh vertex for
// lit, normal-mapped models. The tangent and bitangent complete the per-vertex
// tangent-space frame used by the normal-mapping shaders.
// Matches the WGSL VertexInput struct layout exactly (see GPUModelVertexSource).
// Size: 56 bytes (tightly packed, shader locations 0-4).
type GPUModelVertex struct {
	Position  [3]float32 // offset  0: vertex position in model space (12 bytes)
	TexCoord  [2]float32 // offset 12: UV texture coordinate (8 bytes)
	Normal    [3]float32 // offset 20: vertex normal for lighting (12 bytes)
	Tangent   [3]float32 // offset 32: tangent along increasing u (12 bytes)
	Bitangent [3]float32 // offset 44: bitangent along increasing v (12 bytes)
}

// Size returns the size of the GPUModelVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUModelVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 56-byte buffer ready for GPU upload.
func (g *GPUModelVertex) Marshal() []byte {
	buf := make([]byte, 56)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.TexCoord[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Normal[0]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Normal[1]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Normal[2]))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.Tangent[0]))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.Tangent[1]))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(g.Tangent[2]))
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.Bitangent[0]))
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.Bitangent[1]))
	binary.LittleEndian.PutUint32(buf[52:56], math.Float32bits(g.Bitangent[2]))
	return buf
}

// GPUSimpleVertexSource is the canonical WGSL definition of the VertexInput struct for unlit pipelines
// (billboards and the depth visualization quad).
// Matches GPUSimpleVertex layout exactly (20 bytes, tightly packed).
//
//go:embed assets/simple_vertex.wgsl
var GPUSimpleVertexSource string

// GPUSimpleVertex is the GPU-aligned representation of a vertex for unlit
// textured geometry: position and UV only.
// Matches the WGSL VertexInput struct layout exactly (see GPUSimpleVertexSource).
// Size: 20 bytes (tightly packed, shader locations 0-1).
type GPUSimpleVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	TexCoord [2]float32 // offset 12: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUSimpleVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUSimpleVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSimpleVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 20-byte buffer ready for GPU upload.
func (g *GPUSimpleVertex) Marshal() []byte {
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.TexCoord[1]))
	return buf
}

// GPUInstanceSource is the canonical WGSL definition of the Instance struct stored in the
// per-draw instance storage buffer.
// Matches GPUInstance layout exactly (112 bytes, std430 aligned).
//
//go:embed assets/instance.wgsl
var GPUInstanceSource string

// GPUInstance is the GPU-aligned representation of one rendered instance:
// its model-to-world matrix plus the inverse-transpose normal matrix stored
// as three padded vec4 columns (the WGSL mat3x3<f32> storage layout).
// Matches the WGSL Instance struct layout exactly (see GPUInstanceSource).
// Size: 112 bytes (std430 aligned).
type GPUInstance struct {
	Model     [16]float32 // offset  0: 4x4 model-to-world matrix (64 bytes)
	NormalMat [12]float32 // offset 64: inverse-transpose upper 3x3, padded columns (48 bytes)
}

// Size returns the size of the GPUInstance struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// SetModel stores a model matrix and refreshes the derived normal matrix.
//
// Parameters:
//   - m: the column-major model matrix (16 elements)
func (g *GPUInstance) SetModel(m []float32) {
	copy(g.Model[:], m)
	common.NormalMatrix3(g.NormalMat[:], g.Model[:])
}

// Marshal serializes the GPUInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 112-byte buffer ready for GPU upload.
func (g *GPUInstance) Marshal() []byte {
	buf := make([]byte, 112)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(g.Model[i]))
	}
	for i := 0; i < 12; i++ {
		binary.LittleEndian.PutUint32(buf[64+i*4:68+i*4], math.Float32bits(g.NormalMat[i]))
	}
	return buf
}

// ComputeBoundingRadius calculates the bounding sphere radius from a slice of
// vertex positions. The radius is the maximum distance from the origin across
// all vertices in the slice.
//
// Parameters:
//   - vertices: the vertex data to compute the bounding radius from
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeBoundingRadius(vertices []GPUModelVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}
