package scene

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/kanvas-go/common"
	"github.com/Carmen-Shannon/kanvas-go/engine/renderer/bind_group_provider"
)

// MaxBillboards caps the camera-facing quad storage buffer. The buffer is
// allocated once at this capacity so adding billboards never reallocates
// GPU memory mid-run.
const MaxBillboards = 10000

// billboardMatrixStride is the byte size of one packed mat4x4.
const billboardMatrixStride = 64

// billboard is one camera-facing quad: a world anchor point and a size in
// world units.
type billboard struct {
	position [3]float32
	width    float32
	height   float32
}

// billboardSet owns the billboard instances and their GPU resources: a shared
// unit quad mesh, a storage buffer of per-billboard model matrices rebuilt
// each frame from the camera view, and the diffuse texture group.
type billboardSet struct {
	billboards []billboard

	meshProvider     bind_group_provider.BindGroupProvider
	matrixProvider   bind_group_provider.BindGroupProvider
	materialProvider bind_group_provider.BindGroupProvider

	texture *common.ImportedTexture

	// matrixData is the marshaled matrix scratch buffer reused each frame.
	matrixData []byte

	initialized bool
}

func newBillboardSet() *billboardSet {
	return &billboardSet{}
}

// computeBillboardMatrix builds the model matrix for a camera-facing quad: the
// rotation is the transpose of the view matrix's upper 3x3, so the quad's +Z
// always points at the camera, scaled by the billboard size and translated to
// its anchor.
//
// Parameters:
//   - view: the camera view matrix, column-major
//   - position: world-space anchor of the quad center
//   - width, height: quad size in world units
//
// Returns:
//   - [16]float32: the column-major model matrix
func computeBillboardMatrix(view [16]float32, position [3]float32, width, height float32) [16]float32 {
	var out [16]float32
	// B = V3^T, column c of B is row c of the view's upper 3x3.
	out[0] = view[0] * width
	out[1] = view[4] * width
	out[2] = view[8] * width
	out[4] = view[1] * height
	out[5] = view[5] * height
	out[6] = view[9] * height
	out[8] = view[2]
	out[9] = view[6]
	out[10] = view[10]
	out[12] = position[0]
	out[13] = position[1]
	out[14] = position[2]
	out[15] = 1
	return out
}

// marshalMatrices packs every billboard's model matrix for the current camera
// view into the reused scratch buffer, 64 bytes per billboard.
//
// Parameters:
//   - view: the camera view matrix, column-major
//
// Returns:
//   - []byte: the packed matrix data, one mat4x4 per billboard
func (b *billboardSet) marshalMatrices(view [16]float32) []byte {
	need := len(b.billboards) * billboardMatrixStride
	if cap(b.matrixData) < need {
		b.matrixData = make([]byte, need)
	}
	b.matrixData = b.matrixData[:need]
	for i, bb := range b.billboards {
		m := computeBillboardMatrix(view, bb.position, bb.width, bb.height)
		base := i * billboardMatrixStride
		for j := 0; j < 16; j++ {
			binary.LittleEndian.PutUint32(b.matrixData[base+j*4:base+j*4+4], math.Float32bits(m[j]))
		}
	}
	return b.matrixData
}

func (b *billboardSet) add(x, y, z, width, height float32) bool {
	if len(b.billboards) >= MaxBillboards {
		return false
	}
	b.billboards = append(b.billboards, billboard{
		position: [3]float32{x, y, z},
		width:    width,
		height:   height,
	})
	return true
}

func (b *billboardSet) count() int {
	return len(b.billboards)
}
