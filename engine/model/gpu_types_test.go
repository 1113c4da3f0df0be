package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUModelVertexSize(t *testing.T) {
	v := &GPUModelVertex{}
	assert.Equal(t, 56, v.Size())
	assert.Len(t, v.Marshal(), 56)
}

func TestGPUModelVertexMarshalOffsets(t *testing.T) {
	v := &GPUModelVertex{
		Position:  [3]float32{1, 2, 3},
		TexCoord:  [2]float32{0.25, 0.75},
		Normal:    [3]float32{0, 1, 0},
		Tangent:   [3]float32{1, 0, 0},
		Bitangent: [3]float32{0, 0, 1},
	}
	buf := v.Marshal()

	f32At := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	assert.Equal(t, float32(1), f32At(0))
	assert.Equal(t, float32(0.25), f32At(12))
	assert.Equal(t, float32(1), f32At(24))
	assert.Equal(t, float32(1), f32At(32))
	assert.Equal(t, float32(1), f32At(52))
}

func TestGPUSimpleVertexSize(t *testing.T) {
	v := &GPUSimpleVertex{}
	assert.Equal(t, 20, v.Size())
	assert.Len(t, v.Marshal(), 20)
}

func TestGPUInstanceSize(t *testing.T) {
	inst := &GPUInstance{}
	assert.Equal(t, 112, inst.Size())
	assert.Len(t, inst.Marshal(), 112)
}

func TestGPUInstanceSetModelIdentity(t *testing.T) {
	identity := []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	inst := &GPUInstance{}
	inst.SetModel(identity)

	// Identity model gives an identity normal matrix in padded-column layout.
	expected := [12]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}
	assert.Equal(t, expected, inst.NormalMat)
}

func TestGPUInstanceSetModelNonUniformScale(t *testing.T) {
	scale := []float32{
		2, 0, 0, 0,
		0, 4, 0, 0,
		0, 0, 8, 0,
		0, 0, 0, 1,
	}
	inst := &GPUInstance{}
	inst.SetModel(scale)

	// Inverse-transpose of diag(2,4,8) is diag(0.5,0.25,0.125).
	assert.InDelta(t, 0.5, inst.NormalMat[0], 1e-6)
	assert.InDelta(t, 0.25, inst.NormalMat[5], 1e-6)
	assert.InDelta(t, 0.125, inst.NormalMat[10], 1e-6)
}

func TestGPUInstanceMarshalLayout(t *testing.T) {
	inst := &GPUInstance{}
	for i := range inst.Model {
		inst.Model[i] = float32(i)
	}
	for i := range inst.NormalMat {
		inst.NormalMat[i] = float32(100 + i)
	}
	buf := inst.Marshal()
	require.Len(t, buf, 112)

	got := math.Float32frombits(binary.LittleEndian.Uint32(buf[60:64]))
	assert.Equal(t, float32(15), got)
	got = math.Float32frombits(binary.LittleEndian.Uint32(buf[64:68]))
	assert.Equal(t, float32(100), got)
	got = math.Float32frombits(binary.LittleEndian.Uint32(buf[108:112]))
	assert.Equal(t, float32(111), got)
}

func TestComputeBoundingRadius(t *testing.T) {
	vertices := []GPUModelVertex{
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 3, 4}},
		{Position: [3]float32{-2, 0, 0}},
	}
	assert.InDelta(t, 5.0, ComputeBoundingRadius(vertices), 1e-6)
	assert.Equal(t, float32(0), ComputeBoundingRadius(nil))
}

func TestVertexLayouts(t *testing.T) {
	ml := ModelVertexLayout()
	assert.Equal(t, uint64(56), ml.ArrayStride)
	require.Len(t, ml.Attributes, 5)
	assert.Equal(t, uint64(44), ml.Attributes[4].Offset)
	assert.Equal(t, uint32(4), ml.Attributes[4].ShaderLocation)

	sl := SimpleVertexLayout()
	assert.Equal(t, uint64(20), sl.ArrayStride)
	require.Len(t, sl.Attributes, 2)
	assert.Equal(t, uint64(12), sl.Attributes[1].Offset)
}
