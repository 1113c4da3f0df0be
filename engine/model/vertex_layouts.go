package model

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// ModelVertexLayout returns the vertex buffer layout for GPUModelVertex.
// Shader locations: 0 position, 1 texcoord, 2 normal, 3 tangent, 4 bitangent.
//
// Returns:
//   - wgpu.VertexBufferLayout: per-vertex layout matching GPUModelVertex
func ModelVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 56,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 20, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 32, ShaderLocation: 3},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 44, ShaderLocation: 4},
		},
	}
}

// SimpleVertexLayout returns the vertex buffer layout for GPUSimpleVertex.
// Shader locations: 0 position, 1 texcoord.
//
// Returns:
//   - wgpu.VertexBufferLayout: per-vertex layout matching GPUSimpleVertex
func SimpleVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 20,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
		},
	}
}
