package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSource = `
@vertex
fn vs_main() -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`

func TestNewShaderDefaults(t *testing.T) {
	s := NewShader("test", ShaderTypeVertex, testSource)
	assert.Equal(t, "test", s.Key())
	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Equal(t, ShaderTypeVertex, s.ShaderType())
	require.NotNil(t, s.Module())
	assert.Equal(t, "test", s.Module().Label)
	assert.Equal(t, testSource, s.Module().WGSLDescriptor.Code)

	f := NewShader("test_fs", ShaderTypeFragment, testSource)
	assert.Equal(t, "fs_main", f.EntryPoint())
}

func TestNewShaderPanicsOnEmptySource(t *testing.T) {
	assert.Panics(t, func() {
		NewShader("empty", ShaderTypeVertex, "")
	})
}

func TestWithBindGroupLayout(t *testing.T) {
	s := NewShader("test", ShaderTypeVertex, testSource,
		WithBindGroupLayout(0,
			wgpu.BindGroupLayoutEntry{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
			},
		),
		WithBindingNames(0, "camera"),
	)

	desc := s.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 1)
	assert.Equal(t, "test_group_0", desc.Label)
	assert.Equal(t, uint32(0), desc.Entries[0].Binding)

	assert.Equal(t, "camera", s.BindGroupVarName(0, 0))
	binding, ok := s.BindGroupFromVarName(0, "camera")
	assert.True(t, ok)
	assert.Equal(t, 0, binding)

	_, ok = s.BindGroupFromVarName(0, "missing")
	assert.False(t, ok)
	_, ok = s.BindGroupFromVarName(3, "camera")
	assert.False(t, ok)
}

func TestWithVertexLayout(t *testing.T) {
	layout := wgpu.VertexBufferLayout{
		ArrayStride: 56,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		},
	}
	s := NewShader("test", ShaderTypeVertex, testSource, WithVertexLayout(0, layout))

	require.Len(t, s.VertexLayout(0), 1)
	assert.Equal(t, uint64(56), s.VertexLayout(0)[0].ArrayStride)
	assert.Nil(t, s.VertexLayout(1))
	assert.Len(t, s.VertexLayouts(), 1)
}
