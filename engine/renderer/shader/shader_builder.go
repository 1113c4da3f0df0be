package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderBuilderOption is a functional option for configuring a Shader via NewShader.
type ShaderBuilderOption func(*shader)

// WithEntryPoint is an option builder that overrides the default entry point name.
//
// Parameters:
//   - name: the WGSL entry point function name
//
// Returns:
//   - ShaderBuilderOption: a function that applies the entry point option to a shader
func WithEntryPoint(name string) ShaderBuilderOption {
	return func(s *shader) {
		s.entryPoint = name
	}
}

// WithBindGroupLayout is an option builder that declares the bind group layout for a group index.
// The entries must mirror the @group/@binding declarations in the WGSL source.
//
// Parameters:
//   - group: the bind group index
//   - entries: the layout entries for every binding in the group
//
// Returns:
//   - ShaderBuilderOption: a function that applies the bind group layout option to a shader
func WithBindGroupLayout(group int, entries ...wgpu.BindGroupLayoutEntry) ShaderBuilderOption {
	return func(s *shader) {
		s.bindGroupLayoutDescriptors[group] = wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s_group_%d", s.key, group),
			Entries: entries,
		}
	}
}

// WithBindingNames is an option builder that declares the WGSL variable names for a bind group.
// Names are assigned in binding order: names[i] is the variable bound at @binding(i).
// The scene and renderer use these names to wire resource providers to groups.
//
// Parameters:
//   - group: the bind group index
//   - names: the variable names in binding order
//
// Returns:
//   - ShaderBuilderOption: a function that applies the binding names option to a shader
func WithBindingNames(group int, names ...string) ShaderBuilderOption {
	return func(s *shader) {
		if s.bindingVarNames[group] == nil {
			s.bindingVarNames[group] = make(map[int]string, len(names))
		}
		for i, name := range names {
			s.bindingVarNames[group][i] = name
		}
	}
}

// WithVertexLayout is an option builder that declares the vertex buffer layouts for a buffer slot.
// Only meaningful for vertex shaders.
//
// Parameters:
//   - slot: the vertex buffer slot index
//   - layouts: the buffer layouts bound at this slot
//
// Returns:
//   - ShaderBuilderOption: a function that applies the vertex layout option to a shader
func WithVertexLayout(slot int, layouts ...wgpu.VertexBufferLayout) ShaderBuilderOption {
	return func(s *shader) {
		s.vertexLayouts[slot] = layouts
	}
}
