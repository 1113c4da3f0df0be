package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption configures a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBindGroup sets a pre-built bind group on the provider.
//
// Parameters:
//   - bg: the bind group to attach
//
// Returns:
//   - BindGroupProviderOption: functional option to set the bind group
func WithBindGroup(bg *wgpu.BindGroup) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroup = bg
	}
}

// WithBindGroupLayout sets a pre-built bind group layout on the provider.
//
// Parameters:
//   - bgl: the layout to attach
//
// Returns:
//   - BindGroupProviderOption: functional option to set the layout
func WithBindGroupLayout(bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = bgl
	}
}

// WithBuffer associates a buffer with a single binding index.
//
// Parameters:
//   - binding: binding index within the group
//   - buf: the buffer to bind
//
// Returns:
//   - BindGroupProviderOption: functional option to set the buffer
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}

// WithBuffers replaces the provider's full binding-to-buffer map.
//
// Parameters:
//   - buffers: map of binding index to buffer
//
// Returns:
//   - BindGroupProviderOption: functional option to set all buffers
func WithBuffers(buffers map[int]*wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers = buffers
	}
}
