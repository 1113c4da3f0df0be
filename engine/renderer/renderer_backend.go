package renderer

// RendererBackendType selects which GPU API implementation backs the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how finished frames reach the display surface.
type PresentMode int

const (
	// PresentModeVSync blocks presentation until the next vertical blank,
	// capping the frame rate at the monitor refresh rate with no tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents immediately. Lowest latency, may tear.
	PresentModeUncapped
)

// MSAASampleCount is the per-pixel sample count for multisample
// anti-aliasing. WebGPU guarantees 1 and 4; 8 and 16 depend on the adapter.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisampling.
	MSAAOff MSAASampleCount = 1

	// MSAA4x is the default sample count.
	MSAA4x MSAASampleCount = 4

	// MSAA8x is adapter-dependent.
	MSAA8x MSAASampleCount = 8

	// MSAA16x is adapter-dependent.
	MSAA16x MSAASampleCount = 16
)

// RendererBackend is the backend surface the Renderer drives. It embeds the
// interface of the selected GPU API so the Renderer itself stays API-agnostic.
type RendererBackend interface {
	wgpuRendererBackend
}
