package scene

import (
	"github.com/Carmen-Shannon/kanvas-go/common"
	"github.com/Carmen-Shannon/kanvas-go/engine/game_object"
	"github.com/Carmen-Shannon/kanvas-go/engine/light"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithObjects adds initial objects to the scene. Objects without IDs are
// assigned new IDs, and objects sharing a Model land in the same instanced
// draw group.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			s.addLocked(obj)
		}
	}
}

// WithLights adds initial lights to the scene's rig. Lights beyond the GPU
// budget are silently dropped; use AddLight for an error instead.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		for _, l := range lights {
			if len(s.lights) >= light.MaxLights {
				break
			}
			s.lights = append(s.lights, l)
		}
	}
}

// WithShadowsEnabled sets the initial shadow toggle state. Default is enabled.
//
// Parameters:
//   - enabled: true to render shadows
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShadowsEnabled(enabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.shadowsEnabled = enabled
	}
}

// WithBillboardTexture sets the shared billboard texture. Equivalent to
// calling SetBillboardTexture before InitLighting.
//
// Parameters:
//   - tex: the imported texture, expected to carry an alpha channel
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBillboardTexture(tex *common.ImportedTexture) SceneBuilderOption {
	return func(s *scene) {
		s.billboards.texture = tex
	}
}

// WithComputeWorkers sets the number of worker goroutines used during the
// parallel CPU prep phase of PrepareInstances. Defaults to runtime.NumCPU()-1.
// Higher values may improve throughput with many draw groups; lower values
// reduce scheduling overhead for simple scenes.
//
// Parameters:
//   - n: the number of compute workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.computeWorkers = n
	}
}

// WithShadowHalfExtent sets the orthographic half-extent of the directional
// shadow frustum in world units. Larger values capture more of the scene but
// reduce shadow resolution. Default is light.DefaultShadowHalfExtent.
//
// Parameters:
//   - halfExtent: half-size of the shadow frustum in world units
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShadowHalfExtent(halfExtent float32) SceneBuilderOption {
	return func(s *scene) {
		s.shadowHalfExtent = halfExtent
	}
}

// WithShadowNearFar sets the near and far planes for the directional shadow
// projection. Default is light.DefaultShadowNear and light.DefaultShadowFar.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShadowNearFar(near, far float32) SceneBuilderOption {
	return func(s *scene) {
		s.shadowNear = near
		s.shadowFar = far
	}
}

// WithShadowBias sets the depth comparison bias used during directional
// shadow sampling to reduce shadow acne. Default is light.DefaultShadowBias.
//
// Parameters:
//   - bias: the depth bias value
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShadowBias(bias float32) SceneBuilderOption {
	return func(s *scene) {
		s.shadowBias = bias
	}
}

// WithShadowNormalBiasScale sets the multiplier applied to the shadow-map
// texel world-size to derive the normal-offset bias. The normal offset
// shifts the shadow lookup position along the surface normal, preventing
// self-shadowing on sloped geometry. Default is
// light.DefaultShadowNormalBiasScale.
//
// Parameters:
//   - scale: multiplier on per-texel world size (typically 2.0 to 4.0)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShadowNormalBiasScale(scale float32) SceneBuilderOption {
	return func(s *scene) {
		s.shadowNormalBiasScale = scale
	}
}

// WithShadowMapResolution sets the width and height in texels of the shadow
// textures, both the directional depth map and each cube face. Higher values
// produce sharper shadows at the cost of GPU memory and fill-rate. Must be
// set before InitLighting, as the textures are allocated once. Default is
// light.ShadowMapResolution.
//
// Parameters:
//   - resolution: shadow texture width and height in texels (e.g. 1024, 2048)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShadowMapResolution(resolution int) SceneBuilderOption {
	return func(s *scene) {
		s.shadowMapResolution = resolution
	}
}
