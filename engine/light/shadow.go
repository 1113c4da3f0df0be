package light

// ShadowMapResolution is the width and height in texels of every shadow depth
// target, both the 2D directional map and each cube face.
const ShadowMapResolution = 1024

// ShadowFaceCount is the number of faces in a cube shadow map.
const ShadowFaceCount = 6

// ShadowFaceUniformStride is the byte stride between per-face shadow uniforms
// in the dynamic-offset uniform buffer. Matches the WebGPU minimum uniform
// buffer offset alignment.
const ShadowFaceUniformStride = 256

// CubeShadowNear is the near plane of the 90 degree per-face shadow projection.
const CubeShadowNear float32 = 0.1

// CubeShadowFar is the far plane of the cube shadow projection. Stored cube
// map values are fragment-to-light distances divided by this value.
const CubeShadowFar float32 = 100.0

// DefaultShadowHalfExtent is the default orthographic half-extent (in world units)
// used for the directional light shadow frustum. Controls how much of the scene
// around the frustum center is captured in the shadow map.
const DefaultShadowHalfExtent float32 = 10.0

// DefaultShadowNear is the default near plane for the directional light's
// orthographic shadow projection.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the default far plane for the directional light's
// orthographic shadow projection.
const DefaultShadowFar float32 = 100.0

// DefaultShadowBias is the constant depth bias applied to 2D shadow comparisons
// to reduce shadow acne artifacts.
const DefaultShadowBias float32 = 0.005

// DefaultShadowNormalBiasScale is the multiplier applied to the shadow map
// texel world-size to compute the normal-offset bias. Higher values push
// the shadow sample point further along the surface normal, reducing
// self-shadowing on concave geometry at the cost of slight shadow
// detachment from contact points. Typical values are 2.0–4.0.
const DefaultShadowNormalBiasScale float32 = 3.0
