package scene

import (
	_ "embed"

	"github.com/Carmen-Shannon/kanvas-go/engine/camera"
	"github.com/Carmen-Shannon/kanvas-go/engine/light"
	"github.com/Carmen-Shannon/kanvas-go/engine/model"
	"github.com/Carmen-Shannon/kanvas-go/engine/renderer/material"
	"github.com/Carmen-Shannon/kanvas-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/kanvas-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Pipeline keys for the scene's canned pass set.
const (
	// PipelineKeyModel is the forward lit pass sampling the point-light cube shadow map.
	PipelineKeyModel = "model"
	// PipelineKeyModelDir is the forward lit pass sampling the directional 2D shadow map.
	PipelineKeyModelDir = "model_dir"
	// PipelineKeyShadowCube is the cube shadow distance pass, one face per draw.
	PipelineKeyShadowCube = "shadow_cube"
	// PipelineKeyShadowMap is the directional depth-only shadow pass.
	PipelineKeyShadowMap = "shadow_map"
	// PipelineKeyBillboard is the alpha-tested camera-facing quad pass.
	PipelineKeyBillboard = "billboard"
	// PipelineKeyDepthView redraws scene geometry as linearized grayscale depth.
	PipelineKeyDepthView = "depth_view"
)

//go:embed assets/model.wgsl
var modelShaderBody string

//go:embed assets/model_dir.wgsl
var modelDirShaderBody string

//go:embed assets/shadow_cube.wgsl
var shadowCubeShaderBody string

//go:embed assets/shadow_map.wgsl
var shadowMapShaderBody string

//go:embed assets/billboard.wgsl
var billboardShaderBody string

//go:embed assets/depth_view.wgsl
var depthViewShaderBody string

// Shader sources are assembled from the canonical WGSL struct definitions that
// the GPU-side Go types embed, so a layout change in one place breaks both
// sides together.
var (
	modelShaderSource      = model.GPUInstanceSource + model.GPUModelVertexSource + camera.GPUCameraUniformSource + material.GPUMaterialParamsSource + modelShaderBody
	modelDirShaderSource   = model.GPUInstanceSource + model.GPUModelVertexSource + camera.GPUCameraUniformSource + material.GPUMaterialParamsSource + modelDirShaderBody
	shadowCubeShaderSource = model.GPUInstanceSource + model.GPUModelVertexSource + shadowCubeShaderBody
	shadowMapShaderSource  = model.GPUInstanceSource + model.GPUModelVertexSource + shadowMapShaderBody
	billboardShaderSource  = model.GPUSimpleVertexSource + camera.GPUCameraUniformSource + billboardShaderBody
	depthViewShaderSource  = model.GPUInstanceSource + model.GPUModelVertexSource + camera.GPUCameraUniformSource + depthViewShaderBody
)

func instanceStorageEntry(binding int) wgpu.BindGroupLayoutEntry {
	var inst model.GPUInstance
	return wgpu.BindGroupLayoutEntry{
		Binding:    uint32(binding),
		Visibility: wgpu.ShaderStageVertex,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeReadOnlyStorage,
			MinBindingSize: uint64(inst.Size()),
		},
	}
}

func cameraUniformEntry(binding int) wgpu.BindGroupLayoutEntry {
	var cam camera.GPUCameraUniform
	return wgpu.BindGroupLayoutEntry{
		Binding:    uint32(binding),
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: uint64(cam.Size()),
		},
	}
}

func uniformEntry(binding int, visibility wgpu.ShaderStage, minSize uint64) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    uint32(binding),
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: minSize,
		},
	}
}

func textureEntry(binding int, sampleType wgpu.TextureSampleType, dimension wgpu.TextureViewDimension) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    uint32(binding),
		Visibility: wgpu.ShaderStageFragment,
		Texture: wgpu.TextureBindingLayout{
			SampleType:    sampleType,
			ViewDimension: dimension,
		},
	}
}

func samplerEntry(binding int, samplerType wgpu.SamplerBindingType) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    uint32(binding),
		Visibility: wgpu.ShaderStageFragment,
		Sampler:    wgpu.SamplerBindingLayout{Type: samplerType},
	}
}

// materialGroupEntries is the layout for the lit passes' material group:
// diffuse texture + sampler, normal texture + sampler, and the material
// params uniform.
func materialGroupEntries() []wgpu.BindGroupLayoutEntry {
	var params material.GPUMaterialParams
	return []wgpu.BindGroupLayoutEntry{
		textureEntry(0, wgpu.TextureSampleTypeFloat, wgpu.TextureViewDimension2D),
		samplerEntry(1, wgpu.SamplerBindingTypeFiltering),
		textureEntry(2, wgpu.TextureSampleTypeFloat, wgpu.TextureViewDimension2D),
		samplerEntry(3, wgpu.SamplerBindingTypeFiltering),
		uniformEntry(4, wgpu.ShaderStageFragment, uint64(params.Size())),
	}
}

func lightGroupEntries() []wgpu.BindGroupLayoutEntry {
	var lights light.GPULights
	var config light.GPULightConfig
	return []wgpu.BindGroupLayoutEntry{
		uniformEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, uint64(lights.Size())),
		uniformEntry(1, wgpu.ShaderStageFragment, uint64(config.Size())),
	}
}

// buildModelShader declares the forward lit pass that samples the point
// light's cube shadow map. The cube texture stores R32Float distances, which
// are not filterable without optional device features, so the layout demands
// a non-filtering sampler.
func buildModelShader() shader.Shader {
	return shader.NewShader(PipelineKeyModel, shader.ShaderTypeVertex, modelShaderSource,
		shader.WithBindGroupLayout(0, instanceStorageEntry(0)),
		shader.WithBindingNames(0, "instances"),
		shader.WithBindGroupLayout(1, cameraUniformEntry(0)),
		shader.WithBindingNames(1, "camera"),
		shader.WithBindGroupLayout(2, materialGroupEntries()...),
		shader.WithBindingNames(2, "diffuse_texture", "diffuse_sampler", "normal_texture", "normal_sampler", "material_params"),
		shader.WithBindGroupLayout(3, lightGroupEntries()...),
		shader.WithBindingNames(3, "lights", "light_config"),
		shader.WithBindGroupLayout(4,
			textureEntry(0, wgpu.TextureSampleTypeUnfilterableFloat, wgpu.TextureViewDimensionCube),
			samplerEntry(1, wgpu.SamplerBindingTypeNonFiltering),
		),
		shader.WithBindingNames(4, "shadow_cube", "shadow_cube_sampler"),
		shader.WithVertexLayout(0, model.ModelVertexLayout()),
	)
}

// buildModelDirShader declares the forward lit pass that samples the
// directional light's 2D depth shadow map with a comparison sampler.
func buildModelDirShader() shader.Shader {
	var shadowData light.GPUShadowData
	return shader.NewShader(PipelineKeyModelDir, shader.ShaderTypeVertex, modelDirShaderSource,
		shader.WithBindGroupLayout(0, instanceStorageEntry(0)),
		shader.WithBindingNames(0, "instances"),
		shader.WithBindGroupLayout(1, cameraUniformEntry(0)),
		shader.WithBindingNames(1, "camera"),
		shader.WithBindGroupLayout(2, materialGroupEntries()...),
		shader.WithBindingNames(2, "diffuse_texture", "diffuse_sampler", "normal_texture", "normal_sampler", "material_params"),
		shader.WithBindGroupLayout(3, lightGroupEntries()...),
		shader.WithBindingNames(3, "lights", "light_config"),
		shader.WithBindGroupLayout(4,
			textureEntry(0, wgpu.TextureSampleTypeDepth, wgpu.TextureViewDimension2D),
			samplerEntry(1, wgpu.SamplerBindingTypeComparison),
			uniformEntry(2, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, uint64(shadowData.Size())),
		),
		shader.WithBindingNames(4, "shadow_map", "shadow_sampler", "shadow"),
		shader.WithVertexLayout(0, model.ModelVertexLayout()),
	)
}

// buildShadowCubeShader declares the cube distance pass. The per-face uniform
// uses a dynamic offset so all six faces can share one buffer written once per
// frame; the draw call selects the face slice.
func buildShadowCubeShader() shader.Shader {
	var face light.GPUShadowFace
	return shader.NewShader(PipelineKeyShadowCube, shader.ShaderTypeVertex, shadowCubeShaderSource,
		shader.WithBindGroupLayout(0, wgpu.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   uint64(face.Size()),
			},
		}),
		shader.WithBindingNames(0, "face"),
		shader.WithBindGroupLayout(1, instanceStorageEntry(0)),
		shader.WithBindingNames(1, "instances"),
		shader.WithVertexLayout(0, model.ModelVertexLayout()),
	)
}

func buildShadowMapShader() shader.Shader {
	var shadowData light.GPUShadowData
	return shader.NewShader(PipelineKeyShadowMap, shader.ShaderTypeVertex, shadowMapShaderSource,
		shader.WithBindGroupLayout(0, uniformEntry(0, wgpu.ShaderStageVertex, uint64(shadowData.Size()))),
		shader.WithBindingNames(0, "shadow"),
		shader.WithBindGroupLayout(1, instanceStorageEntry(0)),
		shader.WithBindingNames(1, "instances"),
		shader.WithVertexLayout(0, model.ModelVertexLayout()),
	)
}

func buildBillboardShader() shader.Shader {
	return shader.NewShader(PipelineKeyBillboard, shader.ShaderTypeVertex, billboardShaderSource,
		shader.WithBindGroupLayout(0, wgpu.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeReadOnlyStorage,
				MinBindingSize: 64,
			},
		}),
		shader.WithBindingNames(0, "billboards"),
		shader.WithBindGroupLayout(1, cameraUniformEntry(0)),
		shader.WithBindingNames(1, "camera"),
		shader.WithBindGroupLayout(2,
			textureEntry(0, wgpu.TextureSampleTypeFloat, wgpu.TextureViewDimension2D),
			samplerEntry(1, wgpu.SamplerBindingTypeFiltering),
		),
		shader.WithBindingNames(2, "diffuse_texture", "diffuse_sampler"),
		shader.WithVertexLayout(0, model.SimpleVertexLayout()),
	)
}

func buildDepthViewShader() shader.Shader {
	return shader.NewShader(PipelineKeyDepthView, shader.ShaderTypeVertex, depthViewShaderSource,
		shader.WithBindGroupLayout(0, instanceStorageEntry(0)),
		shader.WithBindingNames(0, "instances"),
		shader.WithBindGroupLayout(1, cameraUniformEntry(0)),
		shader.WithBindingNames(1, "camera"),
		shader.WithVertexLayout(0, model.ModelVertexLayout()),
	)
}

// buildPipelines assembles the scene's full pass set. Both lit variants are
// built here, but InitLighting registers only the one matching the shadow
// caster type, alongside its shadow pass, the billboard pass, and depth view.
func buildPipelines() []pipeline.Pipeline {
	modelShader := buildModelShader()
	modelDirShader := buildModelDirShader()
	shadowCubeShader := buildShadowCubeShader()
	shadowMapShader := buildShadowMapShader()
	billboardShader := buildBillboardShader()
	depthViewShader := buildDepthViewShader()

	return []pipeline.Pipeline{
		pipeline.NewPipeline(PipelineKeyModel,
			pipeline.WithVertexShader(modelShader),
			pipeline.WithFragmentShader(shader.NewShader(PipelineKeyModel+"_fs", shader.ShaderTypeFragment, modelShaderSource)),
			pipeline.WithCullMode(wgpu.CullModeBack),
		),
		pipeline.NewPipeline(PipelineKeyModelDir,
			pipeline.WithVertexShader(modelDirShader),
			pipeline.WithFragmentShader(shader.NewShader(PipelineKeyModelDir+"_fs", shader.ShaderTypeFragment, modelDirShaderSource)),
			pipeline.WithCullMode(wgpu.CullModeBack),
		),
		pipeline.NewPipeline(PipelineKeyShadowCube,
			pipeline.WithVertexShader(shadowCubeShader),
			pipeline.WithFragmentShader(shader.NewShader(PipelineKeyShadowCube+"_fs", shader.ShaderTypeFragment, shadowCubeShaderSource)),
			pipeline.WithColorFormat(wgpu.TextureFormatR32Float),
			// Front-face culling reduces peter-panning on closed meshes.
			pipeline.WithCullMode(wgpu.CullModeFront),
		),
		pipeline.NewPipeline(PipelineKeyShadowMap,
			pipeline.WithVertexShader(shadowMapShader),
			pipeline.WithDepthOnly(),
			pipeline.WithCullMode(wgpu.CullModeFront),
			pipeline.WithDepthBias(2, 2.0),
		),
		pipeline.NewPipeline(PipelineKeyBillboard,
			pipeline.WithVertexShader(billboardShader),
			pipeline.WithFragmentShader(shader.NewShader(PipelineKeyBillboard+"_fs", shader.ShaderTypeFragment, billboardShaderSource)),
			// Alpha-tested cutouts render both sides.
			pipeline.WithCullMode(wgpu.CullModeNone),
		),
		pipeline.NewPipeline(PipelineKeyDepthView,
			pipeline.WithVertexShader(depthViewShader),
			pipeline.WithFragmentShader(shader.NewShader(PipelineKeyDepthView+"_fs", shader.ShaderTypeFragment, depthViewShaderSource)),
			pipeline.WithCullMode(wgpu.CullModeBack),
		),
	}
}
