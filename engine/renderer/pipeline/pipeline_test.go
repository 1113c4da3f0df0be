package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/kanvas-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("model")
	assert.Equal(t, "model", p.PipelineKey())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.False(t, p.DepthOnly())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Nil(t, p.Pipeline())
	assert.Nil(t, p.Shader(shader.ShaderTypeVertex))
}

func TestNewPipelineShadowOptions(t *testing.T) {
	p := NewPipeline("shadow_map",
		WithDepthOnly(),
		WithDepthBias(2, 2.0),
		WithCullMode(wgpu.CullModeFront),
	)
	assert.True(t, p.DepthOnly())
	assert.Equal(t, int32(2), p.DepthBias())
	assert.Equal(t, float32(2.0), p.DepthBiasSlopeScale())
	assert.Equal(t, wgpu.CullModeFront, p.CullMode())
}

func TestNewPipelineColorFormatOverride(t *testing.T) {
	p := NewPipeline("shadow_cube", WithColorFormat(wgpu.TextureFormatR32Float))
	assert.Equal(t, wgpu.TextureFormatR32Float, p.ColorFormat())

	def := NewPipeline("model")
	assert.Equal(t, wgpu.TextureFormatUndefined, def.ColorFormat())
}
