package material

import (
	"testing"

	"github.com/Carmen-Shannon/kanvas-go/common"
	"github.com/stretchr/testify/assert"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial()
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.BaseColor())
	assert.Nil(t, m.DiffuseTexture())
	assert.Nil(t, m.NormalTexture())
	assert.Empty(t, m.PipelineKey())
}

func TestNewMaterialOptions(t *testing.T) {
	diffuse := &common.ImportedTexture{Name: "brickwall"}
	normal := &common.ImportedTexture{Name: "brickwall_normal"}
	m := NewMaterial(
		WithName("wall"),
		WithBaseColor([4]float32{0.5, 0.5, 0.5, 1}),
		WithDiffuseTexture(diffuse),
		WithNormalTexture(normal),
		WithPipelineKey("model"),
	)
	assert.Equal(t, "wall", m.Name())
	assert.Equal(t, [4]float32{0.5, 0.5, 0.5, 1}, m.BaseColor())
	assert.Same(t, diffuse, m.DiffuseTexture())
	assert.Same(t, normal, m.NormalTexture())
	assert.Equal(t, "model", m.PipelineKey())

	m.SetPipelineKey("model_dir")
	assert.Equal(t, "model_dir", m.PipelineKey())
}

func TestGPUMaterialParams(t *testing.T) {
	p := &GPUMaterialParams{BaseColor: [4]float32{1, 0.5, 0.25, 1}}
	assert.Equal(t, 16, p.Size())
	assert.Len(t, p.Marshal(), 16)
}
