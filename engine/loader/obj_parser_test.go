package loader

import (
	"encoding/binary"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
}

const cubeFaceOBJ = `
# a single quad with full v/vt/vn corners
mtllib scene.mtl
o quad
v -1 0 -1
v 1 0 -1
v 1 0 1
v -1 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 1 0
usemtl floor
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJQuadTriangulation(t *testing.T) {
	doc, err := parseOBJ(strings.NewReader(cubeFaceOBJ))
	require.NoError(t, err)
	require.Len(t, doc.Meshes, 1)

	mesh := doc.Meshes[0]
	assert.Equal(t, "quad", mesh.Name)
	assert.Equal(t, "floor", doc.MaterialNames[0])
	assert.Equal(t, []string{"scene.mtl"}, doc.MaterialLibs)

	// four unique corners, fan-triangulated into two triangles
	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices)

	assert.Equal(t, [3]float32{-1, 0, -1}, mesh.BoundingMin)
	assert.Equal(t, [3]float32{1, 0, 1}, mesh.BoundingMax)
}

func TestParseOBJFlipsV(t *testing.T) {
	doc, err := parseOBJ(strings.NewReader(cubeFaceOBJ))
	require.NoError(t, err)

	// vt 0 0 is the texture's bottom-left; sampled space puts v=1 there
	v0 := doc.Meshes[0].Vertices[0]
	assert.Equal(t, [2]float32{0, 1}, v0.TexCoord)
	assert.Equal(t, [3]float32{0, 1, 0}, v0.Normal)
}

func TestParseOBJDedupsSharedCorners(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
f 1 2 3
f 3 2 4
`
	doc, err := parseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, doc.Meshes, 1)

	// corners 2 and 3 are shared between the triangles
	assert.Len(t, doc.Meshes[0].Vertices, 4)
	assert.Len(t, doc.Meshes[0].Indices, 6)
}

func TestParseOBJNegativeIndices(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	doc, err := parseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, doc.Meshes, 1)
	assert.Equal(t, [3]float32{0, 0, 0}, doc.Meshes[0].Vertices[0].Position)
	assert.Equal(t, [3]float32{0, 1, 0}, doc.Meshes[0].Vertices[2].Position)
}

func TestParseOBJSplitsOnUsemtl(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
usemtl red
f 1 2 3
usemtl blue
f 1 3 2
`
	doc, err := parseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, doc.Meshes, 2)
	assert.Equal(t, "red", doc.MaterialNames[0])
	assert.Equal(t, "blue", doc.MaterialNames[1])
}

func TestParseOBJRejectsOutOfRangeIndex(t *testing.T) {
	src := `
v 0 0 0
f 1 2 3
`
	_, err := parseOBJ(strings.NewReader(src))
	assert.Error(t, err)
}

func TestParseOBJRejectsEmpty(t *testing.T) {
	_, err := parseOBJ(strings.NewReader("# just a comment\n"))
	assert.Error(t, err)
}

const sceneMTL = `
newmtl floor
Kd 0.8 0.7 0.6
d 0.5
map_Kd textures/wood.png
map_Bump -bm 0.8 textures/wood_normal.png

newmtl plain
`

func TestParseMTL(t *testing.T) {
	mats, err := parseMTL(strings.NewReader(sceneMTL))
	require.NoError(t, err)
	require.Len(t, mats, 2)

	floor := mats[0]
	assert.Equal(t, "floor", floor.Name)
	assert.InDelta(t, 0.8, floor.BaseColor[0], 1e-6)
	assert.InDelta(t, 0.7, floor.BaseColor[1], 1e-6)
	assert.InDelta(t, 0.5, floor.BaseColor[3], 1e-6)
	assert.Equal(t, "textures/wood.png", floor.DiffuseTexturePath)
	assert.Equal(t, "textures/wood_normal.png", floor.NormalTexturePath)

	// defaults when no directives follow newmtl
	assert.Equal(t, [4]float32{1, 1, 1, 1}, mats[1].BaseColor)
	assert.Empty(t, mats[1].DiffuseTexturePath)
}

func TestLoadReaderBindsMaterials(t *testing.T) {
	l := NewLoader(BackendTypeOBJ)

	m, err := l.LoadReader("quad", strings.NewReader(cubeFaceOBJ), func(ref string) (io.ReadCloser, error) {
		assert.Equal(t, "scene.mtl", ref)
		return io.NopCloser(strings.NewReader(sceneMTL)), nil
	})
	require.NoError(t, err)

	assert.Equal(t, "quad", m.Name())
	assert.Equal(t, 6, m.IndexCount())
	require.Len(t, m.RenderMaterials(), 1)
	assert.Equal(t, "floor", m.RenderMaterials()[0].Name())

	// cached on second load
	again, err := l.LoadReader("quad", strings.NewReader(""), nil)
	require.NoError(t, err)
	assert.Same(t, m, again)
}

func TestLoadReaderGeneratesTangents(t *testing.T) {
	l := NewLoader(BackendTypeOBJ)
	m, err := l.LoadReader("quad", strings.NewReader(cubeFaceOBJ), nil)
	require.NoError(t, err)

	// tangent x component of the first vertex lives at byte offset 32
	data := m.VertexData()
	require.GreaterOrEqual(t, len(data), 56)
	tangentLen := 0.0
	for k := 0; k < 3; k++ {
		f := float64(f32At(data, 32+k*4))
		tangentLen += f * f
	}
	assert.InDelta(t, 1.0, tangentLen, 1e-4)
}
