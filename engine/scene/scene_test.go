package scene

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/kanvas-go/common"
	"github.com/Carmen-Shannon/kanvas-go/engine/game_object"
	"github.com/Carmen-Shannon/kanvas-go/engine/light"
	"github.com/Carmen-Shannon/kanvas-go/engine/model"
)

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
}

func newTestScene() *scene {
	return &scene{
		nextID:     1,
		registry:   make(map[uint64]game_object.GameObject),
		groupIndex: make(map[model.Model]*drawGroup),
		billboards: newBillboardSet(),
	}
}

func TestAddGroupsByModel(t *testing.T) {
	s := newTestScene()
	mdl := model.NewModel(model.WithName("cube"))

	a := game_object.NewGameObject(game_object.WithModel(mdl))
	b := game_object.NewGameObject(game_object.WithModel(mdl))
	other := game_object.NewGameObject(game_object.WithModel(model.NewModel(model.WithName("floor"))))

	idA := s.Add(a)
	idB := s.Add(b)
	s.Add(other)

	assert.NotEqual(t, idA, idB)
	assert.Equal(t, 3, s.Count())
	require.Len(t, s.groups, 2)
	assert.Len(t, s.groups[0].objects, 2)
	assert.Len(t, s.groups[1].objects, 1)
	assert.Same(t, a, s.Get(idA))
}

func TestRemoveDropsObjectFromGroup(t *testing.T) {
	s := newTestScene()
	mdl := model.NewModel(model.WithName("cube"))

	a := game_object.NewGameObject(game_object.WithModel(mdl))
	b := game_object.NewGameObject(game_object.WithModel(mdl))
	idA := s.Add(a)
	s.Add(b)

	s.Remove(idA)

	assert.Equal(t, 1, s.Count())
	assert.Nil(t, s.Get(idA))
	require.Len(t, s.groups, 1)
	require.Len(t, s.groups[0].objects, 1)
	assert.Same(t, b, s.groups[0].objects[0])
}

func TestClearKeepsGroupsEmpty(t *testing.T) {
	s := newTestScene()
	mdl := model.NewModel(model.WithName("cube"))
	s.Add(game_object.NewGameObject(game_object.WithModel(mdl)))
	s.Add(game_object.NewGameObject(game_object.WithModel(mdl)))

	s.Clear()

	assert.Equal(t, 0, s.Count())
	require.Len(t, s.groups, 1)
	assert.Empty(t, s.groups[0].objects)
}

func TestAddLightEnforcesBudget(t *testing.T) {
	s := newTestScene()
	for i := 0; i < light.MaxLights; i++ {
		require.NoError(t, s.AddLight(light.NewLight(light.LightTypePoint)))
	}
	err := s.AddLight(light.NewLight(light.LightTypePoint))
	assert.Error(t, err)
}

func TestOrderedLightsCasterFirst(t *testing.T) {
	s := newTestScene()
	fill := light.NewLight(light.LightTypePoint)
	caster := light.NewLight(light.LightTypePoint, light.WithCastsShadows(true))
	require.NoError(t, s.AddLight(fill))
	require.NoError(t, s.AddLight(caster))
	s.shadowCaster = caster

	ordered := s.orderedLights()
	require.Len(t, ordered, 2)
	assert.Same(t, caster, ordered[0])
	assert.Same(t, fill, ordered[1])
}

func TestRemoveLightClearsCaster(t *testing.T) {
	s := newTestScene()
	caster := light.NewLight(light.LightTypePoint, light.WithCastsShadows(true))
	require.NoError(t, s.AddLight(caster))
	s.shadowCaster = caster

	s.RemoveLight(caster)

	assert.Empty(t, s.Lights())
	assert.Nil(t, s.shadowCaster)
}

func TestPackInstancesAdvancesRotation(t *testing.T) {
	mdl := model.NewModel(model.WithName("cube"))
	obj := game_object.NewGameObject(
		game_object.WithModel(mdl),
		game_object.WithRotation(0, 1, 0),
		game_object.WithRotationSpeed(0, 2, 0),
	)
	g := &drawGroup{mdl: mdl, objects: []game_object.GameObject{obj}}

	n := g.packInstances(0.5, nil)

	assert.Equal(t, 1, n)
	_, ry, _ := obj.Rotation()
	assert.InDelta(t, 2.0, ry, 1e-6)
}

func TestPackInstancesSkipsDisabled(t *testing.T) {
	mdl := model.NewModel(model.WithName("cube"))
	on := game_object.NewGameObject(game_object.WithModel(mdl))
	off := game_object.NewGameObject(game_object.WithModel(mdl), game_object.WithEnabled(false))
	g := &drawGroup{mdl: mdl, objects: []game_object.GameObject{on, off}}

	assert.Equal(t, 1, g.packInstances(0.016, nil))
}

func TestPackInstancesSyncsAttachedLight(t *testing.T) {
	mdl := model.NewModel(model.WithName("lamp"))
	l := light.NewLight(light.LightTypePoint)
	obj := game_object.NewGameObject(
		game_object.WithModel(mdl),
		game_object.WithPosition(3, 4, 5),
		game_object.WithLight(l),
	)
	g := &drawGroup{mdl: mdl, objects: []game_object.GameObject{obj}}

	g.packInstances(0, nil)

	assert.Equal(t, [3]float32{3, 4, 5}, l.Position())
}

func TestPackInstancesCullsOutsideFrustum(t *testing.T) {
	mdl := model.NewModel(model.WithName("cube"), model.WithBoundingRadius(1))
	inside := game_object.NewGameObject(game_object.WithModel(mdl), game_object.WithPosition(0, 0, -10))
	behind := game_object.NewGameObject(game_object.WithModel(mdl), game_object.WithPosition(0, 0, 10))
	g := &drawGroup{mdl: mdl, objects: []game_object.GameObject{inside, behind}}

	// camera at origin looking down -Z
	var view, proj, vp [16]float32
	common.LookAt(view[:], 0, 0, 0, 0, 0, -1, 0, 1, 0)
	common.Perspective(proj[:], float32(math.Pi/4), 1, 0.1, 100)
	common.Mul4(vp[:], proj[:], view[:])
	frustum := common.ExtractFrustumFromMatrix(vp[:])

	assert.Equal(t, 1, g.packInstances(0, &frustum))
	assert.Equal(t, 2, g.packInstances(0, nil))
}

func TestMarshalInstancesTranslation(t *testing.T) {
	mdl := model.NewModel(model.WithName("cube"))
	obj := game_object.NewGameObject(
		game_object.WithModel(mdl),
		game_object.WithPosition(7, -2, 3),
	)
	g := &drawGroup{mdl: mdl, objects: []game_object.GameObject{obj}}
	g.packInstances(0, nil)

	buf := g.marshalInstances()
	var inst model.GPUInstance
	require.Len(t, buf, inst.Size())

	// column-major model matrix: translation lives in elements 12..14
	assert.Equal(t, float32(7), f32At(buf, 48))
	assert.Equal(t, float32(-2), f32At(buf, 52))
	assert.Equal(t, float32(3), f32At(buf, 56))
}

func TestComputeBillboardMatrixIdentityView(t *testing.T) {
	var view [16]float32
	view[0], view[5], view[10], view[15] = 1, 1, 1, 1

	m := computeBillboardMatrix(view, [3]float32{1, 2, 3}, 4, 6)

	assert.Equal(t, float32(4), m[0])
	assert.Equal(t, float32(6), m[5])
	assert.Equal(t, float32(1), m[10])
	assert.Equal(t, float32(1), m[12])
	assert.Equal(t, float32(2), m[13])
	assert.Equal(t, float32(3), m[14])
	assert.Equal(t, float32(1), m[15])
}

func TestComputeBillboardMatrixTransposesView(t *testing.T) {
	// a 90 degree yaw view: the billboard rotation must be its transpose so
	// the quad's +Z tracks the camera
	var view [16]float32
	view[2] = -1 // column 0
	view[5] = 1  // column 1
	view[8] = 1  // column 2
	view[15] = 1

	m := computeBillboardMatrix(view, [3]float32{0, 0, 0}, 1, 1)

	// column 0 of the billboard basis is row 0 of the view's upper 3x3
	assert.Equal(t, float32(0), m[0])
	assert.Equal(t, float32(1), m[2])
	// column 2 is row 2 of the view's upper 3x3
	assert.Equal(t, float32(-1), m[8])
	assert.Equal(t, float32(0), m[10])
}

func TestMarshalMatricesLayout(t *testing.T) {
	var view [16]float32
	view[0], view[5], view[10], view[15] = 1, 1, 1, 1

	set := newBillboardSet()
	require.True(t, set.add(1, 2, 3, 1, 1))
	require.True(t, set.add(-4, 0, 9, 2, 2))

	buf := set.marshalMatrices(view)
	require.Len(t, buf, 2*billboardMatrixStride)

	assert.Equal(t, float32(1), f32At(buf, 12*4))
	assert.Equal(t, float32(2), f32At(buf, 13*4))
	assert.Equal(t, float32(3), f32At(buf, 14*4))

	base := billboardMatrixStride
	assert.Equal(t, float32(-4), f32At(buf, base+12*4))
	assert.Equal(t, float32(2), f32At(buf, base))
}

func TestBillboardSetCap(t *testing.T) {
	set := newBillboardSet()
	for i := 0; i < MaxBillboards; i++ {
		require.True(t, set.add(0, 0, 0, 1, 1))
	}
	assert.False(t, set.add(0, 0, 0, 1, 1))
	assert.Equal(t, MaxBillboards, set.count())
}

func TestLitShadersDeclareSceneGroups(t *testing.T) {
	// the scene locates its bind groups by variable name, so the lit shader
	// variants must declare every group it wires
	for _, name := range []string{"instances", "camera", "diffuse_texture", "lights"} {
		assert.GreaterOrEqual(t, findGroup(buildModelShader(), name), 0, "model shader missing %s", name)
		assert.GreaterOrEqual(t, findGroup(buildModelDirShader(), name), 0, "model_dir shader missing %s", name)
	}
	assert.GreaterOrEqual(t, findGroup(buildModelShader(), "shadow_cube"), 0)
	assert.GreaterOrEqual(t, findGroup(buildModelDirShader(), "shadow_map"), 0)
}
