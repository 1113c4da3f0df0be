package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/kanvas-go/common"
	"github.com/Carmen-Shannon/kanvas-go/engine/camera"
	"github.com/Carmen-Shannon/kanvas-go/engine/game_object"
	"github.com/Carmen-Shannon/kanvas-go/engine/light"
	"github.com/Carmen-Shannon/kanvas-go/engine/model"
	"github.com/Carmen-Shannon/kanvas-go/engine/renderer"
	"github.com/Carmen-Shannon/kanvas-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/kanvas-go/engine/renderer/material"
	"github.com/Carmen-Shannon/kanvas-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// shadowMode selects which shadow technique the scene renders with. The mode
// is inferred from the shadow-casting light's type during InitLighting.
type shadowMode int

const (
	// shadowModeCube renders six distance-map faces for a point light.
	shadowModeCube shadowMode = iota
	// shadowModeDirectional renders one orthographic depth map.
	shadowModeDirectional
)

// Scene manages renderable objects grouped by model, the light rig, shadow
// resources, and the per-frame prep and draw phases. Objects sharing a Model
// are drawn as a single instanced draw call. Thread-safe for concurrent
// access; the Prepare and Draw methods must run on the render thread.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// Count returns the number of registered objects.
	Count() int

	// Add registers an object with the scene, assigning it a fresh ID when it
	// has none.
	//
	// Parameters:
	//   - obj: the object to register
	//
	// Returns:
	//   - uint64: the object's ID
	Add(obj game_object.GameObject) uint64

	// Get returns the registered object with the given ID, or nil if no such
	// object exists.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object, or nil
	Get(id uint64) game_object.GameObject

	// Remove unregisters the object with the given ID.
	//
	// Parameters:
	//   - id: the object ID
	Remove(id uint64)

	// Clear unregisters every object.
	Clear()

	// AddLight adds a light to the scene's rig.
	//
	// Parameters:
	//   - l: the light to add
	//
	// Returns:
	//   - error: error when the rig already holds the maximum light count
	AddLight(l light.Light) error

	// RemoveLight removes a light from the rig by identity.
	//
	// Parameters:
	//   - l: the light to remove
	RemoveLight(l light.Light)

	// DetachLight stops syncing the object's attached light from its
	// transform. The light itself stays in the rig.
	//
	// Parameters:
	//   - obj: the object whose light to detach
	DetachLight(obj game_object.GameObject)

	// Lights returns a copy of the light rig.
	//
	// Returns:
	//   - []light.Light: the scene's lights
	Lights() []light.Light

	// ShadowsEnabled returns whether shadow rendering is enabled.
	ShadowsEnabled() bool

	// SetShadowsEnabled toggles shadow rendering at runtime. While disabled
	// the shadow passes are skipped and the lit shaders treat every fragment
	// as fully lit.
	//
	// Parameters:
	//   - enabled: true to render shadows
	SetShadowsEnabled(enabled bool)

	// DepthViewEnabled returns whether the depth visualization pass is active.
	DepthViewEnabled() bool

	// SetDepthViewEnabled swaps the lit pass for a pass that redraws the
	// scene geometry as linearized grayscale depth.
	//
	// Parameters:
	//   - enabled: true to draw linearized depth instead of the lit scene
	SetDepthViewEnabled(enabled bool)

	// AddBillboard adds a camera-facing alpha-tested quad anchored at a world
	// position. All billboards share the texture set via SetBillboardTexture.
	//
	// Parameters:
	//   - x, y, z: world-space anchor of the quad center
	//   - width, height: quad size in world units
	//
	// Returns:
	//   - error: error when the billboard capacity is reached
	AddBillboard(x, y, z, width, height float32) error

	// SetBillboardTexture sets the shared billboard texture. Must be called
	// before InitLighting; billboards are skipped when no texture is set.
	//
	// Parameters:
	//   - tex: the imported texture, expected to carry an alpha channel
	SetBillboardTexture(tex *common.ImportedTexture)

	// BillboardCount returns the number of registered billboards.
	BillboardCount() int

	// InitLighting registers the scene's pipelines and creates the GPU
	// resources for lighting and shadows. The shadow technique follows the
	// first enabled shadow-casting light: a point light selects cube shadows,
	// a directional light selects the 2D shadow map. Must be called once,
	// after lights are added and before the first frame.
	//
	// Returns:
	//   - error: error when GPU resource creation fails
	InitLighting() error

	// PrepareInstances runs the per-frame CPU prep phase: advances object
	// rotations, packs per-instance matrices in parallel across the compute
	// pool, syncs attached light positions, and uploads the camera, light,
	// instance and billboard buffers in one coalesced write batch.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	//
	// Returns:
	//   - error: error when GPU resource creation for new groups fails
	PrepareInstances(deltaTime float32) error

	// PrepareShadows records this frame's shadow render passes. Cube mode
	// renders six faces off one command encoder, selecting each face's
	// view-projection with a dynamic uniform offset; directional mode renders
	// a single depth-only pass. A no-op while shadows are disabled or no
	// caster is present.
	//
	// Returns:
	//   - error: error when recording a shadow pass fails
	PrepareShadows() error

	// DrawCalls records the scene's draw calls into the current frame: one
	// instanced draw per model group followed by the billboard pass, or the
	// depth visualization pass when enabled.
	//
	// Returns:
	//   - error: error when a draw call fails
	DrawCalls() error

	// LightBindGroupProvider returns the provider holding the light rig's
	// uniform buffers. Nil before InitLighting.
	LightBindGroupProvider() bind_group_provider.BindGroupProvider

	// ShadowLitBindGroupProvider returns the provider holding the shadow
	// resources sampled by the lit pass. Nil before InitLighting.
	ShadowLitBindGroupProvider() bind_group_provider.BindGroupProvider
}

// drawGroup batches every object sharing a Model into one instanced draw.
type drawGroup struct {
	mdl model.Model
	mat material.Material

	objects   []game_object.GameObject
	instances []model.GPUInstance

	instanceProvider bind_group_provider.BindGroupProvider
	capacity         int

	// instanceData is the marshaled scratch buffer reused each frame.
	instanceData []byte

	meshReady bool
}

// packInstances advances each object's continuous rotation, syncs attached
// light positions, and rebuilds the group's instance list from the enabled
// objects' transforms. Runs on a worker goroutine during the prep phase;
// groups never share objects, so no locking is needed here.
//
// When cull is non-nil, objects whose bounding sphere falls fully outside the
// frustum are dropped from the instance list. The scene only culls while no
// shadow pass runs, since the instance buffer feeds the shadow pass too and
// off-screen geometry still casts visible shadows.
//
// Parameters:
//   - deltaTime: seconds since the previous frame
//   - cull: camera frustum to cull against, or nil to keep every object
//
// Returns:
//   - int: the number of packed instances
func (g *drawGroup) packInstances(deltaTime float32, cull *common.Frustum) int {
	if cap(g.instances) < len(g.objects) {
		g.instances = make([]model.GPUInstance, 0, len(g.objects))
	}
	g.instances = g.instances[:0]

	var m [16]float32
	for _, obj := range g.objects {
		pos, scale, rot, rotSpeed := obj.TransformData()
		if rotSpeed != ([3]float32{}) {
			rot[0] += rotSpeed[0] * deltaTime
			rot[1] += rotSpeed[1] * deltaTime
			rot[2] += rotSpeed[2] * deltaTime
			obj.SetRotation(rot[0], rot[1], rot[2])
		}
		if l := obj.Light(); l != nil {
			l.SetPosition(pos[0], pos[1], pos[2])
		}
		if !obj.Enabled() {
			continue
		}
		if cull != nil {
			radius := g.mdl.BoundingRadius() * max(scale[0], scale[1], scale[2])
			if radius > 0 && !cull.ContainsSphere(pos[0], pos[1], pos[2], radius) {
				continue
			}
		}

		common.BuildModelMatrix(m[:],
			pos[0], pos[1], pos[2],
			rot[0], rot[1], rot[2],
			scale[0], scale[1], scale[2],
		)
		var inst model.GPUInstance
		inst.SetModel(m[:])
		g.instances = append(g.instances, inst)
	}
	return len(g.instances)
}

// marshalInstances packs the group's instances into the reused scratch
// buffer.
//
// Returns:
//   - []byte: the packed instance data
func (g *drawGroup) marshalInstances() []byte {
	var inst model.GPUInstance
	stride := inst.Size()
	need := len(g.instances) * stride
	if cap(g.instanceData) < need {
		g.instanceData = make([]byte, need)
	}
	g.instanceData = g.instanceData[:need]
	for i := range g.instances {
		copy(g.instanceData[i*stride:], g.instances[i].Marshal())
	}
	return g.instanceData
}

// scene is the unexported implementation of Scene.
type scene struct {
	mu sync.RWMutex

	name   string
	active bool
	cam    camera.Camera
	r      renderer.Renderer

	nextID     uint64
	registry   map[uint64]game_object.GameObject
	groups     []*drawGroup
	groupIndex map[model.Model]*drawGroup

	lights       []light.Light
	shadowCaster light.Light

	shadowsEnabled   bool
	depthViewEnabled bool
	lightingReady    bool

	mode              shadowMode
	litPipelineKey    string
	shadowPipelineKey string

	lightProvider      bind_group_provider.BindGroupProvider
	shadowLitProvider  bind_group_provider.BindGroupProvider
	shadowPassProvider bind_group_provider.BindGroupProvider
	cameraProvider     bind_group_provider.BindGroupProvider

	cubeFaceViews [light.ShadowFaceCount]*wgpu.TextureView
	cubeDepthView *wgpu.TextureView
	dirDepthView  *wgpu.TextureView

	shadowData            light.GPUShadowData
	shadowHalfExtent      float32
	shadowNear            float32
	shadowFar             float32
	shadowBias            float32
	shadowNormalBiasScale float32
	shadowMapResolution   int

	billboards *billboardSet

	// Per-frame scratch slices reused to avoid steady-state allocations.
	writePool          []bind_group_provider.BufferWrite
	drawBindGroupsPool []bind_group_provider.BindGroupProvider

	// computePool runs the parallel instance packing during PrepareInstances.
	// Workers persist across frames, avoiding per-frame goroutine churn.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene bound to a camera and renderer.
//
// Parameters:
//   - cam: the scene camera, must be non-nil
//   - r: the renderer, must be non-nil
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: camera must not be nil")
	}
	if r == nil {
		panic("scene: renderer must not be nil")
	}

	s := &scene{
		name:                  "scene",
		active:                true,
		cam:                   cam,
		r:                     r,
		nextID:                1,
		registry:              make(map[uint64]game_object.GameObject),
		groupIndex:            make(map[model.Model]*drawGroup),
		shadowsEnabled:        true,
		billboards:            newBillboardSet(),
		shadowHalfExtent:      light.DefaultShadowHalfExtent,
		shadowNear:            light.DefaultShadowNear,
		shadowFar:             light.DefaultShadowFar,
		shadowBias:            light.DefaultShadowBias,
		shadowNormalBiasScale: light.DefaultShadowNormalBiasScale,
		shadowMapResolution:   light.ShadowMapResolution,
		computeWorkers:        max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(s)
	}

	// The pool is created after options so WithComputeWorkers applies.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(obj)
}

// addLocked registers an object; the caller must hold the write lock.
func (s *scene) addLocked(obj game_object.GameObject) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	}
	s.registry[obj.ID()] = obj

	mdl := obj.Model()
	if mdl == nil {
		return obj.ID()
	}
	g, ok := s.groupIndex[mdl]
	if !ok {
		g = &drawGroup{mdl: mdl}
		if mats := mdl.RenderMaterials(); len(mats) > 0 {
			g.mat = mats[0]
		} else {
			g.mat = material.NewMaterial(material.WithName(mdl.Name()))
		}
		s.groupIndex[mdl] = g
		s.groups = append(s.groups, g)
	}
	g.objects = append(g.objects, obj)
	return obj.ID()
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.registry[id]
	if !ok {
		return
	}
	delete(s.registry, id)

	if mdl := obj.Model(); mdl != nil {
		if g, ok := s.groupIndex[mdl]; ok {
			for i, o := range g.objects {
				if o.ID() == id {
					g.objects = append(g.objects[:i], g.objects[i+1:]...)
					break
				}
			}
		}
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry = make(map[uint64]game_object.GameObject)
	for _, g := range s.groups {
		g.objects = g.objects[:0]
	}
}

func (s *scene) AddLight(l light.Light) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lights) >= light.MaxLights {
		return fmt.Errorf("scene: light rig is full, max %d lights", light.MaxLights)
	}
	s.lights = append(s.lights, l)
	return nil
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.lights {
		if existing == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			break
		}
	}
	if s.shadowCaster == l {
		s.shadowCaster = nil
	}
}

func (s *scene) DetachLight(obj game_object.GameObject) {
	obj.SetLight(nil)
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]light.Light, len(s.lights))
	copy(out, s.lights)
	return out
}

func (s *scene) ShadowsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadowsEnabled
}

func (s *scene) SetShadowsEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shadowsEnabled = enabled
}

func (s *scene) DepthViewEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.depthViewEnabled
}

func (s *scene) SetDepthViewEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depthViewEnabled = enabled
}

func (s *scene) AddBillboard(x, y, z, width, height float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.billboards.add(x, y, z, width, height) {
		return fmt.Errorf("scene: billboard cap of %d reached", MaxBillboards)
	}
	return nil
}

func (s *scene) SetBillboardTexture(tex *common.ImportedTexture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.billboards.texture = tex
}

func (s *scene) BillboardCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.billboards.count()
}

func (s *scene) LightBindGroupProvider() bind_group_provider.BindGroupProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lightProvider
}

func (s *scene) ShadowLitBindGroupProvider() bind_group_provider.BindGroupProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadowLitProvider
}

// orderedLights returns the rig with the shadow caster moved to slot 0, the
// slot both lit shader variants read their shadowed light from.
func (s *scene) orderedLights() []light.Light {
	out := make([]light.Light, 0, len(s.lights))
	if s.shadowCaster != nil {
		out = append(out, s.shadowCaster)
	}
	for _, l := range s.lights {
		if l != s.shadowCaster {
			out = append(out, l)
		}
	}
	return out
}

// litShader returns the registered lit pipeline's vertex shader, which is
// the single source of truth for the scene's bind group layouts.
func (s *scene) litShader() shader.Shader {
	p := s.r.Pipeline(s.litPipelineKey)
	if p == nil {
		return nil
	}
	return p.Shader(shader.ShaderTypeVertex)
}

// findGroup locates the bind group declaring a variable by iterating the
// shader's parsed group map.
//
// Parameters:
//   - sh: the shader to inspect
//   - varName: the WGSL variable name to locate
//
// Returns:
//   - int: the group index, or -1 when not declared
func findGroup(sh shader.Shader, varName string) int {
	for group := range sh.BindGroupVarNames() {
		if _, ok := sh.BindGroupFromVarName(group, varName); ok {
			return group
		}
	}
	return -1
}

func (s *scene) InitLighting() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lightingReady {
		return errors.New("scene: lighting already initialized")
	}

	// The shadow technique follows the first enabled caster's light type.
	for _, l := range s.lights {
		if l.Enabled() && l.CastsShadows() {
			s.shadowCaster = l
			break
		}
	}
	s.mode = shadowModeCube
	s.litPipelineKey = PipelineKeyModel
	s.shadowPipelineKey = PipelineKeyShadowCube
	if s.shadowCaster != nil && s.shadowCaster.Type() == light.LightTypeDirectional {
		s.mode = shadowModeDirectional
		s.litPipelineKey = PipelineKeyModelDir
		s.shadowPipelineKey = PipelineKeyShadowMap
	}

	needed := map[string]bool{
		s.litPipelineKey:     true,
		s.shadowPipelineKey:  true,
		PipelineKeyBillboard: true,
		PipelineKeyDepthView: true,
	}
	for _, p := range buildPipelines() {
		if !needed[p.PipelineKey()] {
			continue
		}
		if err := s.r.RegisterPipelines(p); err != nil {
			return fmt.Errorf("scene: failed to register pipeline %s: %w", p.PipelineKey(), err)
		}
	}

	litShader := s.litShader()
	if litShader == nil {
		return fmt.Errorf("scene: lit pipeline %s has no vertex shader", s.litPipelineKey)
	}

	cameraGroup := findGroup(litShader, "camera")
	lightGroup := findGroup(litShader, "lights")
	shadowGroup := findGroup(litShader, "shadow_cube")
	if shadowGroup < 0 {
		shadowGroup = findGroup(litShader, "shadow_map")
	}
	if cameraGroup < 0 || lightGroup < 0 || shadowGroup < 0 {
		return errors.New("scene: lit shader is missing camera, lights, or shadow declarations")
	}

	if s.cam.BindGroupProvider() == nil {
		provider := bind_group_provider.NewBindGroupProvider("camera")
		if err := s.r.InitBindGroup(provider, litShader.BindGroupLayoutDescriptor(cameraGroup), nil, nil); err != nil {
			return fmt.Errorf("scene: failed to init camera bind group: %w", err)
		}
		s.cam.SetBindGroupProvider(provider)
	}
	s.cameraProvider = s.cam.BindGroupProvider()

	s.lightProvider = bind_group_provider.NewBindGroupProvider("scene_lights")
	if err := s.r.InitBindGroup(s.lightProvider, litShader.BindGroupLayoutDescriptor(lightGroup), nil, nil); err != nil {
		return fmt.Errorf("scene: failed to init light bind group: %w", err)
	}

	if err := s.initShadowResources(litShader, shadowGroup); err != nil {
		return err
	}
	if err := s.initBillboardResources(); err != nil {
		return err
	}

	s.lightingReady = true
	return nil
}

// initShadowResources creates the shadow render targets, samplers, and bind
// groups for the inferred shadow mode.
func (s *scene) initShadowResources(litShader shader.Shader, shadowGroup int) error {
	shadowShader := s.r.Pipeline(s.shadowPipelineKey).Shader(shader.ShaderTypeVertex)
	if shadowShader == nil {
		return fmt.Errorf("scene: shadow pipeline %s has no vertex shader", s.shadowPipelineKey)
	}

	switch s.mode {
	case shadowModeCube:
		cubeView, faceViews, _, err := s.r.CreateShadowCubeTexture(s.shadowMapResolution)
		if err != nil {
			return fmt.Errorf("scene: failed to create cube shadow texture: %w", err)
		}
		s.cubeFaceViews = faceViews

		depthView, _, err := s.r.CreateCubeDepthTexture(s.shadowMapResolution)
		if err != nil {
			return fmt.Errorf("scene: failed to create cube shadow depth texture: %w", err)
		}
		s.cubeDepthView = depthView

		sampler, err := s.r.CreateCubeSampler()
		if err != nil {
			return fmt.Errorf("scene: failed to create cube shadow sampler: %w", err)
		}

		s.shadowLitProvider = bind_group_provider.NewBindGroupProvider("shadow_cube_lit")
		s.shadowLitProvider.SetTextureView(0, cubeView)
		s.shadowLitProvider.SetSampler(1, sampler)
		if err := s.r.InitBindGroup(s.shadowLitProvider, litShader.BindGroupLayoutDescriptor(shadowGroup), nil, nil); err != nil {
			return fmt.Errorf("scene: failed to init cube shadow bind group: %w", err)
		}

		// One buffer holds all six face uniforms at the dynamic-offset
		// stride; each face pass selects its slice at draw time.
		s.shadowPassProvider = bind_group_provider.NewBindGroupProvider("shadow_faces")
		faceBufferSize := uint64(light.ShadowFaceCount * light.ShadowFaceUniformStride)
		if err := s.r.InitBindGroup(s.shadowPassProvider, shadowShader.BindGroupLayoutDescriptor(0), nil, map[int]uint64{0: faceBufferSize}); err != nil {
			return fmt.Errorf("scene: failed to init shadow face bind group: %w", err)
		}

	case shadowModeDirectional:
		depthView, _, err := s.r.CreateShadowDepthTexture(s.shadowMapResolution, s.shadowMapResolution)
		if err != nil {
			return fmt.Errorf("scene: failed to create shadow depth texture: %w", err)
		}
		s.dirDepthView = depthView

		sampler, err := s.r.CreateComparisonSampler()
		if err != nil {
			return fmt.Errorf("scene: failed to create comparison sampler: %w", err)
		}

		s.shadowLitProvider = bind_group_provider.NewBindGroupProvider("shadow_map_lit")
		s.shadowLitProvider.SetTextureView(0, depthView)
		s.shadowLitProvider.SetSampler(1, sampler)
		if err := s.r.InitBindGroup(s.shadowLitProvider, litShader.BindGroupLayoutDescriptor(shadowGroup), nil, nil); err != nil {
			return fmt.Errorf("scene: failed to init shadow map bind group: %w", err)
		}

		s.shadowPassProvider = bind_group_provider.NewBindGroupProvider("shadow_data")
		if err := s.r.InitBindGroup(s.shadowPassProvider, shadowShader.BindGroupLayoutDescriptor(0), nil, nil); err != nil {
			return fmt.Errorf("scene: failed to init shadow data bind group: %w", err)
		}

		texel := 1.0 / float32(s.shadowMapResolution)
		s.shadowData.TexelSize = [2]float32{texel, texel}
		s.shadowData.Bias = s.shadowBias
		s.shadowData.ComputeNormalBias(s.shadowHalfExtent, s.shadowNormalBiasScale, s.shadowMapResolution)
	}

	return nil
}

// initBillboardResources uploads the shared quad mesh and creates the matrix
// storage buffer and texture group. Skipped when no billboard texture is set.
func (s *scene) initBillboardResources() error {
	if s.billboards.texture == nil {
		return nil
	}

	billboardShader := s.r.Pipeline(PipelineKeyBillboard).Shader(shader.ShaderTypeVertex)
	if billboardShader == nil {
		return errors.New("scene: billboard pipeline has no vertex shader")
	}

	vertices, indices := model.NewQuad()
	var sv model.GPUSimpleVertex
	vertexData := make([]byte, 0, len(vertices)*sv.Size())
	for i := range vertices {
		vertexData = append(vertexData, vertices[i].Marshal()...)
	}
	indexData := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(indexData[i*4:], idx)
	}

	s.billboards.meshProvider = bind_group_provider.NewBindGroupProvider("billboard_quad")
	if err := s.r.InitMeshBuffers(s.billboards.meshProvider, vertexData, indexData, len(indices)); err != nil {
		return fmt.Errorf("scene: failed to init billboard mesh: %w", err)
	}

	s.billboards.matrixProvider = bind_group_provider.NewBindGroupProvider("billboard_matrices")
	matrixBufferSize := uint64(MaxBillboards * billboardMatrixStride)
	if err := s.r.InitBindGroup(s.billboards.matrixProvider, billboardShader.BindGroupLayoutDescriptor(0), nil, map[int]uint64{0: matrixBufferSize}); err != nil {
		return fmt.Errorf("scene: failed to init billboard matrix bind group: %w", err)
	}

	pixels, width, height, err := s.billboards.texture.Decode()
	if err != nil {
		return fmt.Errorf("scene: failed to decode billboard texture: %w", err)
	}
	s.billboards.materialProvider = bind_group_provider.NewBindGroupProvider("billboard_material")
	staging := common.TextureStagingData{Pixels: pixels, Width: width, Height: height}
	if err := s.r.InitTextureView(s.billboards.materialProvider, 0, staging); err != nil {
		return fmt.Errorf("scene: failed to init billboard texture: %w", err)
	}
	if err := s.r.InitSampler(s.billboards.materialProvider, 1, common.SamplerStagingData{}); err != nil {
		return fmt.Errorf("scene: failed to init billboard sampler: %w", err)
	}
	if err := s.r.InitBindGroup(s.billboards.materialProvider, billboardShader.BindGroupLayoutDescriptor(2), nil, nil); err != nil {
		return fmt.Errorf("scene: failed to init billboard material bind group: %w", err)
	}

	s.billboards.initialized = true
	return nil
}

// ensureGroupResources lazily uploads a group's mesh and material the first
// frame it is drawn, so objects can be added after InitLighting.
func (s *scene) ensureGroupResources(g *drawGroup) error {
	if !g.meshReady {
		mesh := g.mdl.MeshProvider()
		if mesh == nil {
			return fmt.Errorf("scene: model %s has no mesh provider", g.mdl.Name())
		}
		if mesh.VertexBuffer() == nil {
			if err := s.r.InitMeshBuffers(mesh, g.mdl.VertexData(), g.mdl.IndexData(), g.mdl.IndexCount()); err != nil {
				return fmt.Errorf("scene: failed to init mesh buffers for %s: %w", g.mdl.Name(), err)
			}
		}
		g.meshReady = true
	}

	if g.mat.BindGroupProvider() == nil {
		if err := s.initMaterial(g.mat); err != nil {
			return fmt.Errorf("scene: failed to init material for %s: %w", g.mdl.Name(), err)
		}
	}
	return nil
}

// initMaterial creates the GPU texture set for a material, substituting a
// 1x1 white diffuse and a flat normal when the material has no textures.
func (s *scene) initMaterial(mat material.Material) error {
	litShader := s.litShader()
	materialGroup := findGroup(litShader, "diffuse_texture")
	if materialGroup < 0 {
		return errors.New("lit shader is missing material declarations")
	}

	provider := bind_group_provider.NewBindGroupProvider("material_" + mat.Name())

	diffuse := common.TextureStagingData{
		Pixels: []byte{255, 255, 255, 255},
		Width:  1,
		Height: 1,
	}
	if tex := mat.DiffuseTexture(); tex != nil {
		pixels, width, height, err := tex.Decode()
		if err != nil {
			return fmt.Errorf("failed to decode diffuse texture: %w", err)
		}
		diffuse = common.TextureStagingData{Pixels: pixels, Width: width, Height: height}
	}
	if err := s.r.InitTextureView(provider, 0, diffuse); err != nil {
		return err
	}
	if err := s.r.InitSampler(provider, 1, common.SamplerStagingData{}); err != nil {
		return err
	}

	// The flat tangent-space normal (0, 0, 1) encodes to (128, 128, 255).
	normal := common.TextureStagingData{
		Pixels: []byte{128, 128, 255, 255},
		Width:  1,
		Height: 1,
		Linear: true,
	}
	if tex := mat.NormalTexture(); tex != nil {
		pixels, width, height, err := tex.Decode()
		if err != nil {
			return fmt.Errorf("failed to decode normal texture: %w", err)
		}
		normal = common.TextureStagingData{Pixels: pixels, Width: width, Height: height, Linear: true}
	}
	if err := s.r.InitTextureView(provider, 2, normal); err != nil {
		return err
	}
	if err := s.r.InitSampler(provider, 3, common.SamplerStagingData{}); err != nil {
		return err
	}

	if err := s.r.InitBindGroup(provider, litShader.BindGroupLayoutDescriptor(materialGroup), nil, nil); err != nil {
		return err
	}

	params := material.GPUMaterialParams{BaseColor: mat.BaseColor()}
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: provider, Binding: 4, Offset: 0, Data: params.Marshal()},
	})

	mat.SetBindGroupProvider(provider)
	return nil
}

// ensureInstanceCapacity grows a group's instance storage buffer when the
// instance count exceeds its capacity. The bind group references the buffer
// directly, so growth replaces the whole provider.
func (s *scene) ensureInstanceCapacity(g *drawGroup, count int) error {
	if g.instanceProvider != nil && count <= g.capacity {
		return nil
	}

	capacity := max(count, g.capacity*2, 16)
	if g.instanceProvider != nil {
		g.instanceProvider.Release()
	}

	litShader := s.litShader()
	instanceGroup := findGroup(litShader, "instances")
	if instanceGroup < 0 {
		return errors.New("scene: lit shader is missing instance declarations")
	}

	var inst model.GPUInstance
	provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("instances_%s_%d", g.mdl.Name(), capacity))
	size := uint64(capacity * inst.Size())
	if err := s.r.InitBindGroup(provider, litShader.BindGroupLayoutDescriptor(instanceGroup), nil, map[int]uint64{0: size}); err != nil {
		return fmt.Errorf("scene: failed to init instance bind group for %s: %w", g.mdl.Name(), err)
	}

	g.instanceProvider = provider
	g.capacity = capacity
	return nil
}

func (s *scene) PrepareInstances(deltaTime float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lightingReady {
		return errors.New("scene: InitLighting must be called before PrepareInstances")
	}

	s.cam.Update()

	// Frustum culling only applies while no shadow pass runs; the shadow pass
	// shares the instance buffers and needs off-screen casters.
	var cull *common.Frustum
	if !s.shadowsEnabled || s.shadowCaster == nil {
		vp := s.cam.ViewProjectionMatrix()
		f := common.ExtractFrustumFromMatrix(vp[:])
		cull = &f
	}

	// Instance packing fans out across the compute pool, one task per group.
	// A WaitGroup provides the frame barrier since the pool's own Wait
	// blocks until workers idle-exit, which is unsuitable per-frame.
	var wg sync.WaitGroup
	for i, g := range s.groups {
		if len(g.objects) == 0 {
			g.instances = g.instances[:0]
			continue
		}
		wg.Add(1)
		group := g
		s.computePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				group.packInstances(deltaTime, cull)
				return nil, nil
			},
		})
	}
	wg.Wait()

	writes := s.writePool[:0]

	var camUniform camera.GPUCameraUniform
	if ctrl := s.cam.Controller(); ctrl != nil {
		x, y, z := ctrl.Position()
		camUniform.ViewPosition = [4]float32{x, y, z, 1}
	}
	camUniform.ViewProj = s.cam.ViewProjectionMatrix()
	writes = append(writes, bind_group_provider.BufferWrite{
		Provider: s.cameraProvider,
		Binding:  0,
		Data:     camUniform.Marshal(),
	})

	lightData, err := light.MarshalLights(s.orderedLights())
	if err != nil {
		return fmt.Errorf("scene: failed to marshal lights: %w", err)
	}
	var config light.GPULightConfig
	if s.shadowsEnabled && s.shadowCaster != nil {
		config.ShadowsEnabled = 1
	}
	writes = append(writes,
		bind_group_provider.BufferWrite{Provider: s.lightProvider, Binding: 0, Data: lightData},
		bind_group_provider.BufferWrite{Provider: s.lightProvider, Binding: 1, Data: config.Marshal()},
	)

	for _, g := range s.groups {
		if len(g.instances) == 0 {
			continue
		}
		if err := s.ensureGroupResources(g); err != nil {
			return err
		}
		if err := s.ensureInstanceCapacity(g, len(g.instances)); err != nil {
			return err
		}
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: g.instanceProvider,
			Binding:  0,
			Data:     g.marshalInstances(),
		})
	}

	if s.billboards.initialized && s.billboards.count() > 0 {
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: s.billboards.matrixProvider,
			Binding:  0,
			Data:     s.billboards.marshalMatrices(s.cam.ViewMatrix()),
		})
	}

	s.r.WriteBuffers(writes)
	s.writePool = writes[:0]
	return nil
}

func (s *scene) PrepareShadows() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lightingReady {
		return errors.New("scene: InitLighting must be called before PrepareShadows")
	}
	if !s.shadowsEnabled || s.shadowCaster == nil {
		return nil
	}

	switch s.mode {
	case shadowModeCube:
		return s.prepareCubeShadows()
	case shadowModeDirectional:
		return s.prepareDirectionalShadows()
	}
	return nil
}

// prepareCubeShadows renders the point light's six distance-map faces. All
// face uniforms are written up front at the dynamic-offset stride and each
// face pass selects its slice, so the full cube costs one buffer write batch
// and one encoder submit.
func (s *scene) prepareCubeShadows() error {
	faces := light.ComputeCubeFaces(s.shadowCaster.Position())

	writes := s.writePool[:0]
	for i := range faces {
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: s.shadowPassProvider,
			Binding:  0,
			Offset:   uint64(i * light.ShadowFaceUniformStride),
			Data:     faces[i].Marshal(),
		})
	}
	s.r.WriteBuffers(writes)
	s.writePool = writes[:0]

	if err := s.r.BeginShadowFrame(); err != nil {
		return fmt.Errorf("scene: failed to begin shadow frame: %w", err)
	}
	for i := 0; i < light.ShadowFaceCount; i++ {
		s.r.BeginCubeShadowPass(s.cubeFaceViews[i], s.cubeDepthView)
		offsets := map[int][]uint32{0: {uint32(i * light.ShadowFaceUniformStride)}}
		for _, g := range s.groups {
			if len(g.instances) == 0 || g.instanceProvider == nil {
				continue
			}
			bindGroups := []bind_group_provider.BindGroupProvider{s.shadowPassProvider, g.instanceProvider}
			if err := s.r.ShadowDrawCall(PipelineKeyShadowCube, g.mdl.MeshProvider(), uint32(len(g.instances)), bindGroups, offsets); err != nil {
				s.r.EndShadowPass()
				s.r.EndShadowFrame()
				return fmt.Errorf("scene: cube shadow draw failed for %s: %w", g.mdl.Name(), err)
			}
		}
		s.r.EndShadowPass()
	}
	s.r.EndShadowFrame()
	return nil
}

// prepareDirectionalShadows renders the directional light's depth map. The
// shadow data uniform is shared verbatim between the depth pass and the lit
// pass, so the lit comparison uses the exact projection the map was rendered
// with.
func (s *scene) prepareDirectionalShadows() error {
	s.shadowData.ComputeDirectionalLightVP(
		s.shadowCaster.Direction(),
		0, 0, 0,
		s.shadowHalfExtent, s.shadowNear, s.shadowFar,
	)
	data := s.shadowData.Marshal()

	writes := s.writePool[:0]
	writes = append(writes,
		bind_group_provider.BufferWrite{Provider: s.shadowPassProvider, Binding: 0, Data: data},
		bind_group_provider.BufferWrite{Provider: s.shadowLitProvider, Binding: 2, Data: data},
	)
	s.r.WriteBuffers(writes)
	s.writePool = writes[:0]

	if err := s.r.BeginShadowFrame(); err != nil {
		return fmt.Errorf("scene: failed to begin shadow frame: %w", err)
	}
	s.r.BeginShadowPass(s.dirDepthView)
	for _, g := range s.groups {
		if len(g.instances) == 0 || g.instanceProvider == nil {
			continue
		}
		bindGroups := []bind_group_provider.BindGroupProvider{s.shadowPassProvider, g.instanceProvider}
		if err := s.r.ShadowDrawCall(PipelineKeyShadowMap, g.mdl.MeshProvider(), uint32(len(g.instances)), bindGroups, nil); err != nil {
			s.r.EndShadowPass()
			s.r.EndShadowFrame()
			return fmt.Errorf("scene: shadow map draw failed for %s: %w", g.mdl.Name(), err)
		}
	}
	s.r.EndShadowPass()
	s.r.EndShadowFrame()
	return nil
}

func (s *scene) DrawCalls() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lightingReady {
		return errors.New("scene: InitLighting must be called before DrawCalls")
	}
	if !s.active {
		return nil
	}

	for _, g := range s.groups {
		if len(g.instances) == 0 || g.instanceProvider == nil {
			continue
		}

		bindGroups := s.drawBindGroupsPool[:0]
		key := s.litPipelineKey
		if s.depthViewEnabled {
			key = PipelineKeyDepthView
			bindGroups = append(bindGroups, g.instanceProvider, s.cameraProvider)
		} else {
			bindGroups = append(bindGroups,
				g.instanceProvider,
				s.cameraProvider,
				g.mat.BindGroupProvider(),
				s.lightProvider,
				s.shadowLitProvider,
			)
		}

		err := s.r.DrawCall(key, g.mdl.MeshProvider(), uint32(len(g.instances)), bindGroups)
		s.drawBindGroupsPool = bindGroups[:0]
		if err != nil {
			return fmt.Errorf("scene: draw failed for %s: %w", g.mdl.Name(), err)
		}
	}

	if !s.depthViewEnabled && s.billboards.initialized && s.billboards.count() > 0 {
		bindGroups := []bind_group_provider.BindGroupProvider{
			s.billboards.matrixProvider,
			s.cameraProvider,
			s.billboards.materialProvider,
		}
		if err := s.r.DrawCall(PipelineKeyBillboard, s.billboards.meshProvider, uint32(s.billboards.count()), bindGroups); err != nil {
			return fmt.Errorf("scene: billboard draw failed: %w", err)
		}
	}

	return nil
}
