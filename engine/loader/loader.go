package loader

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/kanvas-go/common"
	"github.com/Carmen-Shannon/kanvas-go/engine/model"
	"github.com/Carmen-Shannon/kanvas-go/engine/renderer/material"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeOBJ selects the Wavefront OBJ/MTL loader backend.
	BackendTypeOBJ LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	modelCache map[string]model.Model

	backend loaderBackend

	// tangentPool parallelizes per-mesh tangent frame generation.
	tangentPool worker.DynamicWorkerPool
}

// Loader defines the public-facing interface for loading and caching 3D
// models. It abstracts the file format behind a generic backend, generates
// tangent-space frames for normal mapping, and manages a cache of previously
// loaded models. GPU resources are not touched here; the scene uploads mesh
// and material data lazily on first draw.
type Loader interface {
	// Load imports a model file and caches the result by path. All mesh
	// groups in the file are merged into a single model; the first group's
	// material becomes the model's render material.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: error if loading fails
	Load(path string) (model.Model, error)

	// LoadMeshes imports a model file and returns one model per mesh group,
	// each bound to its own material. Groups are cached individually under
	// "path#groupname".
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - []model.Model: one model per mesh group
	//   - error: error if loading fails
	LoadMeshes(path string) ([]model.Model, error)

	// LoadReader imports a model from a reader stream and caches it by the
	// given name. Material library references are opened through the
	// resolver; pass nil to skip material loading.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//   - resolve: opens referenced material libraries, may be nil
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, resolve MaterialResolver) (model.Model, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by name
	Models() map[string]model.Model
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and
// options applied.
//
// Parameters:
//   - backendType: the loader backend to use (e.g., BackendTypeOBJ)
//   - options: functional options to configure the Loader
//
// Returns:
//   - Loader: the configured loader
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		modelCache: make(map[string]model.Model),
	}

	switch backendType {
	case BackendTypeOBJ:
		l.backend = newOBJLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}

	l.tangentPool = worker.NewDynamicWorkerPool(max(runtime.NumCPU()-1, 1), 64, 1*time.Second)
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	imported, err := l.backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	l.generateTangents(imported)

	m := l.mergedModel(imported)

	l.mu.Lock()
	l.modelCache[path] = m
	l.mu.Unlock()
	return m, nil
}

func (l *loader) LoadMeshes(path string) ([]model.Model, error) {
	imported, err := l.backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	l.generateTangents(imported)

	models := make([]model.Model, 0, len(imported.Meshes))
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range imported.Meshes {
		mesh := &imported.Meshes[i]
		key := fmt.Sprintf("%s#%s", path, mesh.Name)
		if cached, ok := l.modelCache[key]; ok {
			models = append(models, cached)
			continue
		}
		m := l.meshModel(imported, mesh)
		l.modelCache[key] = m
		models = append(models, m)
	}
	return models, nil
}

func (l *loader) LoadReader(name string, r io.Reader, resolve MaterialResolver) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	imported, err := l.backend.LoadReader(name, r, resolve)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	l.generateTangents(imported)

	m := l.mergedModel(imported)

	l.mu.Lock()
	l.modelCache[name] = m
	l.mu.Unlock()
	return m, nil
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		cp[k] = v
	}
	return cp
}

// generateTangents fills every mesh's tangent-space frames, fanning the work
// across the tangent pool since meshes are independent.
func (l *loader) generateTangents(imported *model.ImportedModel) {
	var wg sync.WaitGroup
	for i := range imported.Meshes {
		mesh := &imported.Meshes[i]
		wg.Add(1)
		l.tangentPool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				model.ComputeTangents(mesh.Vertices, mesh.Indices)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// mergedModel flattens every mesh group into one vertex/index buffer pair.
// The first group bound to a material contributes the render material.
func (l *loader) mergedModel(imported *model.ImportedModel) model.Model {
	var vertexData []byte
	var indexData []byte
	var indexCount int
	var radius float32
	var vertexOffset uint32

	for i := range imported.Meshes {
		mesh := &imported.Meshes[i]
		for j := range mesh.Vertices {
			vertexData = append(vertexData, mesh.Vertices[j].Marshal()...)
		}
		for _, idx := range mesh.Indices {
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], idx+vertexOffset)
			indexData = append(indexData, buf[:]...)
		}
		vertexOffset += uint32(len(mesh.Vertices))
		indexCount += len(mesh.Indices)
		if r := boundingRadius(mesh.BoundingMin, mesh.BoundingMax); r > radius {
			radius = r
		}
	}

	options := []model.ModelBuilderOption{
		model.WithName(imported.Name),
		model.WithVertexData(vertexData),
		model.WithIndexData(indexData),
		model.WithIndexCount(indexCount),
		model.WithBoundingRadius(radius),
		model.WithImportedMaterials(imported.Materials),
	}
	if mat := firstMaterial(imported); mat != nil {
		options = append(options, model.WithRenderMaterials(renderMaterial(*mat)))
	}
	return model.NewModel(options...)
}

// meshModel builds a standalone model from one mesh group.
func (l *loader) meshModel(imported *model.ImportedModel, mesh *model.ImportedMesh) model.Model {
	var vertexData []byte
	for j := range mesh.Vertices {
		vertexData = append(vertexData, mesh.Vertices[j].Marshal()...)
	}
	indexData := make([]byte, len(mesh.Indices)*4)
	for j, idx := range mesh.Indices {
		binary.LittleEndian.PutUint32(indexData[j*4:], idx)
	}

	options := []model.ModelBuilderOption{
		model.WithName(fmt.Sprintf("%s_%s", imported.Name, mesh.Name)),
		model.WithVertexData(vertexData),
		model.WithIndexData(indexData),
		model.WithIndexCount(len(mesh.Indices)),
		model.WithBoundingRadius(boundingRadius(mesh.BoundingMin, mesh.BoundingMax)),
		model.WithImportedMaterials(imported.Materials),
	}
	if mesh.MaterialIndex >= 0 && mesh.MaterialIndex < len(imported.Materials) {
		options = append(options, model.WithRenderMaterials(renderMaterial(imported.Materials[mesh.MaterialIndex])))
	}
	return model.NewModel(options...)
}

// firstMaterial returns the material of the first group that declares one.
func firstMaterial(imported *model.ImportedModel) *common.ImportedMaterial {
	for i := range imported.Meshes {
		idx := imported.Meshes[i].MaterialIndex
		if idx >= 0 && idx < len(imported.Materials) {
			return &imported.Materials[idx]
		}
	}
	return nil
}

// renderMaterial converts an imported material into a render material
// carrying the lazily decoded texture handles.
func renderMaterial(im common.ImportedMaterial) material.Material {
	options := []material.MaterialBuilderOption{
		material.WithName(im.Name),
		material.WithBaseColor(im.BaseColor),
	}
	if im.DiffuseTexture != nil {
		options = append(options, material.WithDiffuseTexture(im.DiffuseTexture))
	}
	if im.NormalTexture != nil {
		options = append(options, material.WithNormalTexture(im.NormalTexture))
	}
	return material.NewMaterial(options...)
}

// boundingRadius returns the distance from the origin to the farthest corner
// of the axis-aligned bounding box.
func boundingRadius(min, max [3]float32) float32 {
	var sum float64
	for k := 0; k < 3; k++ {
		extent := math.Max(math.Abs(float64(min[k])), math.Abs(float64(max[k])))
		sum += extent * extent
	}
	return float32(math.Sqrt(sum))
}
