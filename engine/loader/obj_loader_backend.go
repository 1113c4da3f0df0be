package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/kanvas-go/common"
	"github.com/Carmen-Shannon/kanvas-go/engine/model"
)

// objLoaderBackend implements loaderBackend for Wavefront OBJ and MTL files.
type objLoaderBackend struct{}

func newOBJLoaderBackend() loaderBackend {
	return &objLoaderBackend{}
}

var _ loaderBackend = &objLoaderBackend{}

func (b *objLoaderBackend) Load(path string) (*model.ImportedModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	resolve := func(ref string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(dir, ref))
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	imported, err := b.load(name, f, resolve)
	if err != nil {
		return nil, err
	}

	// texture paths in the mtl are relative to the model's directory
	for i := range imported.Materials {
		anchorTexturePaths(&imported.Materials[i], dir)
	}
	return imported, nil
}

func (b *objLoaderBackend) LoadReader(name string, r io.Reader, resolve MaterialResolver) (*model.ImportedModel, error) {
	return b.load(name, r, resolve)
}

// load parses the OBJ stream, pulls in its material libraries through the
// resolver, and binds each mesh to its material by usemtl name.
func (b *objLoaderBackend) load(name string, r io.Reader, resolve MaterialResolver) (*model.ImportedModel, error) {
	doc, err := parseOBJ(r)
	if err != nil {
		return nil, err
	}

	imported := &model.ImportedModel{
		Name:   name,
		Meshes: doc.Meshes,
	}

	materialIndex := make(map[string]int)
	for _, lib := range doc.MaterialLibs {
		if resolve == nil {
			break
		}
		src, err := resolve(lib)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve material library %s: %w", lib, err)
		}
		mats, err := parseMTL(src)
		src.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse material library %s: %w", lib, err)
		}
		for _, mat := range mats {
			if _, exists := materialIndex[mat.Name]; exists {
				continue
			}
			materialIndex[mat.Name] = len(imported.Materials)
			imported.Materials = append(imported.Materials, mat)
		}
	}

	for i := range imported.Meshes {
		imported.Meshes[i].MaterialIndex = -1
		if idx, ok := materialIndex[doc.MaterialNames[i]]; ok {
			imported.Meshes[i].MaterialIndex = idx
		}
	}
	return imported, nil
}

// anchorTexturePaths resolves a material's texture references against the
// model directory and attaches ImportedTexture handles for lazy decode.
func anchorTexturePaths(mat *common.ImportedMaterial, dir string) {
	if mat.DiffuseTexturePath != "" {
		path := filepath.Join(dir, filepath.FromSlash(mat.DiffuseTexturePath))
		mat.DiffuseTexturePath = path
		mat.DiffuseTexture = &common.ImportedTexture{Name: mat.Name + "_diffuse", Path: path}
	}
	if mat.NormalTexturePath != "" {
		path := filepath.Join(dir, filepath.FromSlash(mat.NormalTexturePath))
		mat.NormalTexturePath = path
		mat.NormalTexture = &common.ImportedTexture{Name: mat.Name + "_normal", Path: path}
	}
}
