package loader

import (
	"io"

	"github.com/Carmen-Shannon/kanvas-go/engine/model"
)

// MaterialResolver opens a material library referenced by name from a model
// stream (an mtllib directive). The caller closes the returned reader.
type MaterialResolver func(ref string) (io.ReadCloser, error)

// loaderBackend defines the generic interface for loading models from files
// or streams. Concrete implementations (objLoaderBackend) handle the
// format-specific details.
type loaderBackend interface {
	// Load performs a full model import from the given file path, including
	// any material libraries the file references.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	Load(path string) (*model.ImportedModel, error)

	// LoadReader imports a model from a reader stream. Material library
	// references are opened through the resolver; a nil resolver skips
	// material loading.
	//
	// Parameters:
	//   - name: the model identifier
	//   - r: the reader providing model data
	//   - resolve: opens referenced material libraries, may be nil
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, resolve MaterialResolver) (*model.ImportedModel, error)
}
