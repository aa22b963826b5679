package catalog

import (
	"embed"
	"os"
	"path/filepath"
)

// DefaultFile is the name of the embedded catalog.
const DefaultFile = "catalog.yaml"

//go:embed catalog.yaml
var catalogFS embed.FS

// Load reads a catalog file from disk, falling back to the embedded copy of
// the same base name.
func Load(name string) ([]byte, error) {
	if name == "" {
		name = DefaultFile
	}
	if data, err := os.ReadFile(name); err == nil {
		return data, nil
	}
	return catalogFS.ReadFile(filepath.Base(filepath.ToSlash(name)))
}
