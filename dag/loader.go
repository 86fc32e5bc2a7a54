package dag

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kbukum/dagpipe/errors"
)

// Loader loads pipeline definitions by name.
type Loader interface {
	Load(name string) (*Definition, error)
}

// FileLoader loads definitions from YAML files on disk.
type FileLoader struct {
	dirs []string
}

// NewFileLoader creates a loader that searches the given directories.
func NewFileLoader(dirs ...string) *FileLoader {
	return &FileLoader{dirs: dirs}
}

// Load searches each directory, then its subdirectories, for {name}.yaml or
// {name}.yml. The first match wins.
func (l *FileLoader) Load(name string) (*Definition, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return LoadDefinition(path)
			}
		}

		var found string
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			base := d.Name()
			if base == name+".yaml" || base == name+".yml" {
				found = path
				return fs.SkipAll
			}
			return nil
		})
		if found != "" {
			return LoadDefinition(found)
		}
	}
	return nil, errors.NotFound("pipeline definition", name).WithDetail("dirs", l.dirs)
}

// LoadDefinition reads and parses one definition file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NotFound("pipeline definition", path).WithCause(err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr.WithDetail("path", path)
		}
		return nil, err
	}
	return def, nil
}

// MapLoader serves definitions from memory.
type MapLoader map[string]*Definition

// Load returns the definition registered under name.
func (m MapLoader) Load(name string) (*Definition, error) {
	def, ok := m[name]
	if !ok {
		return nil, errors.NotFound("pipeline definition", name)
	}
	return def, nil
}
