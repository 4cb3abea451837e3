package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrAssetMissing indicates the object directory does not exist.
	ErrAssetMissing = errors.New("render: asset directory missing")

	// ErrAssetEmpty indicates the object directory holds no files.
	ErrAssetEmpty = errors.New("render: asset directory empty")
)

// AssetError reports a failed mesh load with the offending path.
type AssetError struct {
	Path    string
	Wrapped error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Wrapped)
}

func (e *AssetError) Unwrap() error {
	return e.Wrapped
}

// MeshProvider opens an object directory and returns its mesh handle.
type MeshProvider interface {
	Open(dir string) (Mesh, error)
}

// DirProvider resolves object directories under Root. It only validates the
// directory; decoding the mesh files belongs to the graphics backend.
type DirProvider struct {
	Root  string
	count int
}

func NewDirProvider(root string) *DirProvider {
	return &DirProvider{Root: root}
}

func (p *DirProvider) Open(dir string) (Mesh, error) {
	path := filepath.Join(p.Root, dir)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Mesh{}, &AssetError{Path: path, Wrapped: ErrAssetMissing}
		}
		return Mesh{}, &AssetError{Path: path, Wrapped: err}
	}
	if !info.IsDir() {
		return Mesh{}, &AssetError{Path: path, Wrapped: fmt.Errorf("not a directory")}
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return Mesh{}, &AssetError{Path: path, Wrapped: err}
	}
	if len(entries) == 0 {
		return Mesh{}, &AssetError{Path: path, Wrapped: ErrAssetEmpty}
	}
	p.count++
	return Mesh{ID: p.count, Name: filepath.Base(filepath.Clean(dir))}, nil
}

// Placeholders hands out mesh handles without touching the filesystem, for
// headless runs.
type Placeholders struct {
	count int
}

func (p *Placeholders) Open(dir string) (Mesh, error) {
	p.count++
	return Mesh{ID: p.count, Name: filepath.Base(filepath.Clean(dir))}, nil
}
