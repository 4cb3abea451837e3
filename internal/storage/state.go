package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/snowflakes/internal/scene"
)

// SaveState writes app's state to path, creating parent directories.
func SaveState(path string, app scene.Stateful) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := app.SaveState(f); err != nil {
		f.Close()
		return fmt.Errorf("save state %s: %w", path, err)
	}
	return f.Close()
}

// LoadState restores app from path.
func LoadState(path string, app scene.Stateful) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := app.LoadState(f); err != nil {
		return fmt.Errorf("load state %s: %w", path, err)
	}
	return nil
}
