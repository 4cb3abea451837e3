package render

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/snowflakes/internal/geom"
)

func TestExecute_PreservesOrder(t *testing.T) {
	var l List
	a, b := Mesh{ID: 1, Name: "a"}, Mesh{ID: 2, Name: "b"}
	l.Draw(a, geom.At(0, 0, 0))
	l.Draw(b, geom.At(1, 0, 0))
	l.Draw(a, geom.At(2, 0, 0))

	rec := &Recorder{}
	Execute(l, rec)

	if len(rec.Commands) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(rec.Commands))
	}
	for i, cmd := range rec.Commands {
		if cmd.Pose.Position[0] != float64(i) {
			t.Errorf("command %d out of order: %v", i, cmd.Pose)
		}
	}

	rec.Reset()
	if len(rec.Commands) != 0 || rec.Painted != 3 {
		t.Errorf("Reset: commands=%d painted=%d", len(rec.Commands), rec.Painted)
	}
}

func TestExecute_ResetsFramePainter(t *testing.T) {
	rec := &Recorder{}
	var l List
	l.Draw(Mesh{ID: 1, Name: "a"}, geom.Identity())
	l.Draw(Mesh{ID: 2, Name: "b"}, geom.Identity())
	for i := 0; i < 5; i++ {
		Execute(l, rec)
	}
	if len(rec.Commands) != len(l) {
		t.Errorf("recorder holds %d commands, want last frame's %d", len(rec.Commands), len(l))
	}
	if rec.Painted != 10 {
		t.Errorf("painted %d, want running total 10", rec.Painted)
	}
}

func TestDirProvider(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "snow-block"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "snow-block", "mesh.obj"), []byte("o block\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0755); err != nil {
		t.Fatal(err)
	}

	p := NewDirProvider(root)

	mesh, err := p.Open("snow-block/")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if mesh.Name != "snow-block" {
		t.Errorf("expected name snow-block, got %q", mesh.Name)
	}

	tests := []struct {
		dir  string
		want error
	}{
		{"missing", ErrAssetMissing},
		{"empty", ErrAssetEmpty},
	}
	for _, tt := range tests {
		_, err := p.Open(tt.dir)
		var assetErr *AssetError
		if !errors.As(err, &assetErr) {
			t.Fatalf("%s: expected *AssetError, got %v", tt.dir, err)
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.dir, tt.want, err)
		}
	}
}
