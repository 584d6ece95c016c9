package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/r3d/internal/config"
	"github.com/Faultbox/r3d/pkg/formats"
)

const quadOBJ = `o Quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl Stone
f 1/1 2/2 3/3 4/4
`

func writeQuad(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "quad.obj")
	if err := os.WriteFile(path, []byte(quadOBJ), 0644); err != nil {
		t.Fatalf("writing OBJ: %v", err)
	}
	return path
}

func TestRunExportInfoImport(t *testing.T) {
	dir := t.TempDir()
	objPath := writeQuad(t, dir)
	cfg := config.Default()

	var out bytes.Buffer
	// The extension is added when missing.
	if err := run(cfg, "export", []string{objPath, filepath.Join(dir, "quad")}, &out); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	r3dPath := filepath.Join(dir, "quad.r3d")
	if !strings.Contains(out.String(), "2 triangles") {
		t.Errorf("export output = %q", out.String())
	}

	m, err := formats.ParseR3DFile(r3dPath)
	if err != nil {
		t.Fatalf("ParseR3DFile failed: %v", err)
	}
	if !m.HasUV() || len(m.Triangles) != 2 || len(m.Groups) != 1 {
		t.Errorf("exported mesh: uv=%t triangles=%d groups=%d", m.HasUV(), len(m.Triangles), len(m.Groups))
	}

	out.Reset()
	if err := run(cfg, "info", []string{r3dPath}, &out); err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if !strings.Contains(out.String(), "R3d Material 1") {
		t.Errorf("info output = %q", out.String())
	}

	out.Reset()
	if err := run(cfg, "validate", []string{r3dPath}, &out); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	objOut := filepath.Join(dir, "back.obj")
	out.Reset()
	if err := run(cfg, "import", []string{r3dPath, objOut}, &out); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	back, err := formats.ParseOBJFile(objOut)
	if err != nil {
		t.Fatalf("ParseOBJFile failed: %v", err)
	}
	if len(back.Positions) != 4 || len(back.Objects) != 1 || back.Objects[0].Name != "R3D Object" {
		t.Errorf("imported OBJ: %d positions, objects %+v", len(back.Positions), back.Objects)
	}
	if !strings.Contains(out.String(), `collection "quad.r3d"`) {
		t.Errorf("import output = %q", out.String())
	}
}

func TestRunExportMissingObject(t *testing.T) {
	dir := t.TempDir()
	objPath := writeQuad(t, dir)

	err := run(config.Default(), "export", []string{"-object", "Sphere", objPath, filepath.Join(dir, "x.r3d")}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "no mesh selected") {
		t.Errorf("got %v, want no active mesh error", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "x.r3d")); statErr == nil {
		t.Error("output written for a failed export")
	}
}

func TestRunImportRejectsExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mesh.bin")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if err := run(config.Default(), "import", []string{path, filepath.Join(dir, "out.obj")}, &bytes.Buffer{}); err == nil {
		t.Error("import accepted a non-.r3d file")
	}
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		command string
		args    []string
	}{
		{"unknown", nil},
		{"info", nil},
		{"validate", nil},
		{"export", []string{"only.obj"}},
		{"import", []string{"only.r3d"}},
		{"export", []string{"-bogus", "a.obj", "b.r3d"}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			err := run(config.Default(), tt.command, tt.args, &bytes.Buffer{})
			if !errors.Is(err, errUsage) {
				t.Errorf("got %v, want usage error", err)
			}
		})
	}
}

func TestRunConfig(t *testing.T) {
	var out bytes.Buffer
	if err := run(config.Default(), "config", nil, &out); err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if !strings.Contains(out.String(), "zero_normal: first_loop") {
		t.Errorf("config output = %q", out.String())
	}

	path := filepath.Join(t.TempDir(), "r3dtool.yaml")
	if err := run(config.Default(), "config", []string{path}, &out); err != nil {
		t.Fatalf("config save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not written: %v", err)
	}
}
