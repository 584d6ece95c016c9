package formats

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// WriteTo encodes the mesh in R3D layout: header, vertices, triangles,
// then material groups. UVs are written with V flipped when HasUV is set.
func (m *R3D) WriteTo(w io.Writer) (int64, error) {
	bw := newR3DWriter(w)

	bw.writeI32(m.Header.Version)
	bw.writeU8(m.Header.LeftHanded)
	bw.writeU8(m.Header.HasUV)

	bw.writeI32(int32(len(m.Vertices)))
	for _, v := range m.Vertices {
		bw.writeVec3(v.Position)
		bw.writeVec3(v.Normal)
		if m.HasUV() {
			bw.writeVec2(flipV(v.UV))
		}
	}

	bw.writeI32(int32(len(m.Triangles)))
	for _, tri := range m.Triangles {
		bw.writeIVec3(tri)
	}

	bw.writeI32(int32(len(m.Groups)))
	for _, g := range m.Groups {
		bw.writeI32(g.MaterialID)
		bw.writeI32(g.StartFace)
		bw.writeI32(g.FaceCount)
	}

	err := bw.flush()
	return bw.n, err
}

// EncodedSize returns the exact number of bytes WriteTo produces.
func (m *R3D) EncodedSize() int {
	stride := r3dVertexSize
	if m.HasUV() {
		stride += r3dUVSize
	}
	return r3dHeaderSize +
		4 + len(m.Vertices)*stride +
		4 + len(m.Triangles)*r3dTriangleSize +
		4 + len(m.Groups)*r3dMaterialGroupSize
}

// Encode returns the R3D encoding of the mesh.
func (m *R3D) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, m.EncodedSize()))
	if _, err := m.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteR3DFile validates the mesh and writes it to path. The data goes to a
// temporary file in the same directory which is renamed over path only after
// a complete write, so a failure never leaves a partial mesh behind.
func WriteR3DFile(path string, m *R3D) (err error) {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("refusing to write invalid mesh: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating R3D file: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmp.Name()))
		}
	}()

	if _, err := m.WriteTo(tmp); err != nil {
		return multierr.Append(fmt.Errorf("writing R3D file: %w", err), tmp.Close())
	}
	if err := tmp.Sync(); err != nil {
		return multierr.Append(fmt.Errorf("syncing R3D file: %w", err), tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing R3D file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("setting R3D file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing R3D file: %w", err)
	}
	return nil
}
