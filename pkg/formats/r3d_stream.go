package formats

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// r3dReader decodes little-endian R3D primitives from a byte slice.
type r3dReader struct {
	data []byte
	off  int
}

func newR3DReader(data []byte) *r3dReader {
	return &r3dReader{data: data}
}

// remaining returns the number of unread bytes.
func (r *r3dReader) remaining() int {
	return len(r.data) - r.off
}

// take returns the next n bytes or ErrTruncatedR3DData if fewer remain.
func (r *r3dReader) take(n int, what string) ([]byte, error) {
	if r.remaining() < n {
		return nil, fmt.Errorf("%w: reading %s at offset %d (need %d bytes, have %d)",
			ErrTruncatedR3DData, what, r.off, n, r.remaining())
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *r3dReader) readU8(what string) (uint8, error) {
	b, err := r.take(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *r3dReader) readI32(what string) (int32, error) {
	b, err := r.take(4, what)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *r3dReader) readVec2(what string) (mgl32.Vec2, error) {
	b, err := r.take(8, what)
	if err != nil {
		return mgl32.Vec2{}, err
	}
	return mgl32.Vec2{f32(b[0:4]), f32(b[4:8])}, nil
}

func (r *r3dReader) readVec3(what string) (mgl32.Vec3, error) {
	b, err := r.take(12, what)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{f32(b[0:4]), f32(b[4:8]), f32(b[8:12])}, nil
}

func (r *r3dReader) readIVec3(what string) ([3]int32, error) {
	b, err := r.take(12, what)
	if err != nil {
		return [3]int32{}, err
	}
	return [3]int32{
		int32(binary.LittleEndian.Uint32(b[0:4])),
		int32(binary.LittleEndian.Uint32(b[4:8])),
		int32(binary.LittleEndian.Uint32(b[8:12])),
	}, nil
}

func f32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// r3dWriter encodes little-endian R3D primitives. The first write error
// sticks and turns every later write into a no-op.
type r3dWriter struct {
	w   *bufio.Writer
	buf [12]byte
	n   int64
	err error
}

func newR3DWriter(w io.Writer) *r3dWriter {
	return &r3dWriter{w: bufio.NewWriter(w)}
}

func (w *r3dWriter) write(b []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(b)
	w.n += int64(n)
	w.err = err
}

func (w *r3dWriter) writeU8(v uint8) {
	w.buf[0] = v
	w.write(w.buf[:1])
}

func (w *r3dWriter) writeI32(v int32) {
	binary.LittleEndian.PutUint32(w.buf[:4], uint32(v))
	w.write(w.buf[:4])
}

func (w *r3dWriter) writeVec2(v mgl32.Vec2) {
	binary.LittleEndian.PutUint32(w.buf[0:4], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(w.buf[4:8], math.Float32bits(v[1]))
	w.write(w.buf[:8])
}

func (w *r3dWriter) writeVec3(v mgl32.Vec3) {
	binary.LittleEndian.PutUint32(w.buf[0:4], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(w.buf[4:8], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(w.buf[8:12], math.Float32bits(v[2]))
	w.write(w.buf[:12])
}

func (w *r3dWriter) writeIVec3(v [3]int32) {
	binary.LittleEndian.PutUint32(w.buf[0:4], uint32(v[0]))
	binary.LittleEndian.PutUint32(w.buf[4:8], uint32(v[1]))
	binary.LittleEndian.PutUint32(w.buf[8:12], uint32(v[2]))
	w.write(w.buf[:12])
}

// flush pushes buffered bytes to the underlying writer and reports the sticky error.
func (w *r3dWriter) flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}
