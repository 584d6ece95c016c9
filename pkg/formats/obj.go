package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// OBJ format errors.
var (
	ErrInvalidOBJStatement = errors.New("invalid OBJ statement")
	ErrInvalidOBJIndex     = errors.New("OBJ index out of range")
)

// OBJCorner is one face corner. TexCoord and Normal are -1 when absent.
// All indices are 0-based into the file-wide attribute arrays.
type OBJCorner struct {
	Position int
	TexCoord int
	Normal   int
}

// OBJFace is a polygon with three or more corners.
type OBJFace struct {
	Corners  []OBJCorner
	Material int // Index into OBJ.Materials, -1 if no usemtl was active
}

// OBJObject is a named set of elements introduced by "o". Files without
// any "o" statement use "g" groups as objects instead.
type OBJObject struct {
	Name   string
	Groups []string // "g" names seen inside an "o" object
	Faces  []OBJFace
	Lines  int // Number of "l" elements
	Points int // Number of "p" elements
}

// OBJ represents a parsed Wavefront OBJ file.
type OBJ struct {
	Positions []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Normals   []mgl32.Vec3
	Materials []string // Material names in order of first use
	Objects   []OBJObject
}

// ParseOBJ parses a Wavefront OBJ file. Statements other than geometry,
// grouping and usemtl are ignored.
func ParseOBJ(data []byte) (*OBJ, error) {
	p := &objParser{obj: &OBJ{}, current: -1, material: -1, matIndex: make(map[string]int)}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for lineNo := 1; sc.Scan(); lineNo++ {
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ data: %w", err)
	}
	return p.obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

type objParser struct {
	obj      *OBJ
	current  int // Index into obj.Objects, -1 before the first object
	named    bool // An "o" statement has been seen
	material int
	matIndex map[string]int
}

func (p *objParser) parseLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.obj.Positions = append(p.obj.Positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.obj.TexCoords = append(p.obj.TexCoords, mgl32.Vec2{v[0], v[1]})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.obj.Normals = append(p.obj.Normals, mgl32.Vec3{v[0], v[1], v[2]})
	case "o":
		p.named = true
		p.startObject(strings.Join(fields[1:], " "))
	case "g":
		name := strings.Join(fields[1:], " ")
		if !p.named {
			p.startObject(name)
			break
		}
		// Groups split an object into parts; they stay in the object.
		obj := p.object()
		obj.Groups = append(obj.Groups, name)
	case "usemtl":
		name := strings.Join(fields[1:], " ")
		idx, ok := p.matIndex[name]
		if !ok {
			idx = len(p.obj.Materials)
			p.matIndex[name] = idx
			p.obj.Materials = append(p.obj.Materials, name)
		}
		p.material = idx
	case "f":
		return p.parseFace(fields[1:])
	case "l":
		p.object().Lines++
	case "p":
		p.object().Points++
	}
	return nil
}

func (p *objParser) startObject(name string) {
	p.obj.Objects = append(p.obj.Objects, OBJObject{Name: name})
	p.current = len(p.obj.Objects) - 1
}

// object returns the current object, creating an unnamed one for elements
// that appear before any "o" or "g".
func (p *objParser) object() *OBJObject {
	if p.current < 0 {
		p.obj.Objects = append(p.obj.Objects, OBJObject{})
		p.current = len(p.obj.Objects) - 1
	}
	return &p.obj.Objects[p.current]
}

func (p *objParser) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: face with %d corners", ErrInvalidOBJStatement, len(fields))
	}

	face := OBJFace{Corners: make([]OBJCorner, len(fields)), Material: p.material}
	for i, f := range fields {
		parts := strings.Split(f, "/")
		c := OBJCorner{TexCoord: -1, Normal: -1}

		var err error
		if c.Position, err = resolveOBJIndex(parts[0], len(p.obj.Positions)); err != nil {
			return err
		}
		if len(parts) > 1 && parts[1] != "" {
			if c.TexCoord, err = resolveOBJIndex(parts[1], len(p.obj.TexCoords)); err != nil {
				return err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if c.Normal, err = resolveOBJIndex(parts[2], len(p.obj.Normals)); err != nil {
				return err
			}
		}
		face.Corners[i] = c
	}

	obj := p.object()
	obj.Faces = append(obj.Faces, face)
	return nil
}

// resolveOBJIndex converts a 1-based (or negative, relative) OBJ index to 0-based.
func resolveOBJIndex(s string, size int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrInvalidOBJStatement, s)
	}
	switch {
	case n > 0:
		n--
	case n < 0:
		n += size
	default:
		return 0, fmt.Errorf("%w: index 0", ErrInvalidOBJIndex)
	}
	if n < 0 || n >= size {
		return 0, fmt.Errorf("%w: %s (have %d)", ErrInvalidOBJIndex, s, size)
	}
	return n, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: want %d values, got %d", ErrInvalidOBJStatement, n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOBJStatement, fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

// WriteTo writes the OBJ in text form. Each object becomes an "o" block;
// usemtl is emitted whenever the face material changes.
func (o *OBJ) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	cw := &countingWriter{w: bw}

	for _, v := range o.Positions {
		fmt.Fprintf(cw, "v %s %s %s\n", fmtFloat(v[0]), fmtFloat(v[1]), fmtFloat(v[2]))
	}
	for _, vt := range o.TexCoords {
		fmt.Fprintf(cw, "vt %s %s\n", fmtFloat(vt[0]), fmtFloat(vt[1]))
	}
	for _, vn := range o.Normals {
		fmt.Fprintf(cw, "vn %s %s %s\n", fmtFloat(vn[0]), fmtFloat(vn[1]), fmtFloat(vn[2]))
	}

	for _, obj := range o.Objects {
		if obj.Name != "" {
			fmt.Fprintf(cw, "o %s\n", obj.Name)
		}
		material := -1
		for _, face := range obj.Faces {
			if face.Material != material && face.Material >= 0 && face.Material < len(o.Materials) {
				fmt.Fprintf(cw, "usemtl %s\n", o.Materials[face.Material])
				material = face.Material
			}
			io.WriteString(cw, "f")
			for _, c := range face.Corners {
				io.WriteString(cw, " "+formatOBJCorner(c))
			}
			io.WriteString(cw, "\n")
		}
	}

	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, bw.Flush()
}

func formatOBJCorner(c OBJCorner) string {
	switch {
	case c.TexCoord >= 0 && c.Normal >= 0:
		return fmt.Sprintf("%d/%d/%d", c.Position+1, c.TexCoord+1, c.Normal+1)
	case c.TexCoord >= 0:
		return fmt.Sprintf("%d/%d", c.Position+1, c.TexCoord+1)
	case c.Normal >= 0:
		return fmt.Sprintf("%d//%d", c.Position+1, c.Normal+1)
	default:
		return strconv.Itoa(c.Position + 1)
	}
}

func fmtFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
