// Package formats provides readers and writers for mesh file formats.
//
// R3D (Rock3dEngine mesh) is a single-mesh little-endian binary format with
// one optional UV channel and triangles grouped by material. Wavefront OBJ
// is supported as the text interchange format used by r3dtool.
package formats

// Note: R3D reading is implemented in r3d.go, writing in r3d_writer.go
// Note: OBJ reading and writing is implemented in obj.go
