// r3dtool is a CLI utility for converting and inspecting R3D mesh files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/r3d/internal/config"
	"github.com/Faultbox/r3d/internal/logger"
	"github.com/Faultbox/r3d/internal/mesh"
	"github.com/Faultbox/r3d/pkg/formats"
)

// errUsage marks errors caused by wrong command-line arguments.
var errUsage = errors.New("usage")

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logOpts := logger.Options{
		Level:   cfg.Logging.Level,
		Console: os.Stderr,
		File:    logger.Rotation(cfg.Logging.LogFile),
	}
	if err := logger.Init(logOpts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err := run(cfg, args[0], args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Usage: %v\n", err)
		} else {
			logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
			fmt.Fprintf(os.Stderr, "Cancelled: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, command string, args []string, out io.Writer) error {
	switch command {
	case "info":
		return cmdInfo(args, out)
	case "validate", "check":
		return cmdValidate(args, out)
	case "export":
		return cmdExport(cfg, args, out)
	case "import":
		return cmdImport(cfg, args, out)
	case "config":
		return cmdConfig(cfg, args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `r3dtool - R3D mesh utility

Usage:
  r3dtool [global options] <command> [options]

Commands:
  info <file.r3d>                      Show header, counts and material groups
  validate <file.r3d>                  Check the file against the format invariants
  export [-object name] <in.obj> <out.r3d>
                                       Convert an OBJ object to R3D
  import [-collection name] <in.r3d> <out.obj>
                                       Convert an R3D mesh to OBJ
  config [path]                        Print (or write) the effective configuration

Global options:
  -config <path>        Config file (default ./r3dtool.yaml or user config dir)
  -debug                Debug logging
  -log-file <path>      Also log to a rotating file
  -split-normals=false  Export stored vertex normals instead of averaged loop normals
  -zero-normal <mode>   Cancelled averaged normals: first_loop or zero

Examples:
  r3dtool export -object Cube scene.obj cube.r3d
  r3dtool -split-normals=false export scene.obj scene.r3d
  r3dtool info cube.r3d`)
}

func cmdInfo(args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: r3dtool info <file.r3d>", errUsage)
	}

	m, err := formats.ParseR3DFile(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "File:      %s\n", args[0])
	fmt.Fprintf(out, "Version:   %d\n", m.Header.Version)
	fmt.Fprintf(out, "UV:        %t\n", m.HasUV())
	fmt.Fprintf(out, "Vertices:  %d\n", len(m.Vertices))
	fmt.Fprintf(out, "Triangles: %d\n", len(m.Triangles))
	fmt.Fprintf(out, "Materials: %d\n", len(m.Groups))
	for _, g := range m.Groups {
		fmt.Fprintf(out, "  %-16s faces %d-%d (%d)\n", formats.MaterialName(g.MaterialID), g.StartFace, g.End(), g.FaceCount)
	}
	return nil
}

func cmdValidate(args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: r3dtool validate <file.r3d>", errUsage)
	}

	m, err := formats.ParseR3DFile(args[0])
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: OK (%d vertices, %d triangles, %d materials)\n",
		args[0], len(m.Vertices), len(m.Triangles), len(m.Groups))
	return nil
}

func cmdExport(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	object := fs.String("object", cfg.Export.Object, "Object to export (default: first object)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("%w: r3dtool export [-object name] <in.obj> <out.r3d>", errUsage)
	}
	inPath, outPath := fs.Arg(0), fs.Arg(1)
	if !strings.EqualFold(filepath.Ext(outPath), formats.R3DExtension) {
		outPath += formats.R3DExtension
	}

	obj, err := formats.ParseOBJFile(inPath)
	if err != nil {
		return err
	}
	active := mesh.FindObject(mesh.ObjectsFromOBJ(obj), *object)

	opts := mesh.ExportOptions{
		Normals:    mesh.NormalsStoredVertex,
		ZeroNormal: mesh.ParseZeroNormalPolicy(cfg.Export.ZeroNormal),
	}
	if cfg.Export.SplitNormals {
		opts.Normals = mesh.NormalsAveragedLoops
	}

	res, err := mesh.NewExporter().ExportFile(outPath, active, opts)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "Warning: %v\n", w)
	}
	fmt.Fprintf(out, "Exported: %s (%d vertices, %d triangles, %d materials)\n",
		outPath, len(res.Mesh.Vertices), len(res.Mesh.Triangles), len(res.Mesh.Groups))
	return nil
}

func cmdImport(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	collection := fs.String("collection", cfg.Import.Collection, "Collection name (default: file name)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("%w: r3dtool import <in.r3d> <out.obj>", errUsage)
	}
	inPath, outPath := fs.Arg(0), fs.Arg(1)

	// Only .r3d files are accepted, whatever their content.
	if !strings.EqualFold(filepath.Ext(inPath), formats.R3DExtension) {
		return fmt.Errorf("%s: not an %s file", inPath, formats.R3DExtension)
	}

	obj, err := mesh.NewImporter().ImportFile(inPath, mesh.ImportOptions{Collection: *collection})
	if err != nil {
		return err
	}

	if err := writeOBJFile(outPath, mesh.ToOBJ(obj)); err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported: %s -> %s (collection %q)\n", inPath, outPath, obj.Collection)
	return nil
}

func cmdConfig(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote config: %s\n", args[0])
		return nil
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func writeOBJFile(path string, obj *formats.OBJ) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating OBJ file: %w", err)
	}
	if _, err := obj.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing OBJ file: %w", err)
	}
	return f.Close()
}
