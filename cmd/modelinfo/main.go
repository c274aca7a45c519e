// modelinfo is a CLI utility for inspecting model and environment files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sketchbox/internal/engine/scene"
	"github.com/Faultbox/sketchbox/internal/engine/shadow"
	"github.com/Faultbox/sketchbox/internal/loader"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(os.Stdout, args)
	case "tree":
		err = cmdTree(os.Stdout, args)
	case "hdr":
		err = cmdHDR(os.Stdout, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`modelinfo - model file inspector

Usage:
  modelinfo <command> <file>

Commands:
  info <model>    Show node, mesh and triangle counts
  tree <model>    Print the node hierarchy
  hdr <file.hdr>  Show Radiance image dimensions

Models are .gltf, .glb or binary .fbx.

Examples:
  modelinfo info models/suzanne.gltf
  modelinfo tree models/robot.fbx`)
}

// loadModel picks a loader from the extension and waits for it.
func loadModel(path string) (*scene.Node, error) {
	ctx := context.Background()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fbx":
		return loader.LoadFBX(path).Await(ctx)
	case ".gltf", ".glb":
		g, err := loader.LoadGLTF(path).Await(ctx)
		if err != nil {
			return nil, err
		}
		if g.Scene == nil {
			return nil, fmt.Errorf("%s: no scene", path)
		}
		return g.Scene, nil
	default:
		return nil, fmt.Errorf("unsupported model extension %q", filepath.Ext(path))
	}
}

func requireFile(args []string, usage string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("usage: modelinfo %s", usage)
	}
	return args[0], nil
}

// summary is the aggregate shape of a model graph.
type summary struct {
	Nodes     int
	Meshes    int
	Vertices  int
	Triangles int
	Materials int
	Min, Max  mgl32.Vec3
	HasBounds bool
}

func summarize(root *scene.Node) summary {
	var s summary
	materials := make(map[*scene.StandardMaterial]bool)
	root.UpdateMatrixWorld()
	root.Traverse(func(n *scene.Node) {
		s.Nodes++
		if !n.IsMesh() {
			return
		}
		s.Meshes++
		if n.Mesh.Material != nil {
			materials[n.Mesh.Material] = true
		}
		g := n.Mesh.Geometry
		if g == nil {
			return
		}
		s.Vertices += g.VertexCount()
		s.Triangles += g.TriangleCount()
	})
	s.Materials = len(materials)
	if b, ok := shadow.SceneBounds(root); ok {
		s.Min, s.Max, s.HasBounds = b.Min, b.Max, true
	}
	return s
}

func cmdInfo(w io.Writer, args []string) error {
	path, err := requireFile(args, "info <model>")
	if err != nil {
		return err
	}
	root, err := loadModel(path)
	if err != nil {
		return err
	}

	s := summarize(root)
	fmt.Fprintf(w, "File:      %s\n", path)
	fmt.Fprintf(w, "Nodes:     %d\n", s.Nodes)
	fmt.Fprintf(w, "Meshes:    %d\n", s.Meshes)
	fmt.Fprintf(w, "Materials: %d\n", s.Materials)
	fmt.Fprintf(w, "Vertices:  %d\n", s.Vertices)
	fmt.Fprintf(w, "Triangles: %d\n", s.Triangles)
	if s.HasBounds {
		fmt.Fprintf(w, "Bounds:    (%.3g, %.3g, %.3g) - (%.3g, %.3g, %.3g)\n",
			s.Min[0], s.Min[1], s.Min[2], s.Max[0], s.Max[1], s.Max[2])
	}
	return nil
}

func cmdTree(w io.Writer, args []string) error {
	path, err := requireFile(args, "tree <model>")
	if err != nil {
		return err
	}
	root, err := loadModel(path)
	if err != nil {
		return err
	}
	printTree(w, root, 0)
	return nil
}

func printTree(w io.Writer, n *scene.Node, depth int) {
	name := n.Name
	if name == "" {
		name = "(unnamed)"
	}
	line := strings.Repeat("  ", depth) + name
	if n.IsMesh() && n.Mesh.Geometry != nil {
		line += fmt.Sprintf(" [mesh: %d tris]", n.Mesh.Geometry.TriangleCount())
	}
	fmt.Fprintln(w, line)
	for _, c := range n.Children() {
		printTree(w, c, depth+1)
	}
}

func cmdHDR(w io.Writer, args []string) error {
	path, err := requireFile(args, "hdr <file.hdr>")
	if err != nil {
		return err
	}
	tex, err := loader.NewRGBELoader(nil).Load(path).Await(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "File:   %s\n", path)
	fmt.Fprintf(w, "Size:   %dx%d\n", tex.Width, tex.Height)

	var peak float32
	for i, v := range tex.Data {
		if i%4 != 3 && v > peak {
			peak = v
		}
	}
	fmt.Fprintf(w, "Peak:   %.4g\n", peak)
	return nil
}
