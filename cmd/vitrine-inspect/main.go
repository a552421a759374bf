// vitrine-inspect is a CLI utility for examining product model files
// without opening the viewer.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vitrine3d/vitrine/internal/engine/material"
	"github.com/vitrine3d/vitrine/internal/engine/measure"
	"github.com/vitrine3d/vitrine/internal/engine/model"
	"github.com/vitrine3d/vitrine/internal/engine/profile"
	"github.com/vitrine3d/vitrine/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "materials", "mat":
		cmdMaterials(args)
	case "dims":
		cmdDims(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`vitrine-inspect - product model inspection utility

Usage:
  vitrine-inspect <command> [options]

Commands:
  info <file.glb>                 Show document structure and geometry stats
  materials <file.glb> [-tier t]  Show surface classification (tier: low, medium, high)
  dims <file.glb> [-unit u]       Show raw bounds and inferred dimensions

Examples:
  vitrine-inspect info showcase.glb
  vitrine-inspect materials showcase.glb -tier low
  vitrine-inspect dims showcase.glb -unit cm`)
}

func loadModel(path string) (*formats.GLB, *model.Mesh) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	glb, err := formats.ParseGLB(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", path, err)
		os.Exit(1)
	}

	mesh, err := model.FromGLB(glb)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building %s: %v\n", path, err)
		os.Exit(1)
	}
	return glb, mesh
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: vitrine-inspect info <file.glb>")
		os.Exit(1)
	}

	glb, mesh := loadModel(args[0])

	var vertices, triangles int
	for i := range mesh.Surfaces {
		vertices += len(mesh.Surfaces[i].Vertices)
		triangles += len(mesh.Surfaces[i].Indices) / 3
	}

	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Nodes:     %d\n", len(glb.Doc.Nodes))
	fmt.Printf("Meshes:    %d\n", len(glb.Doc.Meshes))
	fmt.Printf("Materials: %d\n", len(glb.Doc.Materials))
	fmt.Printf("Textures:  %d\n", len(glb.Doc.Textures))
	fmt.Printf("Images:    %d\n", len(glb.Doc.Images))
	fmt.Println()
	fmt.Printf("Surfaces:  %d\n", len(mesh.Surfaces))
	fmt.Printf("Vertices:  %d\n", vertices)
	fmt.Printf("Triangles: %d\n", triangles)
	fmt.Println()
	fmt.Printf("Raw bounds: min (%.3f, %.3f, %.3f)  max (%.3f, %.3f, %.3f)\n",
		mesh.RawBounds.Min[0], mesh.RawBounds.Min[1], mesh.RawBounds.Min[2],
		mesh.RawBounds.Max[0], mesh.RawBounds.Max[1], mesh.RawBounds.Max[2])
	fmt.Printf("Raw size:   %.3f x %.3f x %.3f\n",
		mesh.RawSize.X, mesh.RawSize.Y, mesh.RawSize.Z)
}

func cmdMaterials(args []string) {
	fs := flag.NewFlagSet("materials", flag.ExitOnError)
	tierName := fs.String("tier", "high", "Quality tier for tier-gated parameters")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: vitrine-inspect materials <file.glb> [-tier t]")
		os.Exit(1)
	}

	glb, mesh := loadModel(fs.Arg(0))
	tier := parseTier(*tierName)

	fmt.Printf("%-28s %-9s %6s %6s %6s %6s  %s\n",
		"SURFACE", "CLASS", "METAL", "ROUGH", "OPAC", "TRANS", "DEPTH")
	for i := range mesh.Surfaces {
		surf := &mesh.Surfaces[i]

		var mat *formats.Material
		if surf.MaterialIndex >= 0 && surf.MaterialIndex < len(glb.Doc.Materials) {
			mat = &glb.Doc.Materials[surf.MaterialIndex]
		}
		props := material.Classify(surf.Name, mat, tier)

		depth := "write"
		if !props.DepthWrite {
			depth = "no-write"
		}
		fmt.Printf("%-28s %-9s %6.2f %6.2f %6.2f %6.2f  %s\n",
			truncate(surf.Name, 28), props.Class.String(),
			props.Metalness, props.Roughness, props.Opacity, props.Transmission, depth)
	}
}

func cmdDims(args []string) {
	fs := flag.NewFlagSet("dims", flag.ExitOnError)
	unitName := fs.String("unit", "m", "Assumed model unit when no spec is given (mm, cm, m)")
	width := fs.String("width", "", "Declared width, e.g. \"120 cm\"")
	height := fs.String("height", "", "Declared height")
	thickness := fs.String("thickness", "", "Declared thickness")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: vitrine-inspect dims <file.glb> [-unit u]")
		os.Exit(1)
	}

	_, mesh := loadModel(fs.Arg(0))
	assumed := measure.ParseUnit(*unitName)

	spec := measure.Spec{Width: *width, Height: *height, Thickness: *thickness}
	dims := measure.Resolve(spec, [3]float64{
		float64(mesh.RawSize.X), float64(mesh.RawSize.Y), float64(mesh.RawSize.Z),
	}, assumed)

	fmt.Printf("Raw size:  %.3f x %.3f x %.3f (model units)\n",
		mesh.RawSize.X, mesh.RawSize.Y, mesh.RawSize.Z)
	fmt.Printf("Assumed:   1 model unit = 1 %s\n", assumed)
	fmt.Println()
	fmt.Printf("Width:     %s\n", measure.Format(dims.WidthMM, measure.Millimeter))
	fmt.Printf("Height:    %s\n", measure.Format(dims.HeightMM, measure.Millimeter))
	fmt.Printf("Thickness: %s\n", measure.Format(dims.ThicknessMM, measure.Millimeter))
	if dims.Authoritative {
		fmt.Println("Source:    declared dimensions")
	} else {
		fmt.Println("Source:    inferred from geometry")
	}
}

func parseTier(s string) profile.Tier {
	switch s {
	case "low":
		return profile.TierLow
	case "medium", "med":
		return profile.TierMedium
	default:
		return profile.TierHigh
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
