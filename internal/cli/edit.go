package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/smasonuk/polymesh"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>...",
		Short: "Print the shape and problems of mesh files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := printInfo(cmd.OutOrStdout(), path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func printInfo(w io.Writer, path string) error {
	header := make([]byte, 262)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	n, _ := io.ReadFull(f, header)
	f.Close()

	m, err := polymesh.LoadAny(path)
	if err != nil {
		return err
	}

	min, max := m.Bounds()
	fmt.Fprintf(w, "%s: %s\n", path, polymesh.DetectFormat(header[:n]))
	fmt.Fprintf(w, "  type      %s\n", m.MeshType())
	fmt.Fprintf(w, "  polygons  %d\n", m.PolygonCount())
	fmt.Fprintf(w, "  vertices  %d\n", m.VertexCount())
	fmt.Fprintf(w, "  indices   %d\n", m.IndexCount())
	fmt.Fprintf(w, "  bounds    %.4g .. %.4g\n", min, max)
	fmt.Fprintf(w, "  radius    %.4g\n", m.Radius())

	problems := m.CheckGeometry()
	if len(problems) == 0 {
		fmt.Fprintln(w, "  problems  none")
		return nil
	}
	fmt.Fprintf(w, "  problems  %d\n", len(problems))
	for _, p := range problems {
		fmt.Fprintf(w, "    %v\n", p)
	}
	return nil
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert between PMSH, PLY and DXF, picking the output format from its extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rewrite(args[0], args[1], func(*polymesh.Mesh) {})
		},
	}
}

func newNormalsCmd() *cobra.Command {
	var (
		flat  bool
		angle float64
	)
	cmd := &cobra.Command{
		Use:   "normals <in> [out]",
		Short: "Recompute vertex normals and tangents",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rewrite(args[0], outPath(args), func(m *polymesh.Mesh) {
				m.CalculateNormals(!flat, angle)
				m.CalculateTangents()
			})
		},
	}
	cmd.Flags().BoolVar(&flat, "flat", false, "give every corner its face normal")
	cmd.Flags().Float64Var(&angle, "angle", 180, "largest angle in degrees between faces smoothed together")
	return cmd
}

func newRecenterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recenter <in> [out]",
		Short: "Move the average vertex position to the origin",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rewrite(args[0], outPath(args), func(m *polymesh.Mesh) {
				offset := m.RecenterMesh()
				fmt.Fprintf(cmd.OutOrStdout(), "moved by %.6g\n", offset.Mul(-1))
			})
		},
	}
}

func newWeldCmd() *cobra.Command {
	var epsilon float64
	cmd := &cobra.Command{
		Use:   "weld <in> [out]",
		Short: "Merge vertices that share every attribute",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rewrite(args[0], outPath(args), func(m *polymesh.Mesh) {
				fmt.Fprintf(cmd.OutOrStdout(), "merged %d vertices\n", m.WeldVertices(epsilon))
			})
		},
	}
	cmd.Flags().Float64Var(&epsilon, "epsilon", 1e-6, "positions closer than this count as equal")
	return cmd
}

// outPath is the optional second argument, defaulting to the input.
func outPath(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return args[0]
}

// rewrite loads in, applies fn and saves the result to out.
func rewrite(in, out string, fn func(*polymesh.Mesh)) error {
	m, err := polymesh.LoadAny(in)
	if err != nil {
		return err
	}
	fn(m)
	if err := m.SaveAny(out); err != nil {
		return err
	}
	slog.Debug("rewrote mesh", "in", in, "out", out)
	return nil
}
