package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smasonuk/polymesh/recipe"
)

func newGenCmd() *cobra.Command {
	var (
		outDir string
		jobs   int
	)

	cmd := &cobra.Command{
		Use:   "gen <recipe>",
		Short: "Build every mesh in a TOML or YAML recipe file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := recipe.Open(args[0])
			if err != nil {
				return err
			}
			paths, err := generate(cmd.Context(), file, outDir, jobs)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory the outputs are written under")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "meshes built at the same time")
	return cmd
}

// generate builds and saves the meshes of file concurrently and returns the
// written paths in recipe order. The first failure cancels the rest.
func generate(ctx context.Context, file *recipe.File, outDir string, jobs int) ([]string, error) {
	paths := make([]string, len(file.Meshes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, r := range file.Meshes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.SetDefaults()
			if r.Output == "" {
				r.Output = fmt.Sprintf("mesh%d.pmsh", i)
			}

			m, err := r.Build()
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, r.Output)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("could not create output directory: %w", err)
			}
			if err := m.SaveAny(path); err != nil {
				return err
			}
			slog.Info("wrote mesh", "name", r.Name, "path", path, "polygons", m.PolygonCount(), "vertices", m.VertexCount())
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
