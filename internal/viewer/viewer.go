// Package viewer shows a mesh file in a window and reloads it whenever the
// file changes on disk.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spf13/cobra"

	"github.com/smasonuk/polymesh"
	"github.com/smasonuk/polymesh/preview"
)

const (
	defaultWidth  = 800
	defaultHeight = 600

	// pixels of mouse drag per radian of orbit
	dragScale = 200.0
)

var (
	background   = color.RGBA{R: 16, G: 16, B: 24, A: 255}
	outlineColor = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	pickColor    = color.RGBA{R: 255, G: 200, B: 0, A: 255}
)

type Game struct {
	ctx       context.Context
	mesh      *polymesh.Mesh
	cam       *preview.Camera
	opts      preview.Options
	wireframe bool

	dragging     bool
	lastX, lastY int
	picked       int

	reloads <-chan *polymesh.Mesh
}

// NewGame returns a game showing m. Update ends the game once ctx is done.
func NewGame(ctx context.Context, m *polymesh.Mesh, reloads <-chan *polymesh.Mesh) *Game {
	g := &Game{
		ctx:     ctx,
		mesh:    m,
		cam:     preview.NewCamera(defaultWidth, defaultHeight),
		opts:    preview.DefaultOptions,
		picked:  -1,
		reloads: reloads,
	}
	g.cam.Orbit(math.Pi/6, math.Pi/8)
	g.cam.Frame(m)
	return g
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	select {
	case m := <-g.reloads:
		g.mesh = m
		g.picked = -1
		slog.Info("reloaded mesh", "type", m.MeshType(), "polygons", m.PolygonCount())
	default:
	}

	// drag to orbit
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragging = true
		g.lastX, g.lastY = ebiten.CursorPosition()
	}
	if g.dragging {
		x, y := ebiten.CursorPosition()
		g.cam.Orbit(-float64(x-g.lastX)/dragScale, float64(y-g.lastY)/dragScale)
		g.lastX, g.lastY = x, y
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragging = false
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.pick(ebiten.CursorPosition())
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.cam.Zoom(math.Pow(0.9, dy))
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyW):
		g.wireframe = !g.wireframe
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.opts.Shade = !g.opts.Shade
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		g.opts.CullBackfaces = !g.opts.CullBackfaces
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		g.cam.Frame(g.mesh)
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	}
	return nil
}

// pick selects the polygon under the cursor, or clears the selection.
func (g *Game) pick(x, y int) {
	far := g.cam.Position.Sub(g.cam.Target).Len() * 100
	start, end := g.cam.Segment(preview.Point{X: float32(x), Y: float32(y)}, far)
	i, hit, ok := g.mesh.IntersectSegment(start, end)
	if !ok {
		g.picked = -1
		return
	}
	g.picked = i
	p := g.mesh.Polygon(i)
	slog.Info("picked polygon", "index", i, "at", hit, "normal", p.Normal(), "vertices", p.VertexIDs())
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	faces := preview.Project(g.mesh, g.cam, g.opts)
	for _, f := range faces {
		fillConvexPolygon(screen, f.Points, f.Color)
		if g.wireframe {
			drawPolygonOutline(screen, f.Points, 1, outlineColor)
		}
		if f.Polygon == g.picked {
			drawPolygonOutline(screen, f.Points, 2, pickColor)
		}
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %0.2f  faces: %d/%d\nW wireframe  S shading  B backfaces  F frame  right click pick",
		ebiten.ActualFPS(), len(faces), g.mesh.PolygonCount()))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.cam.Width, g.cam.Height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// NewCmd returns the view command.
func NewCmd() *cobra.Command {
	var (
		width, height int
		wireframe     bool
	)
	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Show a mesh in a window, reloading it when the file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), args[0], width, height, wireframe)
		},
	}
	cmd.Flags().IntVar(&width, "width", defaultWidth, "window width")
	cmd.Flags().IntVar(&height, "height", defaultHeight, "window height")
	cmd.Flags().BoolVar(&wireframe, "wireframe", false, "outline every face")
	return cmd
}

// Run opens a window on the mesh at path and blocks until it is closed or
// ctx is done.
func Run(ctx context.Context, path string, width, height int, wireframe bool) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	m, err := polymesh.LoadAny(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	reloads := make(chan *polymesh.Mesh, 1)
	if err := watch(ctx, path, reloads); err != nil {
		slog.Warn("not watching for changes", "path", path, "err", err)
	}

	g := NewGame(ctx, m, reloads)
	g.wireframe = wireframe

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("polymesh - " + filepath.Base(path))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	slog.Info("viewing mesh", "path", path, "type", m.MeshType(), "polygons", m.PolygonCount())
	return ebiten.RunGame(g)
}

// watch loads path again after every write and sends the result on out
// until ctx is done. The parent directory is watched so that editors which
// replace the file are followed too.
func watch(ctx context.Context, path string, out chan<- *polymesh.Mesh) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				name, _ := filepath.Abs(event.Name)
				if name != path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				m, err := polymesh.LoadAny(path)
				if err != nil {
					// a half written file fails here; the next write retries
					slog.Warn("reload failed", "path", path, "err", err)
					continue
				}
				select {
				case out <- m:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("watch error", "err", err)
			}
		}
	}()
	return nil
}
