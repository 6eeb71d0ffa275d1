// Command lolview renders a compiled source as text in a desktop window and
// reloads it when the file changes or R is pressed.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"lolcompiler/pkg/config"
	"lolcompiler/pkg/layout"
	"lolcompiler/pkg/preview"
	"lolcompiler/pkg/store"
)

const (
	charWidth    = 7  // basicfont.Face7x13 advance
	charHeight   = 13 // basicfont.Face7x13 line height
	statusHeight = 16
)

// Game implements ebiten.Game over the text of one compiled document.
type Game struct {
	doc    *document
	face   text.Face
	width  int
	height int
	reload chan struct{}
}

func (g *Game) rows() int {
	return max(1, (g.height-statusHeight)/charHeight)
}

func (g *Game) Update() error {
	select {
	case <-g.reload:
		g.doc.load()
	default:
	}

	rows := g.rows()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.doc.load()
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		g.doc.scroll(1, rows)
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		g.doc.scroll(-1, rows)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown), inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.doc.scroll(rows, rows)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		g.doc.scroll(-rows, rows)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		g.doc.scroll(-len(g.doc.lines), rows)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		g.doc.scroll(len(g.doc.lines), rows)
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.doc.scroll(-int(dy*3), rows)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	rows := g.rows()
	cells := layout.Screen(g.doc.lines, g.doc.top, g.doc.cols, rows)
	for i, r := range cells {
		if r == 0 {
			continue
		}
		x, y := layout.GridCoords(i, g.doc.cols)
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(x*charWidth), float64(y*charHeight))
		text.Draw(screen, string(r), g.face, op)
	}
	ebitenutil.DebugPrintAt(screen, g.doc.status(rows), 0, g.height-statusHeight)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// CLI flags for lolview.
var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"lolc.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`
	Source  string `arg:"" help:"Source file (.lol)" type:"path"`
}

func main() {
	kong.Parse(&CLI, kong.Name("lolview"), kong.Description("Preview a compiled source in a window."))

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	st := store.NewDiskStore("")
	st.SourceExt = cfg.SourceExt
	doc := newDocument(&preview.Builder{Store: st, Logger: logger}, CLI.Source, min(cfg.Viewer.Cols, cfg.Viewer.Width/charWidth))
	doc.load()

	game := &Game{
		doc:    doc,
		face:   text.NewGoXFace(basicfont.Face7x13),
		width:  cfg.Viewer.Width,
		height: cfg.Viewer.Height,
		reload: make(chan struct{}, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher, err := preview.NewWatcher(CLI.Source, cfg.Watch.Debounce, func() {
		select {
		case game.reload <- struct{}{}:
		default:
		}
	}, logger)
	if err != nil {
		logger.Warn("live reload disabled", "error", err)
	} else {
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("watcher stopped", "error", err)
			}
		}()
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Viewer.Width, cfg.Viewer.Height)
	ebiten.SetWindowTitle("lolview - " + CLI.Source)
	if err := ebiten.RunGame(game); err != nil {
		logger.Error("viewer failed", "error", err)
		os.Exit(1)
	}
}
