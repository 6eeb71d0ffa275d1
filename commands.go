//go:build !js

package main

import (
	"fmt"
	"net"

	"lolcompiler/pkg/compiler"
	"lolcompiler/pkg/config"
	"lolcompiler/pkg/preview"
	"lolcompiler/pkg/store"
)

// newDiskStore applies the configured extensions to a DiskStore.
func newDiskStore(g *Global, outputDir string) *store.DiskStore {
	st := store.NewDiskStore(outputDir)
	st.SourceExt = g.Config.SourceExt
	st.OutputExt = g.Config.Output.Ext
	return st
}

// newBuilder wires the build pipeline from the loaded configuration.
func newBuilder(g *Global, st store.Store, verify bool) *preview.Builder {
	return &preview.Builder{
		Store:  st,
		Verify: verify || g.Config.Verify,
		Logger: g.Logger,
	}
}

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Source string `arg:"" help:"Source file (.lol)" type:"path"`
	Output string `short:"o" help:"Output directory (default: next to the source)"`
	Open   bool   `help:"Open the document in a browser after building"`
	Verify bool   `help:"Check the structure of the compiled document"`
}

func (b *BuildCmd) Run(g *Global) error {
	dir := b.Output
	if dir == "" {
		dir = g.Config.Output.Dir
	}
	res, err := newBuilder(g, newDiskStore(g, dir), b.Verify).Build(b.Source)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.Out, res.Output)

	if b.Open || g.Config.Open {
		return preview.OpenBrowser(res.Output)
	}
	return nil
}

// TokensCmd implements the 'tokens' command.
type TokensCmd struct {
	Source string `arg:"" help:"Source file (.lol)" type:"path"`
}

func (t *TokensCmd) Run(g *Global) error {
	src, err := newDiskStore(g, "").ReadSource(t.Source)
	if err != nil {
		return err
	}
	tokens, err := compiler.Lex(src)
	for _, tok := range tokens {
		fmt.Fprintln(g.Out, tok)
	}
	return err
}

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Source string `arg:"" help:"Source file (.lol)" type:"path"`
	Output string `short:"o" help:"Output directory (default: next to the source)"`
	Open   bool   `help:"Open the document in a browser after the first build"`
}

func (w *WatchCmd) Run(g *Global) error {
	dir := w.Output
	if dir == "" {
		dir = g.Config.Output.Dir
	}
	// Rebuilds are staged in memory so an unchanged document is not rewritten.
	staged := store.NewStagedStore(dir)
	staged.Disk = newDiskStore(g, dir)
	b := newBuilder(g, staged, false)

	rebuild := func() {
		res, err := b.Build(w.Source)
		if err != nil {
			g.Logger.Error("rebuild failed", "source", w.Source, "error", err)
			return
		}
		fmt.Fprintln(g.Out, res.Output)
	}

	// A broken first build is reported but does not stop watching.
	res, err := b.Build(w.Source)
	if err != nil {
		g.Logger.Error("build failed", "source", w.Source, "error", err)
	} else {
		fmt.Fprintln(g.Out, res.Output)
		if w.Open || g.Config.Open {
			if err := preview.OpenBrowser(res.Output); err != nil {
				g.Logger.Warn("could not open browser", "error", err)
			}
		}
	}

	watcher, err := preview.NewWatcher(w.Source, g.Config.Watch.Debounce, rebuild, g.Logger)
	if err != nil {
		return err
	}
	return watcher.Run(g.Ctx)
}

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Source string `arg:"" help:"Source file (.lol)" type:"path"`
	Addr   string `help:"Listen address (default from config)"`
	Open   bool   `help:"Open the preview in a browser once listening"`
}

func (s *ServeCmd) Run(g *Global) error {
	addr := s.Addr
	if addr == "" {
		addr = g.Config.Serve.Addr
	}
	srv := preview.NewServer(newBuilder(g, newDiskStore(g, ""), false), s.Source, g.Config.Serve.MetricsPath)

	var ready func(net.Addr)
	if s.Open || g.Config.Open {
		ready = func(a net.Addr) {
			if err := preview.OpenBrowser("http://" + a.String() + "/"); err != nil {
				g.Logger.Warn("could not open browser", "error", err)
			}
		}
	}
	return srv.ListenAndServe(g.Ctx, addr, ready)
}

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "wrote %s\n", root.Config)
	return nil
}
