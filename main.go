//go:build !js

// Command lolc compiles LOLCODE-flavoured markup into HTML documents.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"lolcompiler/pkg/config"
)

// Global carries state shared by every command.
type Global struct {
	Config *config.Config
	Logger *slog.Logger
	Out    io.Writer
	Ctx    context.Context
}

// CLI definition & global flags.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"lolc.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build  BuildCmd  `cmd:"" help:"Compile a source file into an HTML document"`
	Tokens TokensCmd `cmd:"" help:"Print the token stream of a source file"`
	Watch  WatchCmd  `cmd:"" help:"Rebuild a source file whenever it changes"`
	Serve  ServeCmd  `cmd:"" help:"Serve the compiled document with metrics"`
	Init   InitCmd   `cmd:"" help:"Write a default lolc.yaml"`

	cfg *config.Config `kong:"-"`
	log *slog.Logger   `kong:"-"`
}

// AfterApply loads the configuration and sets up logging once flags are
// parsed.
func (c *CLI) AfterApply() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	c.cfg = cfg
	c.log = slog.New(handler)
	slog.SetDefault(c.log)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("lolc failed", "error", err)
		os.Exit(1)
	}
}

// run parses args and executes the selected command.
func run(ctx context.Context, args []string, out io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("lolc"),
		kong.Description("Compile LOLCODE-flavoured markup into HTML."),
		kong.UsageOnError(),
		kong.Writers(out, os.Stderr),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	g := &Global{Config: cli.cfg, Logger: cli.log, Out: out, Ctx: ctx}
	if err := kctx.Run(g, &cli); err != nil {
		return fmt.Errorf("%s: %w", kctx.Command(), err)
	}
	return nil
}
