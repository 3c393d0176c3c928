// loatool is a CLI for generating, storing and replaying line-of-action
// animations without an editor host.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/loa-editor/internal/backend"
	"github.com/Faultbox/loa-editor/internal/config"
	"github.com/Faultbox/loa-editor/internal/logger"
	"github.com/Faultbox/loa-editor/internal/scene"
	"github.com/Faultbox/loa-editor/internal/session"
	"github.com/Faultbox/loa-editor/internal/store"
	"github.com/Faultbox/loa-editor/pkg/pose"
)

func main() {
	config.ParseFlags()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "generate", "gen":
		err = cmdGenerate(cfg, args)
	case "play":
		err = cmdPlay(cfg, args)
	case "inspect":
		err = cmdInspect(cfg, args)
	case "serve":
		err = cmdServe(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`loatool - line-of-action animation utility

Usage:
  loatool [flags] <command> [options]

Commands:
  generate <scene.yaml> [-o blob]   Generate frames and store the session
  play <scene.yaml> [-dt seconds]   Replay the stored session on the scene model
  inspect [blob]                    Decode a blob file or the stored session
  serve [-addr host:port]           Serve the local generator over websocket

Flags:
  --config <file>        Config file (yaml or toml)
  --backend <ws-url>     Use a remote websocket backend
  --frames <n>           Frame count hint
  --step <seconds>       Playback frame step
  --session <name>       Stored session name
  --select-range <dist>  Edit selection range
  --debug                Debug logging

Examples:
  loatool --frames 24 --session walk generate walk.yaml
  loatool --session walk play walk.yaml
  loatool inspect walk.blob
  loatool serve -addr :7800`)
}

// openStore opens persistent storage, falling back to memory so generate
// still works where no data directory is available.
func openStore(cfg *config.Config) *store.Store {
	st, err := store.Open(cfg.Storage.AppName)
	if err != nil {
		logger.Warn("session storage unavailable, using memory", zap.Error(err))
		return store.New(nil)
	}
	return st
}

func loadScene(path string, cfg *config.Config) (*scene.File, *session.Session, *scene.Node, error) {
	file, err := scene.Load(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading scene %s: %w", path, err)
	}

	gen, err := backend.FromConfig(cfg.Backend)
	if err != nil {
		return nil, nil, nil, err
	}

	model := file.Build()
	opts := session.OptionsFromConfig(cfg)
	opts.Logger = logger.Named("session")
	return file, session.New(model, gen, opts), model, nil
}

func cmdGenerate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	out := fs.String("o", "", "Also write the blob to this file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: loatool generate <scene.yaml> [-o blob]")
	}

	file, s, _, err := loadScene(fs.Arg(0), cfg)
	if err != nil {
		return err
	}
	for _, p := range file.Path {
		s.AddPoint(p)
	}
	for _, m := range file.Markers {
		s.AddMarker(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if cfg.Backend.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Backend.Timeout.Std())
		defer cancel()
	}

	if err := s.Generate(ctx); err != nil {
		return err
	}

	st := openStore(cfg)
	if err := st.Save(cfg.Storage.Session, s.Snapshot()); err != nil {
		return err
	}

	if *out != "" {
		if err := os.WriteFile(*out, []byte(s.Blob()), 0644); err != nil {
			return fmt.Errorf("writing blob: %w", err)
		}
	}

	fmt.Printf("Session: %s\n", cfg.Storage.Session)
	fmt.Printf("Frames:  %d\n", s.Frames().Len())
	fmt.Printf("Path:    %d points\n", len(s.Path()))
	fmt.Printf("Blob:    %d bytes\n", len(s.Blob()))
	if !st.Persistent() {
		fmt.Println("Warning: session kept in memory only")
	}
	return nil
}

func cmdPlay(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	dt := fs.Float64("dt", 0, "Tick size in seconds (0 = one frame step)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: loatool play <scene.yaml> [-dt seconds]")
	}

	_, s, model, err := loadScene(fs.Arg(0), cfg)
	if err != nil {
		return err
	}

	snap, err := openStore(cfg).Load(cfg.Storage.Session)
	if err != nil {
		return err
	}
	s.Restore(*snap)

	if err := s.Play(); err != nil {
		return err
	}

	step := *dt
	if step <= 0 {
		step = cfg.Playback.FrameStep
	}

	var elapsed float64
	for s.Player().Playing() {
		pos, rot := model.Position(), model.Rotation()
		fmt.Printf("%7.3fs  frame %-4d pos (%.3f, %.3f, %.3f)  rot (%.3f, %.3f, %.3f, %.3f)\n",
			elapsed, s.Player().Frame(), pos.X, pos.Y, pos.Z, rot.X, rot.Y, rot.Z, rot.W)
		if err := s.Tick(step); err != nil {
			return err
		}
		elapsed += step
	}

	pos := model.Position()
	fmt.Printf("Stopped, restored to (%.3f, %.3f, %.3f)\n", pos.X, pos.Y, pos.Z)
	return nil
}

func cmdInspect(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Print every frame")
	fs.Parse(args)

	var blob string
	if fs.NArg() > 0 {
		data, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			return err
		}
		blob = strings.TrimSpace(string(data))
	} else {
		snap, err := openStore(cfg).Load(cfg.Storage.Session)
		if err != nil {
			return err
		}
		if snap.Blob == "" {
			return fmt.Errorf("session %s has no frames", cfg.Storage.Session)
		}
		blob = snap.Blob
	}

	seq, err := pose.Decode(blob)
	if err != nil {
		return err
	}

	fmt.Printf("Frames: %d\n", seq.Len())
	fmt.Printf("Path:   %d points\n", len(seq.Path))
	if seq.Len() > 0 {
		root := seq.Frames[0]
		fmt.Printf("Nodes:  %d (root %q)\n", root.Count(), root.Name)
	}

	if *verbose {
		for i, f := range seq.Frames {
			fmt.Printf("  %4d  %-16s (%.3f, %.3f, %.3f)\n", i, f.Name, f.Position.X, f.Position.Y, f.Position.Z)
		}
	}
	return nil
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:7800", "Listen address")
	fs.Parse(args)

	mux := http.NewServeMux()
	mux.Handle("/generate", backend.Handler(backend.Resampler{}, logger.Named("backend")))

	logger.Info("serving generator", zap.String("addr", *addr))
	return http.ListenAndServe(*addr, mux)
}
