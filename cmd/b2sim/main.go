// Command b2sim steps a YAML scene headlessly and optionally writes a
// msgpack trace of every body per step.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/b2classic/box2d"
	"github.com/b2classic/box2d/internal/scene"
	"github.com/b2classic/box2d/internal/trace"
)

type config struct {
	SceneFile  string
	TraceFile  string
	Steps      int
	Continuous bool
	Verbose    bool
	Quiet      bool
}

func parseFlags() config {
	var cfg config

	flag.StringVar(&cfg.SceneFile, "scene", "", "YAML scene file to load (required)")
	flag.StringVar(&cfg.TraceFile, "trace", "", "msgpack trace output file")
	flag.IntVar(&cfg.Steps, "steps", 0, "number of steps (0 = scene setting)")
	flag.BoolVar(&cfg.Continuous, "continuous", true, "enable continuous collision")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "debug logging")
	flag.BoolVar(&cfg.Quiet, "quiet", false, "only log errors")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -scene FILE [options]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	return cfg
}

func newLogger(cfg config) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case cfg.Quiet:
		level = slog.LevelError
	case cfg.Verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func run(cfg config, log *slog.Logger) (err error) {
	if cfg.SceneFile == "" {
		return fmt.Errorf("missing -scene")
	}

	s, err := scene.Load(cfg.SceneFile)
	if err != nil {
		return err
	}
	if cfg.Steps > 0 {
		s.Settings.Steps = cfg.Steps
	}
	if !cfg.Continuous {
		off := false
		s.Settings.ContinuousPhysics = &off
	}

	w, err := s.Build(log)
	if err != nil {
		return fmt.Errorf("build %s: %w", cfg.SceneFile, err)
	}

	var rec *trace.Recorder
	if cfg.TraceFile != "" {
		f, cerr := os.Create(cfg.TraceFile)
		if cerr != nil {
			return cerr
		}
		defer closeInto(f, &err)
		rec = trace.NewRecorder(f)
	}

	bodies := w.GetBodyList()
	start := time.Now()
	for i := 0; i < w.Settings.Steps; i++ {
		w.Step()
		if rec != nil {
			if err := rec.Record(i, bodies); err != nil {
				return err
			}
		}
	}

	awake := 0
	for _, b := range bodies {
		if b.IsAwake() {
			awake++
		}
	}
	log.Info("simulation finished",
		"scene", cfg.SceneFile,
		"engine", box2d.B2_version,
		"steps", w.Settings.Steps,
		"bodies", w.GetBodyCount(),
		"contacts", w.GetContactCount(),
		"awake", awake,
		"elapsed", time.Since(start))

	for _, name := range w.Names {
		b := w.Body(name)
		p := b.GetPosition()
		log.Debug("body", "name", name, "x", p.X, "y", p.Y, "angle", b.GetAngle(), "awake", b.IsAwake())
	}

	return nil
}

// closeInto closes c and reports its error through err unless err already
// holds one.
func closeInto(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close trace: %w", cerr)
	}
}

func main() {
	cfg := parseFlags()
	log := newLogger(cfg)

	if err := run(cfg, log); err != nil {
		log.Error("b2sim failed", "err", err)
		os.Exit(1)
	}
}
