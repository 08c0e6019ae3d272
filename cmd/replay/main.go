// Command replay runs a recorded or hand-written trace through a profile and
// prints every event. It exits non-zero when a frame's expectations fail.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/milk9111/actioninput/common"
	"github.com/milk9111/actioninput/input"
	"github.com/milk9111/actioninput/profiles"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	profile := fs.String("profile", "platformer.yaml", "profile name (embedded or under -dir)")
	traceName := fs.String("trace", "traces/menu.yaml", "trace file path or store name")
	dir := fs.String("dir", "", "directory overriding the embedded profiles")
	format := fs.String("log", "text", "log format: text or json")
	verbose := fs.Bool("v", false, "log pipeline transitions")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger, err := common.NewLogger(stdout, *format, *verbose)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	store := profiles.NewStore(*dir, logger)
	p, err := store.Pipeline(*profile)
	if err != nil {
		logger.Error("replay: load profile", "profile", *profile, "err", err)
		return 1
	}
	trace, err := loadTrace(store, *traceName)
	if err != nil {
		logger.Error("replay: load trace", "trace", *traceName, "err", err)
		return 1
	}

	total := 0
	err = profiles.Replay(p, trace, func(tick int, events []input.Event) {
		for _, e := range events {
			total++
			logger.Info("event",
				slog.Int("tick", tick),
				slog.String("context", e.Context),
				slog.String("action", e.Action),
				slog.String("kind", e.Kind.String()),
				slog.String("value", e.Value.String()),
				slog.String("state", e.State.String()),
				slog.Float64("elapsed", float64(e.Elapsed)))
		}
	})
	if errors.Is(err, profiles.ErrTraceMismatch) {
		logger.Error("replay: mismatch", "err", err)
		return 1
	}
	if err != nil {
		logger.Error("replay: failed", "err", err)
		return 1
	}
	logger.Info("replay: done", "trace", trace.Name, "ticks", p.Ticks(), "events", total)
	return 0
}

// loadTrace prefers a file on disk and falls back to the profile store.
func loadTrace(store *profiles.Store, name string) (profiles.Trace, error) {
	if data, err := os.ReadFile(name); err == nil {
		return profiles.DecodeTrace(data)
	}
	return store.LoadTrace(name)
}
