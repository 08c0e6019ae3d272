// Command inputtop shows a profile's actions live in the terminal.
package main

import (
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/milk9111/actioninput/common"
	"github.com/milk9111/actioninput/device"
	"github.com/milk9111/actioninput/profiles"
)

func main() {
	profile := flag.String("profile", "terminal.toml", "profile name (embedded or under -dir)")
	dir := flag.String("dir", "", "directory overriding the embedded profiles; watched for changes")
	hold := flag.Int("hold", 10, "frames a terminal key press stays down")
	rate := flag.Duration("rate", 50*time.Millisecond, "tick interval")
	logFile := flag.String("logfile", "", "write logs here (the screen is busy)")
	verbose := flag.Bool("v", false, "log pipeline transitions")
	flag.Parse()

	var out io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}
	logger, err := common.NewLogger(out, "text", *verbose)
	if err != nil {
		log.Fatal(err)
	}

	store := profiles.NewStore(*dir, logger)
	p, err := store.Pipeline(*profile)
	if err != nil {
		log.Fatal(err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	m := newMonitor(screen, p, device.NewTerminal(*hold), *profile, logger)
	if *dir != "" {
		w, err := store.Watch()
		if err != nil {
			logger.Warn("inputtop: watch disabled", "dir", *dir, "err", err)
		} else {
			defer w.Close()
			m.reload = func() { m.swap(store) }
			m.changes = w.Changes
		}
	}
	m.run(*rate)
}

// swap rebuilds the pipeline from the store, keeping the old one on error.
func (m *monitor) swap(store *profiles.Store) {
	p, err := store.Pipeline(m.profile)
	if err != nil {
		m.logger.Error("inputtop: reload failed", "profile", m.profile, "err", err)
		m.status = "reload failed: " + err.Error()
		return
	}
	m.pipeline = p
	m.status = "reloaded " + m.profile
	m.logger.Info("inputtop: reloaded", slog.String("profile", m.profile))
}
