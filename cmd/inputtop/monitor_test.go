package main

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/actioninput/device"
	"github.com/milk9111/actioninput/profiles"
)

func newTestMonitor(t *testing.T) *monitor {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 30)
	t.Cleanup(screen.Fini)

	p, err := profiles.NewStore("", nil).Pipeline("terminal.toml")
	require.NoError(t, err)
	return newMonitor(screen, p, device.NewTerminal(1), "terminal.toml", slog.New(slog.DiscardHandler))
}

func screenText(s tcell.SimulationScreen) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for i, c := range cells {
		if len(c.Runes) > 0 {
			b.WriteRune(c.Runes[0])
		} else {
			b.WriteByte(' ')
		}
		if (i+1)%w == 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func press(m *monitor, r rune) {
	m.handle(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func TestMonitorQuitAction(t *testing.T) {
	m := newTestMonitor(t)
	m.tick(0.05)
	assert.False(t, m.quit)

	press(m, 'q')
	m.tick(0.05)
	assert.True(t, m.quit)
}

func TestMonitorCtrlCQuits(t *testing.T) {
	m := newTestMonitor(t)
	m.handle(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	assert.True(t, m.quit)
}

func TestMonitorPauseFreezesHistory(t *testing.T) {
	m := newTestMonitor(t)

	press(m, 'p')
	m.tick(0.05)
	require.True(t, m.paused)
	m.tick(0.05)

	press(m, 'd')
	m.tick(0.05)
	assert.Empty(t, m.history)

	press(m, 'p')
	m.tick(0.05)
	assert.False(t, m.paused)
	assert.NotEmpty(t, m.history)
}

func TestMonitorDraw(t *testing.T) {
	m := newTestMonitor(t)
	press(m, 'd')
	m.tick(0.05)
	m.status = "reloaded terminal.toml"
	m.draw()

	text := screenText(m.screen.(tcell.SimulationScreen))
	assert.Contains(t, text, "inputtop  terminal.toml  tick 1")
	assert.Contains(t, text, "Move")
	assert.Contains(t, text, "Move:started")
	assert.Contains(t, text, "reloaded terminal.toml")
}
