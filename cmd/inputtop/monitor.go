package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/milk9111/actioninput/device"
	"github.com/milk9111/actioninput/input"
	"github.com/milk9111/actioninput/profiles"
)

const (
	historyLen  = 12
	quitAction  = "Quit"
	pauseAction = "Pause"
)

type monitor struct {
	screen   tcell.Screen
	pipeline *input.Pipeline
	term     *device.Terminal
	profile  string
	logger   *slog.Logger

	history []string
	status  string
	paused  bool
	quit    bool

	reload  func()
	changes <-chan profiles.Change
}

func newMonitor(screen tcell.Screen, p *input.Pipeline, term *device.Terminal, profile string, logger *slog.Logger) *monitor {
	return &monitor{
		screen:   screen,
		pipeline: p,
		term:     term,
		profile:  profile,
		logger:   logger,
	}
}

func (m *monitor) run(rate time.Duration) {
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := m.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	dt := float32(rate.Seconds())
	for !m.quit {
		select {
		case ev := <-eventChan:
			m.handle(ev)
		case c, ok := <-m.changes:
			if !ok {
				m.changes = nil
				continue
			}
			m.logger.Debug("inputtop: file changed", "file", c.Name, "kind", c.Kind.String())
			if m.reload != nil && c.Affects(m.profile) {
				m.reload()
			}
		case <-ticker.C:
			m.tick(dt)
			m.draw()
		}
	}
}

func (m *monitor) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			m.quit = true
			return
		}
	case *tcell.EventResize:
		m.screen.Sync()
		return
	}
	m.term.HandleEvent(ev)
}

func (m *monitor) tick(dt float32) {
	events := m.pipeline.Tick(device.Frame(m.term, m.pipeline.Sources(), dt))
	m.term.Advance()

	// Pause is a toggle: the action stays fired while paused.
	st, _ := m.pipeline.State(pauseAction)
	m.paused = st == input.StateFired

	for _, e := range events {
		if e.Action == quitAction && e.Kind == input.EventFired {
			m.quit = true
		}
		if !m.paused {
			m.history = append(m.history, fmt.Sprintf("%6d %s %s", m.pipeline.Ticks(), profiles.EventLabel(e), e.Value))
		}
	}
	if over := len(m.history) - historyLen; over > 0 {
		m.history = m.history[over:]
	}
}

func stateStyle(s input.ActionState) tcell.Style {
	switch s {
	case input.StateFired:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	case input.StateOngoing:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case input.StateCanceled:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case input.StateCompleted:
		return tcell.StyleDefault.Foreground(tcell.ColorBlue)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorGray)
}

func (m *monitor) draw() {
	m.screen.Clear()
	header := fmt.Sprintf("inputtop  %s  tick %d", m.profile, m.pipeline.Ticks())
	if m.paused {
		header += "  [history paused]"
	}
	drawText(m.screen, 0, 0, tcell.StyleDefault.Reverse(true), header)

	row := 2
	drawText(m.screen, 0, row, tcell.StyleDefault.Underline(true),
		fmt.Sprintf("%-10s %-14s %-10s %-22s %s", "CONTEXT", "ACTION", "STATE", "VALUE", "ELAPSED"))
	for _, a := range m.pipeline.Actions() {
		row++
		ctx := a.Context
		if !a.ContextActive {
			ctx += "*"
		}
		drawText(m.screen, 0, row, tcell.StyleDefault, fmt.Sprintf("%-10s %-14s", ctx, a.Key))
		drawText(m.screen, 26, row, stateStyle(a.State), a.State.String())
		drawText(m.screen, 37, row, tcell.StyleDefault, fmt.Sprintf("%-22s %.2f", a.Value, a.Time.Elapsed))
	}

	row += 2
	drawText(m.screen, 0, row, tcell.StyleDefault.Underline(true), "EVENTS")
	for _, line := range m.history {
		row++
		drawText(m.screen, 0, row, tcell.StyleDefault, line)
	}
	if m.status != "" {
		_, h := m.screen.Size()
		drawText(m.screen, 0, h-1, tcell.StyleDefault.Foreground(tcell.ColorAqua), m.status)
	}
	m.screen.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
