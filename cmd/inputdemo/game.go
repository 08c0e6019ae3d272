package main

import (
	"fmt"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.design/x/clipboard"

	"github.com/milk9111/actioninput/device/ebitendev"
	"github.com/milk9111/actioninput/ecs"
	"github.com/milk9111/actioninput/ecs/component"
	"github.com/milk9111/actioninput/ecs/system"
	"github.com/milk9111/actioninput/input"
	"github.com/milk9111/actioninput/profiles"
)

const (
	screenWidth  = 960
	screenHeight = 540
	tps          = 60
	frameDT      = 1.0 / tps

	menuContext     = "menu"
	gameplayContext = "gameplay"

	traceLimit = 3600
	statusTime = 2 * tps
)

type Game struct {
	logger  *slog.Logger
	store   *profiles.Store
	profile string

	world     *ecs.World
	scheduler *ecs.Scheduler
	device    *ebitendev.Device
	physics   *system.PhysicsSystem
	render    *RenderSystem
	player    ecs.Entity

	recorder  *profiles.Recorder
	menu      *menu
	watcher   *profiles.Watcher
	clipboard bool

	status      string
	statusTicks int
	quit        bool
}

func NewGame(store *profiles.Store, profile string, logger *slog.Logger) (*Game, error) {
	p, err := store.Pipeline(profile)
	if err != nil {
		return nil, err
	}

	g := &Game{
		logger:   logger,
		store:    store,
		profile:  profile,
		world:    ecs.NewWorld(),
		device:   ebitendev.New(logger),
		physics:  system.NewPhysicsSystem(frameDT),
		render:   NewRenderSystem(),
		recorder: profiles.NewRecorder(profile, traceLimit),
	}
	g.clipboard = clipboard.Init() == nil
	if !g.clipboard {
		logger.Warn("inputdemo: clipboard unavailable")
	}

	player, err := spawnLevel(g.world, p)
	if err != nil {
		return nil, err
	}
	g.player = player
	g.actions().Profile = profile
	g.menu = newMenu(g)

	in := system.NewInputSystem(g.device, frameDT)
	in.OnFrame = func(e ecs.Entity, f input.Frame) {
		if e == g.player {
			g.recorder.Record(f)
		}
	}
	g.scheduler = ecs.NewScheduler(
		in,
		&controlSystem{game: g},
		system.NewMovementSystem(),
		system.NewFeedbackSystem(system.ActionJump, system.ActionDash, system.ActionCharge, system.ActionFlurry),
		g.physics,
		system.NewWhiteFlashSystem(),
		system.NewLabelDriftSystem(),
		system.NewTTLSystem(),
	)
	return g, nil
}

// Watch reloads the profile whenever the store's directory changes under it.
func (g *Game) Watch() error {
	w, err := g.store.Watch()
	if err != nil {
		return err
	}
	g.watcher = w
	return nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) setStatus(format string, args ...any) {
	g.status = fmt.Sprintf(format, args...)
	g.statusTicks = statusTime
}

func (g *Game) actions() *component.Actions {
	a, _ := ecs.Get(g.world, g.player, component.ActionsComponent.Kind())
	return a
}

func (g *Game) pollReload() {
	if g.watcher == nil {
		return
	}
	open := g.watcher.Drain(func(c profiles.Change) {
		if c.Affects(g.profile) {
			g.reload(c.Name)
		}
	}, func(err error) {
		g.logger.Warn("inputdemo: watch error", "err", err)
	})
	if !open {
		g.logger.Warn("inputdemo: watcher stopped; hot reload disabled")
		_ = g.watcher.Close()
		g.watcher = nil
	}
}

func (g *Game) reload(changed string) {
	p, err := g.store.Pipeline(g.profile)
	if err != nil {
		g.logger.Error("inputdemo: reload failed", "file", changed, "err", err)
		g.setStatus("reload failed: %v", err)
		return
	}
	if err := p.SetContextActive(menuContext, g.menu.open); err != nil {
		g.logger.Warn("inputdemo: profile has no menu context", "err", err)
	}
	a := g.actions()
	a.Pipeline = p
	a.Events = nil
	g.setStatus("reloaded %s", g.profile)
}

func (g *Game) setMenuOpen(open bool) {
	a := g.actions()
	if err := a.Pipeline.SetContextActive(menuContext, open); err != nil {
		g.logger.Warn("inputdemo: toggle menu", "err", err)
		return
	}
	g.menu.open = open
	g.menu.sync()
	g.recorder.SetContext(menuContext, open)
}

func (g *Game) copyTrace() {
	data, err := profiles.EncodeTrace(g.recorder.Trace())
	if err != nil {
		g.setStatus("encode trace: %v", err)
		return
	}
	if !g.clipboard {
		g.setStatus("clipboard unavailable; trace has %d frames", g.recorder.Len())
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	g.setStatus("copied %d trace frames", g.recorder.Len())
	g.logger.Info("inputdemo: trace copied", "frames", g.recorder.Len(), "bytes", len(data))
}

func (g *Game) resetPlayer() {
	pb, ok := ecs.Get(g.world, g.player, component.PhysicsBodyComponent.Kind())
	if !ok || pb.Body == nil {
		return
	}
	pb.Body.SetPosition(spawnPoint)
	pb.Body.SetVelocity(0, 0)
	g.recorder.Reset()
	g.setStatus("reset")
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	g.pollReload()
	g.scheduler.Update(g.world)
	g.device.Advance()
	if g.menu.open {
		g.menu.ui.Update()
	}
	if g.statusTicks > 0 {
		g.statusTicks--
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.render.Draw(g.world, screen)
	g.render.DrawHUD(screen, g.actions(), g.status, g.statusTicks > 0)
	if g.menu.open {
		g.menu.ui.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// controlSystem reacts to the player's menu and tooling actions.
type controlSystem struct {
	game *Game
}

func (c *controlSystem) Update(w *ecs.World) {
	g := c.game
	for _, ev := range w.Events().Items() {
		if ev.Entity != g.player || ev.Kind != input.EventFired {
			continue
		}
		switch ev.Action {
		case "OpenMenu":
			g.setMenuOpen(true)
		case "Close":
			g.setMenuOpen(false)
		case "Confirm":
			g.menu.activate()
		case "Navigate":
			g.menu.move(ev.Value.Y)
		case "CopyTrace":
			g.copyTrace()
		}
	}
}
