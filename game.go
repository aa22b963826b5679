package main

import (
	"fmt"
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/kakip/config"
	"github.com/milk9111/kakip/render"
	"github.com/milk9111/kakip/session"
)

var categoryKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3,
	ebiten.Key4, ebiten.Key5, ebiten.Key6,
	ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

type Game struct {
	session    *session.Session
	registry   *render.Registry
	ui         *ebitenui.UI
	watcher    *config.Watcher
	configPath string

	width, height int
	category      int
	showMenu      bool
	debug         bool

	mouseDown bool
	touching  bool
	touchID   ebiten.TouchID
}

func NewGame(s *session.Session, configPath string, watcher *config.Watcher, debug bool) *Game {
	g := &Game{
		session:    s,
		registry:   render.NewRegistry(),
		watcher:    watcher,
		configPath: configPath,
		debug:      debug,
		category:   -1,
	}
	g.ui = NewMenuUI(g)
	g.syncSprites()
	return g
}

func (g *Game) Update() error {
	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if g.showMenu {
			g.showMenu = false
		} else {
			return ebiten.Termination
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.showMenu = !g.showMenu
		g.release()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.session.Reset(); err != nil {
			log.Printf("Game: reset: %v", err)
		}
	}
	for i, k := range categoryKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.selectCategory(i)
		}
	}

	if g.showMenu {
		g.ui.Update()
	} else {
		g.updateMouse()
		g.updateTouch()
	}

	g.syncSprites()
	return nil
}

func (g *Game) updateMouse() {
	if g.touching {
		return
	}
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.mouseDown = true
		g.session.Touch(session.Down, x, y)
	case g.mouseDown && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.mouseDown = false
		g.session.Touch(session.Up, x, y)
	case g.mouseDown:
		g.session.Touch(session.Move, x, y)
	}
}

// updateTouch follows the first finger down until it lifts.
func (g *Game) updateTouch() {
	if g.mouseDown {
		return
	}
	if !g.touching {
		ids := inpututil.AppendJustPressedTouchIDs(nil)
		if len(ids) == 0 {
			return
		}
		g.touching = true
		g.touchID = ids[0]
		tx, ty := ebiten.TouchPosition(g.touchID)
		g.session.Touch(session.Down, float64(tx), float64(ty))
		return
	}
	if inpututil.IsTouchJustReleased(g.touchID) {
		g.touching = false
		g.session.Touch(session.Up, 0, 0)
		return
	}
	tx, ty := ebiten.TouchPosition(g.touchID)
	g.session.Touch(session.Move, float64(tx), float64(ty))
}

func (g *Game) release() {
	if g.mouseDown || g.touching {
		g.session.Touch(session.Up, 0, 0)
	}
	g.mouseDown = false
	g.touching = false
}

func (g *Game) selectCategory(i int) {
	g.release()
	if err := g.session.SetCategory(i); err != nil {
		log.Printf("Game: category %d: %v", i+1, err)
	}
}

// syncSprites reloads images when the session's category changed.
func (g *Game) syncSprites() {
	i, _ := g.session.Category()
	if i == g.category {
		return
	}
	g.category = i
	g.registry.Use(g.session.CategorySprites())
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	select {
	case path, ok := <-g.watcher.Events:
		if !ok {
			g.watcher = nil
			return
		}
		cfg, cat, err := session.Load(g.configPath)
		if err != nil {
			log.Printf("Game: reload after %s: %v", path, err)
			return
		}
		g.release()
		if err := g.session.ApplyConfig(cfg, cat); err != nil {
			log.Printf("Game: apply %s: %v", path, err)
			return
		}
		g.category = -1
		g.ui = NewMenuUI(g)
		log.Printf("Game: reloaded %s", path)
	case err, ok := <-g.watcher.Errors:
		if ok {
			log.Printf("Game: watcher: %v", err)
		}
	default:
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	frame := g.session.Frame()
	render.DrawFrame(screen, frame, g.registry)

	_, name := g.session.Category()
	if g.debug {
		sm := g.session.Sim()
		ebitenutil.DebugPrint(screen, fmt.Sprintf("%s  %d seeds  t=%.1fs  FPS: %.2f  [%s]",
			name, len(frame.Sprites), sm.SimTime(), ebiten.ActualFPS(), sm.Drag()))
	} else {
		ebitenutil.DebugPrint(screen, name+"  (tab: menu, 1-9: category, r: reset)")
	}

	if g.showMenu {
		g.ui.Draw(screen)
	}
}

// Layout uses the window size as the surface so the arena always fills it.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.release()
		if err := g.session.SurfaceChanged(outsideWidth, outsideHeight); err != nil {
			log.Printf("Game: surface %dx%d: %v", outsideWidth, outsideHeight, err)
		}
	}
	return outsideWidth, outsideHeight
}
