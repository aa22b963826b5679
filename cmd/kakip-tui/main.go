// Command kakip-tui runs the seed arena in a terminal. Drag seeds with the
// left mouse button; 1-9 switch category, r resets, q quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/milk9111/kakip/catalog"
	"github.com/milk9111/kakip/physics"
	"github.com/milk9111/kakip/session"
	"github.com/milk9111/kakip/sim"
)

const sampleRate = beep.SampleRate(44100)

var (
	background = tcell.NewRGBColor(0x2f, 0x4f, 0x4f)
	highlight  = tcell.NewRGBColor(0xff, 0xd7, 0x00)
)

type app struct {
	screen  tcell.Screen
	session *session.Session
	canvas  *canvas
	colors  []tcell.Color

	category  int
	mouseDown bool
	audioInit bool
}

func main() {
	configPath := flag.String("config", "", "TOML config file (embedded defaults when empty)")
	category := flag.String("category", "", "sprite category to start with")
	backend := flag.String("backend", "", "physics backend: chipmunk or box2d")
	mute := flag.Bool("mute", false, "disable the grab sound")
	logPath := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	// the terminal owns stdout while running
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	cfg, cat, err := session.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *category != "" {
		cfg.Catalog.Category = *category
	}
	if *backend != "" {
		kind, err := physics.ParseKind(*backend)
		if err != nil {
			log.Fatal(err)
		}
		cfg.Physics.Backend = string(kind)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, err := session.New(ctx, cfg, cat)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	if *logPath == "" {
		log.SetOutput(io.Discard)
	}

	a := &app{screen: screen, session: s, canvas: newCanvas(0, 0), category: -1}
	screen.EnableMouse()
	screen.HideCursor()
	if !*mute {
		if err := a.initAudio(); err != nil {
			log.Printf("Audio: init failed: %v", err)
		}
	}
	a.resize()
	a.run()
	a.cleanup()
}

func (a *app) initAudio() error {
	err := speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	if err == nil {
		a.audioInit = true
	}
	return err
}

func (a *app) playGrabSound() {
	if !a.audioInit {
		return
	}
	sine, err := generators.SineTone(sampleRate, 660)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(40*time.Millisecond), sine))
}

func (a *app) cleanup() {
	if a.audioInit {
		speaker.Close()
	}
	a.screen.Fini()
}

func (a *app) run() {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok || !a.handle(ev) {
				return
			}
		case <-ticker.C:
			a.draw()
		}
	}
}

func (a *app) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'r':
			if err := a.session.Reset(); err != nil {
				log.Printf("App: reset: %v", err)
			}
		case ev.Key() == tcell.KeyRune && ev.Rune() >= '1' && ev.Rune() <= '9':
			a.release()
			i := int(ev.Rune() - '1')
			if err := a.session.SetCategory(i); err != nil {
				log.Printf("App: category %d: %v", i+1, err)
			}
		}
	case *tcell.EventMouse:
		a.mouse(ev)
	case *tcell.EventResize:
		a.screen.Sync()
		a.resize()
	}
	return true
}

func (a *app) mouse(ev *tcell.EventMouse) {
	col, row := ev.Position()
	x, y := cellToPixel(col, row)
	pressed := ev.Buttons()&tcell.Button1 != 0
	switch {
	case pressed && !a.mouseDown:
		a.mouseDown = true
		a.session.Touch(session.Down, x, y)
		if a.session.Sim().Drag().IsDragging() {
			a.playGrabSound()
		}
	case pressed:
		a.session.Touch(session.Move, x, y)
	case a.mouseDown:
		a.mouseDown = false
		a.session.Touch(session.Up, x, y)
	}
}

func (a *app) release() {
	if a.mouseDown {
		a.session.Touch(session.Up, 0, 0)
		a.mouseDown = false
	}
}

// resize keeps the last row for the status line.
func (a *app) resize() {
	a.release()
	cols, rows := a.screen.Size()
	rows--
	a.canvas.resize(cols, rows)
	if cols <= 0 || rows <= 0 {
		a.session.SurfaceDestroyed()
		return
	}
	if err := a.session.SurfaceChanged(cols, rows*2); err != nil {
		log.Printf("App: surface %dx%d: %v", cols, rows*2, err)
	}
}

func (a *app) syncColors() {
	i, _ := a.session.Category()
	if i == a.category {
		return
	}
	a.category = i
	a.colors = spriteColors(a.session.CategorySprites())
}

func spriteColors(sprites []catalog.Sprite) []tcell.Color {
	colors := make([]tcell.Color, len(sprites))
	for i, s := range sprites {
		c := s.RGBA()
		colors[i] = tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
	return colors
}

func (a *app) draw() {
	a.syncColors()
	frame := a.session.Frame()

	a.canvas.clear()
	for _, s := range frame.Sprites {
		a.canvas.fill(s, a.spriteColor(s))
	}
	a.screen.Clear()
	a.canvas.draw(a.screen, background)
	a.status(frame)
	a.screen.Show()
}

func (a *app) spriteColor(s sim.SpriteFrame) tcell.Color {
	if s.Dragged {
		return highlight
	}
	if s.SpriteID >= 0 && s.SpriteID < len(a.colors) {
		return a.colors[s.SpriteID]
	}
	return tcell.ColorGray
}

func (a *app) status(f sim.Frame) {
	_, rows := a.screen.Size()
	_, name := a.session.Category()
	sm := a.session.Sim()
	kind, _ := sm.Backend()
	line := fmt.Sprintf("%s  %s  %d seeds  t=%.0fs  [1-9] category  [r] reset  [q] quit", name, kind, len(f.Sprites), sm.SimTime())
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	for i, r := range []rune(line) {
		a.screen.SetContent(i, rows-1, r, nil, style)
	}
}
