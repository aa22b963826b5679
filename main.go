package main

import (
	"context"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/kakip/config"
	"github.com/milk9111/kakip/physics"
	"github.com/milk9111/kakip/session"
)

func main() {
	configPath := flag.String("config", "", "TOML config file (embedded defaults when empty)")
	category := flag.String("category", "", "sprite category to start with")
	backend := flag.String("backend", "", "physics backend: chipmunk or box2d")
	watch := flag.Bool("watch", false, "reload config and catalog when they change on disk")
	debug := flag.Bool("debug", false, "show simulation stats")
	flag.Parse()

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

	var watcher *config.Watcher
	if *watch && *configPath != "" {
		watcher, err = config.NewWatcher(*configPath, cfg.Catalog.Path)
		if err != nil {
			log.Printf("main: watch disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(960, 540)
	ebiten.SetWindowTitle("kakip")

	game := NewGame(s, *configPath, watcher, *debug)
	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		log.Fatal(err)
	}
}
