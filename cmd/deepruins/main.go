package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"chosenoffset.com/deepruins/internal/assets"
	"chosenoffset.com/deepruins/internal/config"
	"chosenoffset.com/deepruins/internal/content"
	"chosenoffset.com/deepruins/internal/dice"
	"chosenoffset.com/deepruins/internal/game"
	"chosenoffset.com/deepruins/internal/gamedata"
	"chosenoffset.com/deepruins/internal/inspect"
	"chosenoffset.com/deepruins/internal/logging"
	ebitenrender "chosenoffset.com/deepruins/internal/render/ebiten"
	"chosenoffset.com/deepruins/internal/scene"
	"chosenoffset.com/deepruins/internal/storage"
	"chosenoffset.com/deepruins/internal/storage/backend"
)

func main() {
	configPath := flag.String("config", "deepruins.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	store, err := backend.Open(cfg.SaveBackend, cfg.SavePath)
	if err != nil {
		return fmt.Errorf("failed to open save store: %w", err)
	}
	defer store.Close()

	tables, err := content.LoadDir(cfg.ContentDir)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		if seed, err = dice.NewSeed(); err != nil {
			return fmt.Errorf("failed to seed dice: %w", err)
		}
	}
	log.WithField("seed", seed).Debug("Dice seeded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	record := gamedata.New(tables)
	loadSave(ctx, record, store, cfg.SaveSlot)

	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	loader := ebitenrender.NewResourceLoader()
	engine := ebitenrender.NewEngine()

	textures := assets.NewLibrary(renderer, loader)
	defer textures.Dispose()
	textures.LoadManifest(cfg.AssetDir)

	services := &scene.Services{
		Record:   record,
		Tables:   tables,
		Renderer: renderer,
		Input:    inputMgr,
		Textures: textures,
		Roller:   dice.NewSeededRoller(seed),
		Rules:    cfg.Rules,
		Store:    store,
		Slot:     cfg.SaveSlot,
		Width:    cfg.ScreenWidth,
		Height:   cfg.ScreenHeight,
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.DebugAddr != "" {
		hub := inspect.NewHub()
		services.Publisher = hub
		srv := inspect.NewServer(cfg.DebugAddr, hub, record)
		srv.SetStore(store, cfg.SaveSlot)
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	manager := scene.NewManager(services, scene.Options{
		Initial:     game.SceneMenu,
		FadeSeconds: float32(cfg.Rules.FadeSeconds),
		TPS:         cfg.TPS,
	})
	defer manager.Close()
	game.Register(manager)
	if err := manager.SwitchTo(game.SceneMenu, nil); err != nil {
		return fmt.Errorf("failed to open the title screen: %w", err)
	}

	engine.SetWindowSize(cfg.ScreenWidth, cfg.ScreenHeight)
	engine.SetWindowTitle(cfg.Title)
	engine.SetWindowResizable(true)
	engine.SetTPS(cfg.TPS)

	log.Info("Starting game...")
	runErr := engine.RunGame(manager)

	cancel()
	if err := g.Wait(); err != nil {
		log.Errorf("Inspector stopped with error: %v", err)
	}
	return runErr
}

// loadSave rehydrates record from the configured slot. A missing or unreadable
// save leaves the new-game defaults in place.
func loadSave(ctx context.Context, record *gamedata.Record, store storage.Store, slot string) {
	loaded, err := record.LoadExisting(ctx, store, slot)
	switch {
	case err != nil:
		log.WithField("slot", slot).Warnf("Failed to load save, starting fresh: %v", err)
	case loaded:
		log.WithField("slot", slot).Info("Loaded saved game")
	default:
		log.WithField("slot", slot).Info("No saved game, starting fresh")
	}
}
