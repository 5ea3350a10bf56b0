package main

import (
	"context"
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"planetforge/internal/config"
	"planetforge/internal/terrain"
	"planetforge/internal/world"
)

func main() {
	var (
		cfgPath      string
		manifestPath string
		bakeRadius   int
	)
	flag.StringVar(&cfgPath, "config", "", "path to planet configuration file")
	flag.StringVar(&manifestPath, "planet", "", "path to a YAML planet manifest overriding the planet section")
	flag.IntVar(&bakeRadius, "bake-radius", 4, "chunk radius around the origin to bake")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if manifestPath != "" {
		if err := loadPlanetManifest(cfg, manifestPath); err != nil {
			log.Fatalf("load planet manifest: %v", err)
		}
	}
	applyEnvOverrides(cfg)

	params := cfg.WorldGenParams()

	var db *world.DB
	if cfg.Persistence.DataDir != "" {
		db, err = world.OpenDB(cfg.Persistence.DataDir)
		if err != nil {
			log.Fatalf("open world database: %v", err)
		}
		defer db.Close()

		meta, ok, err := db.Metadata()
		if err != nil {
			log.Fatalf("load world metadata: %v", err)
		}
		if ok {
			log.Printf("resuming world %s (%s) seed=%d", meta.Name, meta.ID, meta.Seed)
			params = meta.WorldGen
		} else {
			meta = world.NewWorldMetadata(cfg, params)
			if err := db.PutMetadata(meta); err != nil {
				log.Fatalf("store world metadata: %v", err)
			}
			log.Printf("created world %s (%s) seed=%d", meta.Name, meta.ID, meta.Seed)
		}
	}

	gen := terrain.New(params)

	if cfg.Preview.Path != "" {
		if err := terrain.ExportPlanetMap(gen, cfg.Preview.Path, cfg.Preview.Width, cfg.Preview.Height); err != nil {
			log.Printf("planet map export failed: %v", err)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	store := world.NewPayloadStore(db, cfg.Persistence.DebugDir, cfg.Bake.QueueSize)
	manager := world.NewManager(gen, store, cfg.Bake.Workers, cfg.Bake.QueueSize)
	manager.Start(ctx)
	defer manager.Close()

	bakeAroundOrigin(ctx, manager, cfg, bakeRadius)
}

// bakeAroundOrigin requests every column of chunks within radius of the world
// origin and waits for the results, logging progress as bakes complete.
func bakeAroundOrigin(ctx context.Context, manager *world.Manager, cfg *config.Config, radius int) {
	if radius < 0 {
		return
	}

	type bakeTarget struct {
		pos      world.ChunkPos
		distance float64
	}
	var targets []bakeTarget
	for cz := -radius; cz <= radius; cz++ {
		for cx := -radius; cx <= radius; cx++ {
			distance := math.Sqrt(float64(cx*cx + cz*cz))
			for cy := 0; cy < cfg.Planet.HeightChunks; cy++ {
				targets = append(targets, bakeTarget{world.ChunkPos{X: cx, Y: cy, Z: cz}, distance})
			}
		}
	}

	log.Printf("baking %d chunks with %d workers", len(targets), cfg.Bake.Workers)
	start := time.Now()
	total := len(targets)
	done := 0

	progress := func(res world.BakeResult) {
		done++
		if done%64 == 0 || done == total {
			log.Printf("baked %d/%d chunks (latest %v rev %d)", done, total, res.Pos, res.Revision)
		}
	}

	// The sweep can exceed the queue capacity, so drain a result whenever a
	// request does not fit before trying again.
	for _, target := range targets {
		for !manager.Request(target.pos, target.distance) {
			select {
			case <-ctx.Done():
				log.Printf("bake interrupted after %d/%d chunks", done, total)
				return
			case res := <-manager.Results():
				progress(res)
			}
		}
	}
	for done < total {
		select {
		case <-ctx.Done():
			log.Printf("bake interrupted after %d/%d chunks", done, total)
			return
		case res := <-manager.Results():
			progress(res)
		}
	}
	log.Printf("bake complete: %d chunks in %s", total, time.Since(start).Round(time.Millisecond))
}

// applyEnvOverrides lets deployment environments flip a few switches without
// editing the config file.
func applyEnvOverrides(cfg *config.Config) {
	if path := os.Getenv("PLANETFORGE_EXPORT_MAP"); path != "" {
		cfg.Preview.Path = path
	}
	if size := os.Getenv("PLANETFORGE_MAP_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil && n > 0 {
			cfg.Preview.Width = n
			cfg.Preview.Height = n / 2
		} else {
			log.Printf("ignoring invalid PLANETFORGE_MAP_SIZE %q", size)
		}
	}
	if dir := os.Getenv("PLANETFORGE_DATA_DIR"); dir != "" {
		cfg.Persistence.DataDir = dir
	}
	if dir := os.Getenv("PLANETFORGE_DEBUG_PAYLOAD_DIR"); dir != "" {
		cfg.Persistence.DebugDir = dir
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}

		// Ensure the process terminates if shutdown stalls.
		time.AfterFunc(10*time.Second, func() {
			log.Printf("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
