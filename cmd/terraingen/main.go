package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"polyterrain/internal/config"
	"polyterrain/internal/export"
	"polyterrain/internal/profiling"
	"polyterrain/internal/runindex"
	"polyterrain/internal/terrain"
	"polyterrain/pkg/catalog"

	"github.com/xlab/closer"
)

func main() {
	var (
		configPath  = flag.String("config", "", "YAML parameter file (defaults when empty)")
		seed        = flag.Int("seed", -1, "override the seed (-1 keeps the config value)")
		count       = flag.Int("count", 1, "number of runs, with consecutive seeds")
		outDir      = flag.String("out", "./out", "export directory; each run writes to <out>/seed_<seed>")
		catalogDir  = flag.String("catalog", "", "prefab catalog directory (embedded catalog when empty)")
		indexPath   = flag.String("index", "", "SQLite run index (disabled when empty)")
		heightmap   = flag.Int("heightmap", 257, "heightmap resolution in pixels (0 disables)")
		mapScale    = flag.Float64("map", 2, "SVG map pixels per unit (0 disables)")
		noMeshes    = flag.Bool("no_meshes", false, "skip the mesh bundle")
		workers     = flag.Int("workers", 0, "worker goroutines (0 uses the config value or GOMAXPROCS)")
		timeout     = flag.Duration("timeout", 0, "abort a run after this long (0 disables)")
		listRecent  = flag.Int("list", 0, "print the most recent runs from -index and exit")
		printParams = flag.Bool("print_params", false, "print the effective parameters as YAML and exit")
		quiet       = flag.Bool("quiet", false, "only log errors")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "terraingen: ", log.LstdFlags)
	if *quiet {
		logger.SetOutput(io.Discard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(cancel)
	defer closer.Close()

	params := config.Default()
	if *configPath != "" {
		p, err := config.Load(*configPath)
		if err != nil {
			closer.Fatalln(err)
		}
		params = p
	}
	if *seed >= 0 {
		params.Seed = *seed
	}
	if *workers > 0 {
		params.Workers = *workers
	}
	if params.Workers <= 0 {
		params.Workers = runtime.GOMAXPROCS(0)
	}
	if err := params.Validate(); err != nil {
		closer.Fatalln(err)
	}

	if *printParams {
		b, err := config.Marshal(params)
		if err != nil {
			closer.Fatalln(err)
		}
		os.Stdout.Write(b)
		return
	}

	var index *runindex.Index
	if *indexPath != "" {
		ix, err := runindex.Open(*indexPath)
		if err != nil {
			closer.Fatalln(fmt.Errorf("open index: %w", err))
		}
		index = ix
		closer.Bind(func() { _ = index.Close() })
	}

	if *listRecent > 0 {
		if index == nil {
			closer.Fatalln("-list needs -index")
		}
		runs, err := index.Recent(ctx, *listRecent)
		if err != nil {
			closer.Fatalln(err)
		}
		for _, r := range runs {
			fmt.Printf("#%d seed=%d tris=%d instances=%v digest=%.12s dir=%s\n",
				r.ID, r.Seed, r.Triangles, r.Instances, r.Digest, r.Dir)
		}
		return
	}

	var cat *catalog.Catalog
	if *catalogDir != "" {
		c, err := catalog.Load(os.DirFS(*catalogDir))
		if err != nil {
			closer.Fatalln(fmt.Errorf("load catalog: %w", err))
		}
		cat = c
	}

	opts := export.DefaultOptions()
	opts.HeightmapResolution = *heightmap
	opts.MapScale = *mapScale
	opts.Meshes = !*noMeshes

	for i := 0; i < *count; i++ {
		p := params
		p.Seed = params.Seed + i
		if err := runOnce(ctx, logger, p, cat, *outDir, opts, index, *timeout); err != nil {
			closer.Fatalln(err)
		}
	}
}

func runOnce(ctx context.Context, logger *log.Logger, p config.Params, cat *catalog.Catalog, outDir string, opts export.Options, index *runindex.Index, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	profiling.Reset()

	start := time.Now()
	gc, err := terrain.Generate(ctx, p, terrain.Options{Logger: logger, Catalog: cat})
	if err != nil {
		return fmt.Errorf("seed %d: %w", p.Seed, err)
	}

	dir := filepath.Join(outDir, fmt.Sprintf("seed_%d", p.Seed))
	m, err := export.Export(dir, gc, opts)
	if err != nil {
		return fmt.Errorf("seed %d: %w", p.Seed, err)
	}
	s := m.Summary
	logger.Printf("seed %d: %d triangles, %d instances, digest %.12s in %v -> %s",
		p.Seed, s.Triangles, len(gc.Instances), m.Digest, time.Since(start).Round(time.Millisecond), dir)

	if index != nil {
		id, err := index.Record(ctx, m, dir)
		if err != nil {
			return fmt.Errorf("index seed %d: %w", p.Seed, err)
		}
		logger.Printf("indexed run #%d", id)
	}
	return nil
}
