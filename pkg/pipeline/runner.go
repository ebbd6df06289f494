package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sortgroup/pkg/cache"
	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
	sgio "github.com/matzehuels/sortgroup/pkg/io"
	"github.com/matzehuels/sortgroup/pkg/sorting"
)

// Runner executes the pipeline with artifact caching.
//
// A Runner holds no per-run state, so commands can share one across
// reloads.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses the default keyer, and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute loads the scene at path, runs one assignment frame, and renders
// the requested formats.
func (r *Runner) Execute(ctx context.Context, path string, opts Options) (*Result, error) {
	return r.execute(ctx, path, opts, func() (*sgio.Scene, string, error) {
		return r.Load(path, opts)
	})
}

// ExecuteData is Execute for a scene already in memory, such as a request
// body. format names the encoding of data.
func (r *Runner) ExecuteData(ctx context.Context, data []byte, format sgio.Format, opts Options) (*Result, error) {
	return r.execute(ctx, "<"+string(format)+">", opts, func() (*sgio.Scene, string, error) {
		return r.Decode(data, format, opts)
	})
}

func (r *Runner) execute(ctx context.Context, source string, opts Options, load func() (*sgio.Scene, string, error)) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Load
	loadStart := time.Now()
	s, hash, err := load()
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	res := &Result{Scene: s, SceneHash: hash}
	res.Stats.LoadTime = time.Since(loadStart)
	res.Stats.Renderers = len(s.World.Renderers())
	res.Stats.Groups = len(s.World.Groups())

	r.Logger.Info("loaded scene",
		"source", source,
		"renderers", res.Stats.Renderers,
		"groups", res.Stats.Groups,
		"duration", res.Stats.LoadTime)

	// Stage 2: Assign
	assignStart := time.Now()
	passes, err := s.World.Frame()
	if err != nil {
		return nil, fmt.Errorf("assign: %w", err)
	}
	res.Stats.Passes = passes
	res.Stats.AssignTime = time.Since(assignStart)
	res.Orders = sgio.Orders(s.World)

	r.Logger.Info("assigned sort orders",
		"roots", len(passes),
		"written", res.Stats.Written(),
		"duration", res.Stats.AssignTime)

	if len(opts.Formats) == 0 {
		return res, nil
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, s.World, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.CacheHit = hit
	res.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", res.Stats.RenderTime)

	return res, nil
}

// Load reads and builds the scene at path. It also returns the content
// hash of the file.
func (r *Runner) Load(path string, opts Options) (*sgio.Scene, string, error) {
	if err := sgerrors.ValidatePath(path); err != nil {
		return nil, "", err
	}
	format, err := sgio.FormatFromPath(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", sgerrors.Wrap(sgerrors.ErrCodeNotFound, err, "read %s", path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	s, hash, err := r.Decode(data, format, opts)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return s, hash, nil
}

// Decode builds a scene from data in the given format and returns it with
// the content hash of data.
func (r *Runner) Decode(data []byte, format sgio.Format, opts Options) (*sgio.Scene, string, error) {
	s, err := sgio.Read(bytes.NewReader(data), format,
		sgio.WithDefaultMode(opts.Mode),
		sgio.WithDefaultLayer(opts.Layer),
		sgio.WithWorldOptions(sorting.WithLogger(r.Logger)),
	)
	if err != nil {
		return nil, "", err
	}
	return s, cache.Hash(data), nil
}

// RenderWithCacheInfo renders every format of opts, serving all of them
// from the cache when it can. The bool reports a full cache hit.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, w *sorting.World, sceneHash string, opts Options) (map[string][]byte, bool, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, w, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Debug("cache write failed", "format", format, "err", err)
		}
	}
	return rendered, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
