// Package heights fills in item heights from local image files.
//
// Only the image header is decoded, so resolving a board of large photos
// stays cheap. The height an item gets is its image scaled to the inner
// width of one column, preserving aspect ratio:
//
//	height = innerWidth * imageHeight / imageWidth
//
// Items whose image cannot be read or decoded keep an unknown height and
// the layout engine places them at its fallback height.
package heights

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/cache"
	perrors "github.com/matzehuels/pinboard/pkg/errors"
)

// DefaultConcurrency bounds the number of images decoded at once.
const DefaultConcurrency = 8

// Dimensions is the pixel size of an image.
type Dimensions struct {
	Width  int `json:"w"`
	Height int `json:"h"`
}

// Scale returns the height of an image shown at width w.
// It returns false for degenerate images.
func (d Dimensions) Scale(w float64) (float64, bool) {
	if d.Width <= 0 || d.Height <= 0 {
		return 0, false
	}
	return w * float64(d.Height) / float64(d.Width), true
}

// InnerWidth is the width available to item content in one column.
func InnerWidth(contentWidth float64, columns int, padding float64) float64 {
	if columns < 1 {
		return 0
	}
	return math.Max(0, contentWidth/float64(columns)-2*padding)
}

// Resolver decodes image dimensions, optionally through a cache.
type Resolver struct {
	cache       cache.Cache
	keyer       cache.Keyer
	logger      *log.Logger
	concurrency int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache stores decoded dimensions in c under keys from k.
// A nil keyer uses [cache.NewDefaultKeyer].
func WithCache(c cache.Cache, k cache.Keyer) Option {
	return func(r *Resolver) {
		if c != nil {
			r.cache = c
		}
		if k != nil {
			r.keyer = k
		}
	}
}

// WithLogger sets the logger for decode failures and cache errors.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithConcurrency bounds parallel decodes. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n >= 1 {
			r.concurrency = n
		}
	}
}

// NewResolver creates a resolver. Without [WithCache] nothing is cached.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		cache:       cache.NewNullCache(),
		keyer:       cache.NewDefaultKeyer(),
		logger:      log.Default(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dimensions reads the image at path and returns its size.
//
// It returns a FILE_NOT_FOUND error if the file does not exist and an
// UNSUPPORTED_FORMAT error if no registered decoder recognizes it.
// Cache failures are logged and never fail the lookup.
func (r *Resolver) Dimensions(ctx context.Context, path string) (Dimensions, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Dimensions{}, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "image %s", path)
	}
	if err != nil {
		return Dimensions{}, fmt.Errorf("read %s: %w", path, err)
	}

	key := r.keyer.DimensionsKey(cache.Hash(data))
	var d Dimensions
	err = cache.RetryWithBackoff(ctx, func() error {
		hit, err := cache.GetJSON(ctx, r.cache, "dims", key, &d)
		if err == nil && !hit {
			return cache.ErrNotFound
		}
		return err
	})
	switch {
	case err == nil:
		return d, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Dimensions{}, err
	case !errors.Is(err, cache.ErrNotFound):
		r.logger.Warn("dimensions cache read failed", "path", path, "err", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return Dimensions{}, perrors.Wrap(perrors.ErrCodeUnsupportedFormat, err, "image %s", path)
	}
	if err != nil {
		return Dimensions{}, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	d = Dimensions{Width: cfg.Width, Height: cfg.Height}
	r.logger.Debug("decoded image header", "path", path, "format", format, "width", d.Width, "height", d.Height)

	if err := cache.SetJSON(ctx, r.cache, "dims", key, d, cache.TTLDimensions); err != nil {
		r.logger.Warn("dimensions cache write failed", "path", path, "err", err)
	}
	return d, nil
}

// Stats summarizes a resolve pass.
type Stats struct {
	Resolved int           // heights filled from images
	Failed   int           // images that could not be read or decoded
	Skipped  int           // items with a known height or no image
	Duration time.Duration // wall time of the pass
}

// Resolve returns a copy of items with unknown heights filled from their
// images, scaled to innerWidth. pathOf maps an item to its image file; an
// empty result skips the item.
//
// Per-image failures are logged and counted in Stats. Resolve only returns
// an error when ctx is done.
func (r *Resolver) Resolve(ctx context.Context, items []board.Item, innerWidth float64, pathOf func(board.Item) string) ([]board.Item, Stats, error) {
	start := time.Now()
	out := append([]board.Item(nil), items...)

	var resolved, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	skipped := 0
	for i := range out {
		i := i
		if out[i].Height != nil {
			skipped++
			continue
		}
		path := pathOf(out[i])
		if path == "" {
			skipped++
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := r.Dimensions(gctx, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				r.logger.Warn("image height unavailable", "item", out[i].ID, "path", path, "err", err)
				failed.Add(1)
				return nil
			}
			h, ok := d.Scale(innerWidth)
			if !ok {
				r.logger.Warn("image has no area", "item", out[i].ID, "path", path)
				failed.Add(1)
				return nil
			}
			out[i].Height = &h
			resolved.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}
	return out, Stats{
		Resolved: int(resolved.Load()),
		Failed:   int(failed.Load()),
		Skipped:  skipped,
		Duration: time.Since(start),
	}, nil
}

// ResolveBoard fills unknown heights on b in place, scaled to the board's
// current inner column width. The board's layout is invalidated only if a
// height changed.
func (r *Resolver) ResolveBoard(ctx context.Context, b *board.Board, pathOf func(board.Item) string) (Stats, error) {
	e := b.Engine()
	inner := InnerWidth(b.ContentWidth(), e.Columns(), e.Padding())

	items := b.Items()
	filled, stats, err := r.Resolve(ctx, items, inner, pathOf)
	if err != nil {
		return Stats{}, err
	}
	for i := range filled {
		if items[i].Height == nil && filled[i].Height != nil {
			if err := b.SetHeight(i, *filled[i].Height); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}
