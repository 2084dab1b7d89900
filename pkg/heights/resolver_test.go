package heights

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/cache"
	perrors "github.com/matzehuels/pinboard/pkg/errors"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
	return path
}

func writeBMP(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, bmp.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
	return path
}

func TestInnerWidth(t *testing.T) {
	tests := []struct {
		width   float64
		columns int
		padding float64
		want    float64
	}{
		{300, 2, 6, 138},
		{320, 2, 6, 148},
		{300, 3, 0, 100},
		{10, 2, 6, 0},
		{300, 0, 6, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InnerWidth(tt.width, tt.columns, tt.padding),
			"InnerWidth(%v, %d, %v)", tt.width, tt.columns, tt.padding)
	}
}

func TestScale(t *testing.T) {
	h, ok := Dimensions{Width: 200, Height: 100}.Scale(148)
	assert.True(t, ok)
	assert.Equal(t, 74.0, h)

	_, ok = Dimensions{}.Scale(148)
	assert.False(t, ok, "Scale of empty dimensions should fail")
}

func TestDimensions(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver()
	ctx := context.Background()

	d, err := r.Dimensions(ctx, writePNG(t, dir, "a.png", 40, 30))
	require.NoError(t, err)
	assert.Equal(t, Dimensions{Width: 40, Height: 30}, d)

	d, err = r.Dimensions(ctx, writeBMP(t, dir, "b.bmp", 12, 24))
	require.NoError(t, err)
	assert.Equal(t, Dimensions{Width: 12, Height: 24}, d)

	_, err = r.Dimensions(ctx, filepath.Join(dir, "missing.png"))
	assert.Equal(t, perrors.ErrCodeFileNotFound, perrors.GetCode(err))

	junk := filepath.Join(dir, "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0o644))
	_, err = r.Dimensions(ctx, junk)
	assert.Equal(t, perrors.ErrCodeUnsupportedFormat, perrors.GetCode(err))
}

type countingCache struct {
	cache.Cache
	gets, hits, sets int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.gets++
	data, hit, err := c.Cache.Get(ctx, key)
	if hit {
		c.hits++
	}
	return data, hit, err
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.sets++
	return c.Cache.Set(ctx, key, data, ttl)
}

func TestDimensionsCached(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	cc := &countingCache{Cache: fc}
	r := NewResolver(WithCache(cc, nil))
	ctx := context.Background()

	// Two files with identical content share one entry.
	a := writePNG(t, dir, "a.png", 40, 30)
	b := writePNG(t, dir, "b.png", 40, 30)

	for _, path := range []string{a, b, a} {
		d, err := r.Dimensions(ctx, path)
		require.NoError(t, err, path)
		assert.Equal(t, Dimensions{Width: 40, Height: 30}, d)
	}
	assert.Equal(t, 3, cc.gets)
	assert.Equal(t, 2, cc.hits)
	assert.Equal(t, 1, cc.sets)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "wide.png", 200, 100)
	writePNG(t, dir, "tall.png", 50, 100)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte{0x89, 'P', 'N', 'G'}, 0o644))

	known := 42.0
	items := []board.Item{
		{ID: "wide", Image: "wide.png"},
		{ID: "tall", Image: "tall.png"},
		{ID: "known", Image: "wide.png", Height: &known},
		{ID: "text"},
		{ID: "broken", Image: "broken.png"},
		{ID: "gone", Image: "gone.png"},
	}
	pathOf := func(it board.Item) string {
		if it.Image == "" {
			return ""
		}
		return filepath.Join(dir, it.Image)
	}

	r := NewResolver(WithConcurrency(2))
	got, stats, err := r.Resolve(context.Background(), items, 148, pathOf)
	require.NoError(t, err)

	want := map[string]float64{"wide": 74, "tall": 296, "known": 42}
	for _, it := range got {
		if w, ok := want[it.ID]; ok {
			if assert.NotNil(t, it.Height, "item %s", it.ID) {
				assert.Equal(t, w, *it.Height, "item %s", it.ID)
			}
		} else {
			assert.Nil(t, it.Height, "item %s should stay unknown", it.ID)
		}
	}
	assert.Equal(t, 2, stats.Resolved)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 2, stats.Skipped)
	assert.Nil(t, items[0].Height, "Resolve must not modify its input")
}

func TestResolveCanceled(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 10, 10)
	items := []board.Item{{ID: "a", Image: "a.png"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewResolver().Resolve(ctx, items, 100, func(it board.Item) string {
		return filepath.Join(dir, it.Image)
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveBoard(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "wide.png", 200, 100)

	cfg := board.DefaultConfig()
	cfg.Width = 320
	b, err := board.New([]board.Item{{ID: "p", Image: "wide.png"}, {ID: "q"}}, cfg)
	require.NoError(t, err)
	b.Layout()

	stats, err := NewResolver().ResolveBoard(context.Background(), b, func(it board.Item) string {
		if it.Image == "" {
			return ""
		}
		return filepath.Join(dir, it.Image)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Resolved)
	assert.False(t, b.Engine().Prepared(), "resolving a height should invalidate the layout")

	// inner width = 320/2 - 2*6 = 148, so the 2:1 image is 74 tall.
	a, err := b.Item(0)
	require.NoError(t, err)
	assert.Equal(t, 74.0, a.Frame.Height)
}
