// Package board is the reference host for the masonry engine.
//
// A [Board] holds an ordered list of items plus the container geometry
// (bounds width and horizontal insets) and implements both collaborator
// contracts the engine consumes. Every mutation that changes structure
// invalidates the engine, so callers never see a stale layout:
//
//	b, err := board.New(items, board.Config{Columns: 2, Padding: 6, Width: 320})
//	if err != nil {
//	    return err
//	}
//	visible := b.Visible(masonry.NewRect(0, scrollY, 320, 640))
//
// A Board is not safe for concurrent use; hosts that share one across
// goroutines must serialize access.
package board

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	perrors "github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/masonry"
)

// Item is one pin on the board.
//
// Height is the natural content height in layout units; nil means it is not
// known yet and the engine falls back to its default. Image is a path
// (relative to the board file) that height resolution may use to fill in
// Height.
type Item struct {
	ID     string   `json:"id" toml:"id"`
	Title  string   `json:"title,omitempty" toml:"title"`
	Image  string   `json:"image,omitempty" toml:"image"`
	Color  string   `json:"color,omitempty" toml:"color"`
	Height *float64 `json:"height,omitempty" toml:"height"`
}

// Validate checks the item's fields.
func (it Item) Validate() error {
	if err := perrors.ValidateItemID(it.ID); err != nil {
		return err
	}
	if err := perrors.ValidateColor(it.Color); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "item %s", it.ID)
	}
	if it.Image != "" {
		if err := perrors.ValidateImagePath(it.Image); err != nil {
			return perrors.Wrap(perrors.ErrCodeInvalidPath, err, "item %s", it.ID)
		}
	}
	if it.Height != nil {
		if err := perrors.ValidateNonNegative("height", *it.Height); err != nil {
			return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "item %s", it.ID)
		}
	}
	return nil
}

// Insets are the container's content insets. Only the horizontal insets
// affect the layout; Top and Bottom shift the viewport origin.
type Insets struct {
	Top    float64 `json:"top,omitempty" toml:"top"`
	Left   float64 `json:"left,omitempty" toml:"left"`
	Bottom float64 `json:"bottom,omitempty" toml:"bottom"`
	Right  float64 `json:"right,omitempty" toml:"right"`
}

// Validate rejects negative or non-finite insets.
func (in Insets) Validate() error {
	for _, side := range []struct {
		name string
		v    float64
	}{{"top", in.Top}, {"left", in.Left}, {"bottom", in.Bottom}, {"right", in.Right}} {
		if err := perrors.ValidateNonNegative("inset "+side.name, side.v); err != nil {
			return err
		}
	}
	return nil
}

// Config fixes the engine parameters and the initial container geometry.
type Config struct {
	Columns        int         `json:"columns" toml:"columns"`
	Padding        float64     `json:"padding" toml:"padding"`
	FallbackHeight float64     `json:"fallback_height,omitempty" toml:"fallback_height"`
	Policy         string      `json:"policy,omitempty" toml:"policy"`
	Width          float64     `json:"width" toml:"width"`
	Insets         Insets      `json:"insets" toml:"insets"`
	Logger         *log.Logger `json:"-" toml:"-"`
}

// DefaultConfig returns the configuration used when a board file leaves
// fields unset.
func DefaultConfig() Config {
	return Config{
		Columns:        masonry.DefaultColumns,
		Padding:        masonry.DefaultPadding,
		FallbackHeight: masonry.DefaultFallbackHeight,
		Policy:         masonry.RoundRobin{}.String(),
		Width:          320,
	}
}

// Board hosts a masonry engine over an ordered item list.
type Board struct {
	id     uuid.UUID
	items  []Item
	width  float64
	insets Insets
	engine *masonry.Engine
	logger *log.Logger
}

// New builds a board over items. The items and their heights are copied.
func New(items []Item, cfg Config) (*Board, error) {
	if err := perrors.ValidateNonNegative("width", cfg.Width); err != nil {
		return nil, err
	}
	if err := cfg.Insets.Validate(); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return nil, err
		}
	}

	policy, ok := masonry.PolicyByName(cfg.Policy)
	if !ok {
		return nil, perrors.New(perrors.ErrCodeInvalidConfig, "unknown column policy %q", cfg.Policy)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	opts := []masonry.Option{
		masonry.WithColumns(cfg.Columns),
		masonry.WithPadding(cfg.Padding),
		masonry.WithPolicy(policy),
		masonry.WithLogger(logger),
	}
	if cfg.FallbackHeight != 0 {
		opts = append(opts, masonry.WithFallbackHeight(cfg.FallbackHeight))
	}
	engine, err := masonry.New(opts...)
	if err != nil {
		return nil, err
	}

	b := &Board{
		id:     uuid.New(),
		items:  cloneItems(items),
		width:  cfg.Width,
		insets: cfg.Insets,
		engine: engine,
		logger: logger,
	}
	engine.Attach(b, b)
	return b, nil
}

// ID returns the board's identifier. It is unique per process and is not
// derived from the items.
func (b *Board) ID() uuid.UUID { return b.id }

// ContentWidth implements [masonry.Geometry]: bounds width minus horizontal
// insets, clamped at zero.
func (b *Board) ContentWidth() float64 {
	return math.Max(0, b.width-(b.insets.Left+b.insets.Right))
}

// ItemCount implements [masonry.Geometry].
func (b *Board) ItemCount() int { return len(b.items) }

// ItemHeight implements [masonry.HeightProvider].
func (b *Board) ItemHeight(i int) (float64, bool) {
	if i < 0 || i >= len(b.items) || b.items[i].Height == nil {
		return 0, false
	}
	return *b.items[i].Height, true
}

// Items returns a copy of the board's items.
func (b *Board) Items() []Item { return cloneItems(b.items) }

// Width returns the container bounds width.
func (b *Board) Width() float64 { return b.width }

// Insets returns the container insets.
func (b *Board) Insets() Insets { return b.insets }

// Engine exposes the underlying engine for read-only inspection.
func (b *Board) Engine() *masonry.Engine { return b.engine }

// SetItems replaces every item.
func (b *Board) SetItems(items []Item) error {
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	b.items = cloneItems(items)
	b.invalidate("items replaced")
	return nil
}

// Append adds items at the end of the board.
func (b *Board) Append(items ...Item) error {
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	b.items = append(b.items, cloneItems(items)...)
	b.invalidate("items appended")
	return nil
}

// SetHeight records the content height of item i, typically once an
// asynchronously loaded image has been measured.
func (b *Board) SetHeight(i int, h float64) error {
	if i < 0 || i >= len(b.items) {
		return perrors.Wrap(perrors.ErrCodeIndexOutOfBounds, masonry.ErrIndexOutOfBounds,
			"item %d not on board of %d items", i, len(b.items))
	}
	if err := perrors.ValidateNonNegative("height", h); err != nil {
		return err
	}
	b.items[i].Height = &h
	b.invalidate("height changed")
	return nil
}

// SetBounds changes the container width.
func (b *Board) SetBounds(width float64) error {
	if err := perrors.ValidateNonNegative("width", width); err != nil {
		return err
	}
	if width == b.width {
		return nil
	}
	b.width = width
	b.invalidate("bounds changed")
	return nil
}

// SetInsets changes the container insets.
func (b *Board) SetInsets(in Insets) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if in == b.insets {
		return nil
	}
	b.insets = in
	b.invalidate("insets changed")
	return nil
}

// Invalidate discards the cached layout. Mutators call it already; hosts
// only need it when item data changes behind the board's back.
func (b *Board) Invalidate() { b.invalidate("explicit") }

// clone returns a copy of it that shares no memory with it.
func (it Item) clone() Item {
	if it.Height != nil {
		h := *it.Height
		it.Height = &h
	}
	return it
}

// cloneItems copies items and their heights, so a caller holding the
// original slice cannot change a height without going through SetHeight.
func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.clone()
	}
	return out
}

func (b *Board) invalidate(reason string) {
	if b.engine.Prepared() {
		b.logger.Debug("layout invalidated", "board", b.id, "reason", reason)
	}
	b.engine.Invalidate()
}

// Layout prepares the engine if needed and returns every placed item.
func (b *Board) Layout() []masonry.Attributes {
	b.engine.Prepare()
	return b.engine.All()
}

// Visible returns the items whose frame overlaps viewport, in index order.
func (b *Board) Visible(viewport masonry.Rect) []masonry.Attributes {
	b.engine.Prepare()
	return b.engine.Visible(viewport)
}

// Item returns the placement of item i.
func (b *Board) Item(i int) (masonry.Attributes, error) {
	b.engine.Prepare()
	return b.engine.Item(i)
}

// ContentSize returns the full scrollable size.
func (b *Board) ContentSize() masonry.Size {
	b.engine.Prepare()
	return b.engine.ContentSize()
}
