package masonry

import (
	"errors"
	"math"
	"time"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/observability"
)

// Defaults used when the corresponding option is not given.
const (
	DefaultColumns        = 2
	DefaultPadding        = 6.0
	DefaultFallbackHeight = 180.0
)

// ErrIndexOutOfBounds is matched (via errors.Is) by the error [Engine.Item]
// returns for an index outside the cached layout. It signals a host bug: the
// host asked about an item count the engine was never prepared for.
var ErrIndexOutOfBounds = errors.New("index out of bounds")

// HeightProvider supplies the natural content height of an item.
//
// ok=false is the "unknown" sentinel; the engine substitutes its fallback
// height. Heights that are negative, NaN or infinite are treated the same way.
type HeightProvider interface {
	ItemHeight(index int) (height float64, ok bool)
}

// HeightFunc adapts a plain function to [HeightProvider].
type HeightFunc func(index int) (float64, bool)

// ItemHeight calls f(index).
func (f HeightFunc) ItemHeight(index int) (float64, bool) { return f(index) }

// Geometry describes the hosting container.
//
// ContentWidth is the visible width minus horizontal insets. It is read at
// the start of every pass and on every [Engine.ContentSize] call, never
// cached. ItemCount is read once per pass.
type Geometry interface {
	ContentWidth() float64
	ItemCount() int
}

// Attributes is the computed placement of one item.
//
// Frame is the inset rectangle a renderer draws into; Outer is the slot the
// item occupies in its column before padding is removed.
type Attributes struct {
	Index  int  `json:"index"`
	Column int  `json:"column"`
	Frame  Rect `json:"frame"`
	Outer  Rect `json:"outer"`
}

// Option configures an [Engine].
type Option func(*Engine)

// WithColumns sets the number of columns. Must be at least 1.
func WithColumns(n int) Option { return func(e *Engine) { e.columns = n } }

// WithPadding sets the inset applied to every side of each item.
func WithPadding(p float64) Option { return func(e *Engine) { e.padding = p } }

// WithFallbackHeight sets the content height used for items whose height is
// unknown.
func WithFallbackHeight(h float64) Option { return func(e *Engine) { e.fallback = h } }

// WithPolicy sets the column selection policy. The default is [RoundRobin].
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithLogger sets the logger used for debug output about layout passes.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine computes and caches masonry placements.
//
// The engine is not safe for concurrent use. Hosts drive it with a fixed
// call order: [Engine.Invalidate] on every structural change, then
// [Engine.Prepare], then any number of queries.
type Engine struct {
	columns  int
	padding  float64
	fallback float64
	policy   Policy
	logger   *log.Logger

	geometry Geometry
	heights  HeightProvider

	cache         []Attributes
	cursors       []float64
	columnWidth   float64
	contentHeight float64
}

// New returns an empty engine. Configuration is validated eagerly and an
// INVALID_CONFIG error is returned for a column count below 1, a negative
// or non-finite padding, or a non-positive fallback height.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		columns:  DefaultColumns,
		padding:  DefaultPadding,
		fallback: DefaultFallbackHeight,
		policy:   RoundRobin{},
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.columns < 1 {
		return nil, perrors.New(perrors.ErrCodeInvalidConfig, "columns must be >= 1, got %d", e.columns)
	}
	if err := perrors.ValidateNonNegative("padding", e.padding); err != nil {
		return nil, err
	}
	if math.IsNaN(e.fallback) || math.IsInf(e.fallback, 0) || e.fallback <= 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidConfig, "fallback height must be > 0, got %g", e.fallback)
	}

	e.cursors = make([]float64, e.columns)
	return e, nil
}

// Attach connects the engine to its collaborators. Neither is owned by the
// engine. A nil heights provider makes every item use the fallback height.
// Attaching does not invalidate; the host must call [Engine.Invalidate] if a
// layout is already cached.
func (e *Engine) Attach(g Geometry, h HeightProvider) {
	e.geometry = g
	e.heights = h
}

// Prepare computes the placement of every item and caches it.
//
// It is a no-op when the cache is already populated or no geometry is
// attached, so calling it before every query is cheap.
func (e *Engine) Prepare() {
	if len(e.cache) > 0 || e.geometry == nil {
		return
	}
	start := time.Now()

	count := e.geometry.ItemCount()
	if count < 0 {
		count = 0
	}
	e.columnWidth = e.geometry.ContentWidth() / float64(e.columns)
	for c := range e.cursors {
		e.cursors[c] = 0
	}
	e.contentHeight = 0
	e.cache = make([]Attributes, 0, count)

	for i := 0; i < count; i++ {
		h := e.itemHeight(i)
		outerHeight := h + 2*e.padding

		col := e.column(i)
		outer := Rect{
			X:      float64(col) * e.columnWidth,
			Y:      e.cursors[col],
			Width:  e.columnWidth,
			Height: outerHeight,
		}
		e.cache = append(e.cache, Attributes{
			Index:  i,
			Column: col,
			Frame:  outer.Inset(e.padding),
			Outer:  outer,
		})

		e.contentHeight = math.Max(e.contentHeight, outer.MaxY())
		e.cursors[col] += outerHeight
	}

	elapsed := time.Since(start)
	e.logger.Debug("layout prepared",
		"items", count,
		"columns", e.columns,
		"policy", e.policy,
		"column_width", e.columnWidth,
		"content_height", e.contentHeight,
		"duration", elapsed)
	observability.Layout().OnPrepare(e.columns, count, e.contentHeight, elapsed)
}

// column asks the policy for the column of item i. A column outside
// [0, columns) falls back to round robin so a pass always completes.
func (e *Engine) column(i int) int {
	col := e.policy.Column(i, e.cursors)
	if col < 0 || col >= e.columns {
		e.logger.Warn("policy returned invalid column", "policy", e.policy, "index", i, "column", col)
		return i % e.columns
	}
	return col
}

// itemHeight returns the provider's height for i or the fallback.
func (e *Engine) itemHeight(i int) float64 {
	if e.heights != nil {
		if h, ok := e.heights.ItemHeight(i); ok && h >= 0 && !math.IsNaN(h) && !math.IsInf(h, 0) {
			return h
		}
	}
	e.logger.Debug("using fallback height", "index", i, "height", e.fallback)
	observability.Layout().OnFallbackHeight(i, e.fallback)
	return e.fallback
}

// Visible returns the cached attributes whose frame overlaps viewport, in
// index order. An unprepared engine returns an empty slice.
func (e *Engine) Visible(viewport Rect) []Attributes {
	out := make([]Attributes, 0)
	for _, a := range e.cache {
		if a.Frame.Intersects(viewport) {
			out = append(out, a)
		}
	}
	return out
}

// Item returns the cached attributes of item index. An index outside
// [0, Len()) returns an INDEX_OUT_OF_BOUNDS error wrapping
// [ErrIndexOutOfBounds].
func (e *Engine) Item(index int) (Attributes, error) {
	if index < 0 || index >= len(e.cache) {
		return Attributes{}, perrors.Wrap(perrors.ErrCodeIndexOutOfBounds, ErrIndexOutOfBounds,
			"item %d not in layout of %d items", index, len(e.cache))
	}
	return e.cache[index], nil
}

// MustItem is like [Engine.Item] but panics on an out-of-range index.
func (e *Engine) MustItem(index int) Attributes {
	a, err := e.Item(index)
	if err != nil {
		panic(err)
	}
	return a
}

// Invalidate drops the cached layout and resets every column cursor and the
// content height to zero.
func (e *Engine) Invalidate() {
	n := len(e.cache)
	e.cache = nil
	for c := range e.cursors {
		e.cursors[c] = 0
	}
	e.contentHeight = 0
	e.columnWidth = 0
	observability.Layout().OnInvalidate(n)
}

// ContentSize returns the full scrollable extent. The width is read live
// from the attached geometry; the height is the tallest column bottom of the
// last pass.
func (e *Engine) ContentSize() Size {
	var w float64
	if e.geometry != nil {
		w = e.geometry.ContentWidth()
	}
	return Size{Width: w, Height: e.contentHeight}
}

// Len returns the number of cached items.
func (e *Engine) Len() int { return len(e.cache) }

// Prepared reports whether a layout is cached.
func (e *Engine) Prepared() bool { return len(e.cache) > 0 }

// All returns a copy of the cached attributes in index order.
func (e *Engine) All() []Attributes {
	out := make([]Attributes, len(e.cache))
	copy(out, e.cache)
	return out
}

// ColumnWidth returns the column width of the last pass.
func (e *Engine) ColumnWidth() float64 { return e.columnWidth }

// ColumnHeights returns a copy of the per-column height cursors.
func (e *Engine) ColumnHeights() []float64 {
	out := make([]float64, len(e.cursors))
	copy(out, e.cursors)
	return out
}

// Columns returns the configured column count.
func (e *Engine) Columns() int { return e.columns }

// Padding returns the configured cell padding.
func (e *Engine) Padding() float64 { return e.padding }

// FallbackHeight returns the configured fallback height.
func (e *Engine) FallbackHeight() float64 { return e.fallback }

// Policy returns the configured column policy.
func (e *Engine) Policy() Policy { return e.policy }
