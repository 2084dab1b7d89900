// Package svg renders a placed board layout as a static SVG document.
//
// Each item becomes one rect at its inset frame, filled with the item's
// color or the default fill, and labelled with its title (or ID) when the
// frame is tall enough to hold text. Layouts produced for a viewport are
// cropped to that viewport through the SVG viewBox.
package svg

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/masonry"
)

const (
	defaultFill       = "#d8dee9"
	defaultStroke     = "#4c566a"
	defaultBackground = "#ffffff"
	cornerRadius      = 4.0
)

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	fill       string
	stroke     string
	background string
	labels     bool
	viewport   *masonry.Rect
}

// WithFill sets the fill for items without a color.
func WithFill(c string) Option { return func(r *renderer) { r.fill = c } }

// WithStroke sets the outline color of every item. An empty color draws no
// outline.
func WithStroke(c string) Option { return func(r *renderer) { r.stroke = c } }

// WithBackground sets the page background. An empty color draws none.
func WithBackground(c string) Option { return func(r *renderer) { r.background = c } }

// WithoutLabels omits item text.
func WithoutLabels() Option { return func(r *renderer) { r.labels = false } }

// WithViewport crops the output to vp, overriding the layout's viewport.
func WithViewport(vp masonry.Rect) Option { return func(r *renderer) { r.viewport = &vp } }

// Render writes l as an SVG document.
func Render(l board.Layout, opts ...Option) []byte {
	r := renderer{
		fill:       defaultFill,
		stroke:     defaultStroke,
		background: defaultBackground,
		labels:     true,
		viewport:   l.Viewport,
	}
	for _, opt := range opts {
		opt(&r)
	}

	view := masonry.NewRect(0, 0, l.Width, l.Height)
	if r.viewport != nil {
		view = *r.viewport
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		view.X, view.Y, view.Width, view.Height, view.Width, view.Height)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			view.X, view.Y, view.Width, view.Height, escapeXML(r.background))
	}

	for _, p := range l.Items {
		if r.viewport != nil && !p.Frame.Intersects(*r.viewport) {
			continue
		}
		r.renderItem(&buf, p)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) renderItem(buf *bytes.Buffer, p board.Placed) {
	f := p.Frame
	fill := p.Color
	if fill == "" {
		fill = r.fill
	}
	stroke := r.stroke
	if stroke == "" {
		stroke = "none"
	}
	fmt.Fprintf(buf, `  <rect id="item-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
		escapeXML(p.ID), f.X, f.Y, f.Width, f.Height, cornerRadius, escapeXML(fill), escapeXML(stroke))

	if !r.labels {
		return
	}
	text := p.Title
	if text == "" {
		text = p.ID
	}
	size, ok := fontSize(f.Width, f.Height, len(text))
	if !ok {
		return
	}
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		f.X+f.Width/2, f.Y+f.Height/2, size, escapeXML(truncate(text, f.Width, size)))
}
