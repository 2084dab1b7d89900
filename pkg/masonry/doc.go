// Package masonry computes placement geometry for a multi-column,
// variable-height item grid (a "pinboard" or masonry layout).
//
// # Overview
//
// Given an item count, a content width and a height for every item, an
// [Engine] assigns each item an (x, y, width, height) rectangle, tracks the
// total content extent and answers viewport visibility queries:
//
//	e, err := masonry.New(masonry.WithColumns(2), masonry.WithPadding(6))
//	if err != nil {
//	    return err
//	}
//	e.Attach(host, host) // host implements Geometry and HeightProvider
//	e.Prepare()
//	for _, a := range e.Visible(viewport) {
//	    draw(a.Index, a.Frame)
//	}
//
// # Column Geometry
//
// The content width is split into N equal columns. Each column keeps a
// height cursor: the y offset where its next item starts. An item occupies
// an outer slot of height h+2p (h the content height, p the padding) at its
// column's cursor; the rectangle exposed to renderers is that slot shrunk by
// p on every side.
//
// # Column Policy
//
// By default items are dealt to columns in strict cyclic order ([RoundRobin])
// so item i always lands in column i mod N, independent of how tall columns
// have grown. [ShortestColumn] places each item in the currently shortest
// column instead; it must be requested explicitly with [WithPolicy].
//
// # Call Order
//
// The engine cannot observe its collaborators. Hosts must call
// [Engine.Invalidate] whenever the item count, any item height, the content
// width or the column count changes, and [Engine.Prepare] before querying.
// Prepare is a no-op while a layout is cached.
//
// # Missing Heights
//
// An item whose height is unknown (or negative, NaN or infinite) gets the
// fallback height ([DefaultFallbackHeight] unless overridden). This is
// reported to [observability.LayoutHooks] and never surfaces as an error.
package masonry
