package board

import "github.com/matzehuels/pinboard/pkg/masonry"

// Placed is an item together with its computed placement.
type Placed struct {
	Item
	Index  int          `json:"index"`
	Column int          `json:"column"`
	Frame  masonry.Rect `json:"frame"`
}

// Layout is the serializable result of a layout pass.
//
// Items holds either every item or, for viewport snapshots, only the
// visible ones; Viewport is set in the latter case.
type Layout struct {
	Board       string        `json:"board"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	Columns     int           `json:"columns"`
	ColumnWidth float64       `json:"column_width"`
	Padding     float64       `json:"padding"`
	Policy      string        `json:"policy"`
	ItemCount   int           `json:"item_count"`
	Viewport    *masonry.Rect `json:"viewport,omitempty"`
	Items       []Placed      `json:"items"`
}

// Snapshot returns the full layout of the board.
func (b *Board) Snapshot() Layout {
	return b.snapshot(b.Layout(), nil)
}

// SnapshotVisible returns a layout containing only the items visible in
// viewport.
func (b *Board) SnapshotVisible(viewport masonry.Rect) Layout {
	return b.snapshot(b.Visible(viewport), &viewport)
}

func (b *Board) snapshot(attrs []masonry.Attributes, viewport *masonry.Rect) Layout {
	size := b.ContentSize()
	e := b.engine
	l := Layout{
		Board:       b.id.String(),
		Width:       size.Width,
		Height:      size.Height,
		Columns:     e.Columns(),
		ColumnWidth: e.ColumnWidth(),
		Padding:     e.Padding(),
		Policy:      e.Policy().String(),
		ItemCount:   len(b.items),
		Viewport:    viewport,
		Items:       make([]Placed, 0, len(attrs)),
	}
	for _, a := range attrs {
		l.Items = append(l.Items, Placed{
			Item:   b.items[a.Index].clone(),
			Index:  a.Index,
			Column: a.Column,
			Frame:  a.Frame,
		})
	}
	return l
}
