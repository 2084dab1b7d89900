// Package io reads board files and writes computed layouts.
//
// # Board Files
//
// A board file lists the items to place and, optionally, the layout
// configuration. JSON and TOML are accepted; the format is chosen from the
// file extension by [ImportBoard]:
//
//	{
//	  "config": {"columns": 3, "padding": 8, "width": 960},
//	  "items": [
//	    {"id": "p1", "title": "Sunrise", "height": 240},
//	    {"id": "p2", "image": "photos/lake.jpg"},
//	    {"id": "p3", "color": "#e0a458"}
//	  ]
//	}
//
// The same board in TOML:
//
//	[config]
//	columns = 3
//	padding = 8
//	width = 960
//
//	[[items]]
//	id = "p1"
//	title = "Sunrise"
//	height = 240
//
// # Item Fields
//
// Each item must have an "id". Optional fields:
//   - title: label drawn by renderers
//   - height: natural content height; omitted means unknown
//   - image: path, relative to the board file, used to resolve height
//   - color: #rgb or #rrggbb fill color
//
// Config fields left out of the file keep the values of the defaults passed
// to the reader, so command-line configuration fills the gaps.
//
// # Layout Output
//
// [WriteLayout] and [ExportLayout] encode a [board.Layout] as indented JSON.
// Layouts are outputs only; they are never read back, since a layout is
// cheap to recompute and depends on the current container geometry.
package io
