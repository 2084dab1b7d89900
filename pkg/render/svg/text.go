package svg

import (
	"bytes"
	"encoding/xml"
)

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 16.0
)

// fontSize picks a label size that fits a w×h frame, or false if even the
// minimum size does not fit vertically.
func fontSize(w, h float64, textLen int) (float64, bool) {
	if h*fontHeightRatio < fontSizeMin {
		return 0, false
	}
	n := max(1, textLen)
	byHeight := h * fontHeightRatio
	byWidth := (w * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth))), true
}

// truncate shortens s to what fits in width w at the given font size.
func truncate(s string, w, size float64) string {
	runes := []rune(s)
	maxChars := max(3, int(w*fontWidthRatio/(size*fontCharWidth)))
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars-2]) + ".."
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
