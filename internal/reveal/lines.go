package reveal

// Span is an element's vertical extent in content lines.
type Span struct {
	Top    int
	Height int
}

// LineIntersector measures spans against a scroll window of Height lines
// starting at Offset.
type LineIntersector struct {
	Offset int
	Height int
	Spans  map[string]Span
}

func (l LineIntersector) Ratio(id string) (float64, bool) {
	sp, ok := l.Spans[id]
	if !ok {
		return 0, false
	}
	top, bottom := l.Offset, l.Offset+l.Height
	if sp.Height <= 0 {
		if sp.Top >= top && sp.Top < bottom {
			return 1, true
		}
		return 0, true
	}
	lo := max(sp.Top, top)
	hi := min(sp.Top+sp.Height, bottom)
	if hi <= lo {
		return 0, true
	}
	return float64(hi-lo) / float64(sp.Height), true
}
