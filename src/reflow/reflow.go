// Package reflow rebuilds reading order from unordered OCR fragments.
//
// Fragments are grouped into rows by the vertical centre of their polygons
// and each row is ordered left to right. Row membership chains: a fragment
// joins the current row when its centre is within LineThreshold of the
// previous fragment's centre, not of the row's first fragment, so a row can
// drift across several fragments.
package reflow

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"imgpaste/src/geom"
)

// DefaultLineThreshold is the vertical distance, in image pixels, under
// which two consecutive fragments are treated as the same row.
const DefaultLineThreshold = 10.0

// Options tunes the reflow. The zero value uses DefaultLineThreshold.
type Options struct {
	LineThreshold float64
}

func (o Options) threshold() float64 {
	if o.LineThreshold <= 0 || math.IsNaN(o.LineThreshold) {
		return DefaultLineThreshold
	}
	return o.LineThreshold
}

// Fragment is a single OCR detection.
type Fragment struct {
	Text    string
	Polygon geom.Polygon
}

// Row is one reconstructed visual line.
type Row struct {
	Texts   []string
	CenterY float64 // centre of the first fragment of the row
}

// Text joins the row's fragments without a separator.
func (r Row) Text() string { return strings.Join(r.Texts, "") }

type positioned struct {
	text    string
	polygon geom.Polygon
	centerY float64
	minX    float64
	index   int
}

// Format reorders texts by the geometry of the parallel polys slice and
// returns them as newline separated rows. When the slices are empty,
// differ in length or contain an empty polygon, the texts are returned in
// their given order joined by newlines. An empty input yields "".
func Format(texts []string, polys []geom.Polygon, opts Options) string {
	rows, ok := Rows(texts, polys, opts)
	if !ok {
		return strings.Join(texts, "\n")
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = r.Text()
	}
	return strings.Join(lines, "\n")
}

// FormatFragments is Format for already paired fragments.
func FormatFragments(frags []Fragment, opts Options) string {
	texts := make([]string, len(frags))
	polys := make([]geom.Polygon, len(frags))
	for i, f := range frags {
		texts[i] = f.Text
		polys[i] = f.Polygon
	}
	return Format(texts, polys, opts)
}

// Rows performs the grouping and returns the ordered rows. The boolean is
// false when the input is degenerate and no reordering was attempted.
func Rows(texts []string, polys []geom.Polygon, opts Options) ([]Row, bool) {
	if len(texts) == 0 || len(polys) == 0 || len(texts) != len(polys) {
		return nil, false
	}
	for _, p := range polys {
		if len(p) == 0 {
			return nil, false
		}
	}

	items := make([]positioned, len(texts))
	for i := range texts {
		items[i] = positioned{
			text:    texts[i],
			polygon: polys[i],
			centerY: polys[i].CenterY(),
			minX:    polys[i].MinX(),
			index:   i,
		}
	}

	slices.SortStableFunc(items, func(a, b positioned) int {
		if c := cmp.Compare(a.centerY, b.centerY); c != 0 {
			return c
		}
		return compareContent(a, b)
	})

	threshold := opts.threshold()
	var (
		rows    []Row
		current []positioned
		lastY   float64
	)
	for i, item := range items {
		if i == 0 || math.Abs(item.centerY-lastY) <= threshold {
			current = append(current, item)
		} else {
			rows = append(rows, closeRow(current))
			current = []positioned{item}
		}
		lastY = item.centerY
	}
	if len(current) > 0 {
		rows = append(rows, closeRow(current))
	}
	return rows, true
}

func closeRow(items []positioned) Row {
	centerY := items[0].centerY
	slices.SortStableFunc(items, func(a, b positioned) int {
		if c := cmp.Compare(a.minX, b.minX); c != 0 {
			return c
		}
		if c := cmp.Compare(a.centerY, b.centerY); c != 0 {
			return c
		}
		return compareContent(a, b)
	})
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.text
	}
	return Row{Texts: texts, CenterY: centerY}
}

// compareContent orders fragments that tie on geometry by their content so
// the result never depends on the enumeration order of the input. The
// original index is the last resort and only separates identical fragments,
// which are interchangeable in the output.
func compareContent(a, b positioned) int {
	if c := cmp.Compare(a.minX, b.minX); c != 0 {
		return c
	}
	if c := strings.Compare(a.text, b.text); c != 0 {
		return c
	}
	if c := comparePolygons(a.polygon, b.polygon); c != 0 {
		return c
	}
	return cmp.Compare(a.index, b.index)
}

func comparePolygons(a, b geom.Polygon) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := cmp.Compare(a[i].X, b[i].X); c != 0 {
			return c
		}
		if c := cmp.Compare(a[i].Y, b[i].Y); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}
