package overlay

import (
	"context"

	"imgpaste/src/geom"
)

// Selector defines a synchronous region-selection API owned by the event loop.
// The call blocks until the user finishes or dismisses the overlay.
// Returns (region, cancelled, error). If cancelled is true, region is undefined and err is nil.
type Selector interface {
	Select(ctx context.Context) (geom.Rect, bool, error)
}

// Renderer receives redraw requests while a selection is in progress.
// Implementations must not call back into the Selection.
type Renderer interface {
	Redraw(Frame)
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(Frame)

func (f RendererFunc) Redraw(fr Frame) { f(fr) }

// Frame describes what the overlay should show right now.
type Frame struct {
	// Screen is the area covered by the dim layer.
	Screen geom.Rect
	// Selection is the normalized drag rectangle; only meaningful when Selecting is set.
	Selection geom.Rect
	Selecting bool
	// Label is the "W x H" size caption. LabelAt places it in screen
	// pixels for renderers drawing at native scale.
	Label   string
	LabelAt geom.Point
}

// Dim layer and outline styling shared by renderers.
const (
	DimAlpha     = 100
	OutlineWidth = 2
)

// LabelOffset places the size label relative to the selection's top-left
// corner. It is in the renderer's own units: scaled renderers add it after
// converting the corner from screen pixels.
var LabelOffset = geom.Point{X: 10, Y: 20}
