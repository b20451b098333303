package grid

import (
	"math"
	"time"
)

// DragState is the phase of a pointer-drag session
type DragState int

const (
	DragIdle DragState = iota
	DragPressed
	DragDragging
	DragHovering
	DragCommitted
	DragCancelled
)

func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case DragPressed:
		return "pressed"
	case DragDragging:
		return "dragging"
	case DragHovering:
		return "hovering"
	case DragCommitted:
		return "committed"
	case DragCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Point is a pointer position in whatever units the input source uses
type Point struct {
	X, Y float64
}

func (p Point) distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// DragThresholds decide when a press becomes a drag. Both must be exceeded.
type DragThresholds struct {
	MinDistance float64
	MinDuration time.Duration
}

var (
	// TouchThresholds ignore taps and short wobbles on touch screens
	TouchThresholds = DragThresholds{MinDistance: 10, MinDuration: 100 * time.Millisecond}

	// MouseThresholds ignore accidental clicks
	MouseThresholds = DragThresholds{MinDistance: 0, MinDuration: 50 * time.Millisecond}

	// KeyboardThresholds start dragging on the first move
	KeyboardThresholds = DragThresholds{}
)

// DragSession tracks one press-move-release gesture over grid cells,
// independent of the input device. The only action it can commit is a swap
// of the source and target cells.
type DragSession struct {
	thresholds DragThresholds

	state   DragState
	source  CellID
	target  CellID
	origin  Point
	started time.Time
}

// NewDragSession creates an idle session
func NewDragSession(t DragThresholds) *DragSession {
	return &DragSession{thresholds: t}
}

// State returns the current phase
func (d *DragSession) State() DragState {
	return d.state
}

// Source returns the cell being dragged, if any
func (d *DragSession) Source() CellID {
	return d.source
}

// Target returns the hovered cell, if any
func (d *DragSession) Target() CellID {
	return d.target
}

// Active reports whether a gesture is in progress
func (d *DragSession) Active() bool {
	switch d.state {
	case DragPressed, DragDragging, DragHovering:
		return true
	}
	return false
}

// Begin presses on source. Any unfinished gesture is discarded.
func (d *DragSession) Begin(source CellID, at Point, now time.Time) {
	d.state = DragPressed
	d.source = source
	d.target = ""
	d.origin = at
	d.started = now
}

// Move reports the pointer at a new position, over cell (empty when not
// over any cell)
func (d *DragSession) Move(at Point, over CellID, now time.Time) DragState {
	if !d.Active() {
		return d.state
	}
	if d.state == DragPressed {
		if at.distance(d.origin) < d.thresholds.MinDistance || now.Sub(d.started) < d.thresholds.MinDuration {
			return d.state
		}
		d.state = DragDragging
	}
	d.hover(over)
	return d.state
}

func (d *DragSession) hover(over CellID) {
	if over != "" && over != d.source {
		d.state = DragHovering
		d.target = over
		return
	}
	d.state = DragDragging
	d.target = ""
}

// Release ends the gesture over cell. It returns the pair to swap when the
// gesture was a real drag that ended on a different cell.
func (d *DragSession) Release(at Point, over CellID, now time.Time) (CellID, CellID, bool) {
	if !d.Active() {
		return "", "", false
	}
	d.Move(at, over, now)
	if d.state != DragHovering {
		d.state = DragCancelled
		return "", "", false
	}
	d.state = DragCommitted
	return d.source, d.target, true
}

// Cancel abandons the gesture
func (d *DragSession) Cancel() {
	if d.Active() {
		d.state = DragCancelled
	}
	d.target = ""
}

// Reset returns the session to idle
func (d *DragSession) Reset() {
	*d = DragSession{thresholds: d.thresholds}
}
