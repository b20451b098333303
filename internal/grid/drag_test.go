package grid

import (
	"testing"
	"time"
)

func TestDragSession(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	later := func(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

	tests := []struct {
		name       string
		thresholds DragThresholds
		run        func(d *DragSession) (CellID, CellID, bool)
		wantState  DragState
		wantOK     bool
		wantSource CellID
		wantTarget CellID
	}{
		{
			name:       "touch drag onto another cell commits",
			thresholds: TouchThresholds,
			run: func(d *DragSession) (CellID, CellID, bool) {
				d.Begin("c1", Point{0, 0}, t0)
				d.Move(Point{30, 0}, "c2", later(150))
				return d.Release(Point{60, 0}, "c3", later(300))
			},
			wantState:  DragCommitted,
			wantOK:     true,
			wantSource: "c1",
			wantTarget: "c3",
		},
		{
			name:       "touch tap below distance threshold cancels",
			thresholds: TouchThresholds,
			run: func(d *DragSession) (CellID, CellID, bool) {
				d.Begin("c1", Point{0, 0}, t0)
				return d.Release(Point{3, 3}, "c1", later(400))
			},
			wantState: DragCancelled,
		},
		{
			name:       "touch flick below duration threshold cancels",
			thresholds: TouchThresholds,
			run: func(d *DragSession) (CellID, CellID, bool) {
				d.Begin("c1", Point{0, 0}, t0)
				return d.Release(Point{80, 0}, "c2", later(40))
			},
			wantState: DragCancelled,
		},
		{
			name:       "drop on the source cell cancels",
			thresholds: MouseThresholds,
			run: func(d *DragSession) (CellID, CellID, bool) {
				d.Begin("c5", Point{0, 0}, t0)
				d.Move(Point{10, 0}, "c6", later(100))
				return d.Release(Point{0, 0}, "c5", later(200))
			},
			wantState: DragCancelled,
		},
		{
			name:       "drop outside the grid cancels",
			thresholds: MouseThresholds,
			run: func(d *DragSession) (CellID, CellID, bool) {
				d.Begin("c5", Point{0, 0}, t0)
				d.Move(Point{10, 0}, "c6", later(100))
				return d.Release(Point{500, 0}, "", later(200))
			},
			wantState: DragCancelled,
		},
		{
			name:       "keyboard moves commit immediately",
			thresholds: KeyboardThresholds,
			run: func(d *DragSession) (CellID, CellID, bool) {
				d.Begin("c1", Point{0, 0}, t0)
				d.Move(Point{1, 0}, "c2", t0)
				return d.Release(Point{1, 0}, "c2", t0)
			},
			wantState:  DragCommitted,
			wantOK:     true,
			wantSource: "c1",
			wantTarget: "c2",
		},
		{
			name:       "explicit cancel",
			thresholds: KeyboardThresholds,
			run: func(d *DragSession) (CellID, CellID, bool) {
				d.Begin("c1", Point{0, 0}, t0)
				d.Move(Point{1, 0}, "c2", t0)
				d.Cancel()
				return d.Release(Point{1, 0}, "c2", t0)
			},
			wantState: DragCancelled,
		},
		{
			name:       "release without begin",
			thresholds: MouseThresholds,
			run: func(d *DragSession) (CellID, CellID, bool) {
				return d.Release(Point{1, 0}, "c2", t0)
			},
			wantState: DragIdle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDragSession(tt.thresholds)
			src, dst, ok := tt.run(d)

			if ok != tt.wantOK {
				t.Errorf("Release ok = %v, want %v", ok, tt.wantOK)
			}
			if src != tt.wantSource || dst != tt.wantTarget {
				t.Errorf("Release = (%s, %s), want (%s, %s)", src, dst, tt.wantSource, tt.wantTarget)
			}
			if d.State() != tt.wantState {
				t.Errorf("State() = %v, want %v", d.State(), tt.wantState)
			}
		})
	}
}

func TestDragSessionHoverTracking(t *testing.T) {
	t0 := time.Now()
	d := NewDragSession(KeyboardThresholds)
	d.Begin("c1", Point{}, t0)

	if got := d.Move(Point{1, 0}, "c2", t0); got != DragHovering {
		t.Errorf("Move over other cell = %v, want hovering", got)
	}
	if d.Target() != "c2" {
		t.Errorf("Target() = %s, want c2", d.Target())
	}
	if got := d.Move(Point{0, 0}, "c1", t0); got != DragDragging {
		t.Errorf("Move back over source = %v, want dragging", got)
	}
	if d.Target() != "" {
		t.Errorf("Target() = %s, want empty", d.Target())
	}

	d.Reset()
	if d.State() != DragIdle || d.Source() != "" {
		t.Errorf("Reset() left state %v source %q", d.State(), d.Source())
	}
}
