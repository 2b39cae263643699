// Package canvas implements the append-only paint log.
//
// The log is the single source of truth for the visual state of the wall.
// It is never compacted or reordered: replaying it in order onto a blank
// surface reconstructs the exact current picture, with later operations on
// a cell superseding earlier ones. State lives only in process memory and
// is discarded on exit.
package canvas

import "sync"

// Op is one pixel-color assignment, the atomic unit of the shared surface.
type Op struct {
	X     int
	Y     int
	Color string
}

// Point addresses a single cell on the wall.
type Point struct {
	X int
	Y int
}

// Log is an ordered, append-only sequence of paint operations.
type Log struct {
	ops []Op
	mu  sync.RWMutex
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Append records the given operations at the end of the log, in order.
func (l *Log) Append(ops ...Op) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, ops...)
}

// Replay returns a copy of the full history in recorded order, for a newly
// joined connection to reconstruct the visual state locally.
func (l *Log) Replay() []Op {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Op, len(l.ops))
	copy(out, l.ops)
	return out
}

// Len returns the number of recorded operations.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ops)
}

// Grid materializes the last-write-wins state of every touched cell.
// Coordinates are kept as recorded; callers that need a bounded surface
// clip to their own dimensions.
func (l *Log) Grid() map[Point]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	grid := make(map[Point]string, len(l.ops))
	for _, op := range l.ops {
		grid[Point{X: op.X, Y: op.Y}] = op.Color
	}
	return grid
}
