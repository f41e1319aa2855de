// Package render draws engine views as text frames.
package render

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/roach88/sortviz/internal/ir"
)

// Bar glyphs.
const (
	glyphBar       = '█'
	glyphHighlight = '▓'
)

// Frame renders a view as one horizontal bar per element, scaled so the
// largest value spans width cells. Highlighted bars are drawn with a
// different glyph and marked with '<'.
func Frame(v ir.View, width int) string {
	width = max(width, 1)
	peak := 1
	if len(v.Values) > 0 {
		peak = max(peak, slices.Max(v.Values))
	}
	digits := len(fmt.Sprint(peak))

	var b strings.Builder
	fmt.Fprintf(&b, "%s  comparisons=%d swaps=%d\n", v.State, v.Comparisons, v.Swaps)
	for i, value := range v.Values {
		cells := max(1, value*width/peak)
		glyph := glyphBar
		if v.Highlighted(i) {
			glyph = glyphHighlight
		}
		if v.ShowNumbers {
			fmt.Fprintf(&b, "%*d ", digits, value)
		}
		b.WriteString(strings.Repeat(string(glyph), cells))
		if v.Highlighted(i) {
			b.WriteString(" <")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ViewSource supplies the view to draw.
type ViewSource func() ir.View

// Live is a run observer that redraws the current view at most once per
// interval. Frames are coalesced: step events between redraws only mark the
// view dirty. The final frame is always drawn on finish.
type Live struct {
	w        io.Writer
	source   ViewSource
	width    int
	interval time.Duration

	mu     sync.Mutex
	last   time.Time
	frames int
}

// NewLive creates a live renderer writing to w.
func NewLive(w io.Writer, source ViewSource, width int, interval time.Duration) *Live {
	return &Live{w: w, source: source, width: width, interval: interval}
}

// OnStart draws the initial frame.
func (l *Live) OnStart(info ir.RunInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "== %s on %d elements (run %s)\n", info.Algorithm.Title(), info.Size, info.ID)
	l.draw()
}

// OnStep redraws when the interval has elapsed.
func (l *Live) OnStep(ir.StepEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.last) < l.interval {
		return
	}
	l.draw()
}

// OnFinish draws the final frame.
func (l *Live) OnFinish(res ir.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.draw()
	fmt.Fprintf(l.w, "== %s in %.3fs\n", res.Outcome, res.Stats.ElapsedSeconds())
}

// Frames returns the number of frames drawn.
func (l *Live) Frames() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// draw must be called with l.mu held.
func (l *Live) draw() {
	io.WriteString(l.w, Frame(l.source(), l.width))
	l.last = time.Now()
	l.frames++
}
