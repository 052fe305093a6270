package recording

import (
	"fmt"
	"math"

	"github.com/gogpu/paper"
)

// Recorder captures painting operations as commands.
// It implements paper.Painter, so any page can paint into it.
//
// Recorder is not safe for concurrent use; use one Recorder per page.
type Recorder struct {
	width, height int
	commands      []Command
	depth         int
}

var _ paper.Painter = (*Recorder)(nil)

// NewRecorder creates a new Recorder for the given device dimensions.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{
		width:    width,
		height:   height,
		commands: make([]Command, 0, 64),
	}
}

// Width returns the width of the recording canvas.
func (r *Recorder) Width() int { return r.width }

// Height returns the height of the recording canvas.
func (r *Recorder) Height() int { return r.height }

// Save records a state push.
func (r *Recorder) Save() {
	r.depth++
	r.commands = append(r.commands, SaveCommand{})
}

// Restore records a state pop. A Restore without a matching Save is dropped.
func (r *Recorder) Restore() {
	if r.depth == 0 {
		return
	}
	r.depth--
	r.commands = append(r.commands, RestoreCommand{})
}

// SetTransform records a transform change.
func (r *Recorder) SetTransform(m paper.Matrix) {
	r.commands = append(r.commands, SetTransformCommand{Matrix: m})
}

// SetAntialias records an antialiasing toggle.
func (r *Recorder) SetAntialias(enabled bool) {
	r.commands = append(r.commands, SetAntialiasCommand{Enabled: enabled})
}

// SetPen records a pen change.
func (r *Recorder) SetPen(pen paper.Pen) {
	r.commands = append(r.commands, SetPenCommand{Pen: pen})
}

// FillRect records a rectangle fill.
func (r *Recorder) FillRect(rect paper.Rect, c paper.RGBA) {
	r.commands = append(r.commands, FillRectCommand{Rect: rect, Color: c})
}

// DrawLine records a line segment.
func (r *Recorder) DrawLine(from, to paper.Point) {
	r.commands = append(r.commands, DrawLineCommand{From: from, To: to})
}

// Finish returns an immutable Recording containing all recorded commands.
// Unbalanced Saves are closed. The Recorder should not be used afterwards.
func (r *Recorder) Finish() *Recording {
	for ; r.depth > 0; r.depth-- {
		r.commands = append(r.commands, RestoreCommand{})
	}
	return &Recording{
		width:    r.width,
		height:   r.height,
		commands: r.commands,
	}
}

// RecordPage paints page into a new recording sized for scale device
// pixels per logical unit. The recording starts with the matching transform.
func RecordPage(page *paper.PaperItem, scale float64) *Recording {
	area := page.Area()
	rec := NewRecorder(
		int(math.Ceil(area.Width*scale)),
		int(math.Ceil(area.Height*scale)),
	)
	rec.SetTransform(paper.Scale(scale, scale))
	page.Paint(rec)
	return rec.Finish()
}

// Recording is an immutable container for recorded commands.
// It can be replayed to any Backend any number of times.
type Recording struct {
	width, height int
	commands      []Command
}

// Width returns the width of the recording canvas.
func (r *Recording) Width() int { return r.width }

// Height returns the height of the recording canvas.
func (r *Recording) Height() int { return r.height }

// Len returns the number of recorded commands.
func (r *Recording) Len() int { return len(r.commands) }

// Commands returns a copy of the recorded commands.
func (r *Recording) Commands() []Command {
	return append([]Command(nil), r.commands...)
}

// Count returns how many commands of type t were recorded.
func (r *Recording) Count(t CommandType) int {
	n := 0
	for _, c := range r.commands {
		if c.Type() == t {
			n++
		}
	}
	return n
}

// Playback replays the recording to the given backend.
func (r *Recording) Playback(backend Backend) error {
	if err := backend.Begin(r.width, r.height); err != nil {
		return fmt.Errorf("recording: begin: %w", err)
	}

	for _, cmd := range r.commands {
		switch c := cmd.(type) {
		case SaveCommand:
			backend.Save()
		case RestoreCommand:
			backend.Restore()
		case SetTransformCommand:
			backend.SetTransform(c.Matrix)
		case SetAntialiasCommand:
			backend.SetAntialias(c.Enabled)
		case SetPenCommand:
			backend.SetPen(c.Pen)
		case FillRectCommand:
			backend.FillRect(c.Rect, c.Color)
		case DrawLineCommand:
			backend.DrawLine(c.From, c.To)
		}
	}

	if err := backend.End(); err != nil {
		return fmt.Errorf("recording: end: %w", err)
	}
	paper.Logger().Debug("recording: playback complete", "commands", len(r.commands), "width", r.width, "height", r.height)
	return nil
}
