package recording

import "github.com/gogpu/paper"

// CommandType identifies the type of a command.
type CommandType uint8

const (
	// State commands
	CmdSave         CommandType = iota // Save current state
	CmdRestore                         // Restore previous state
	CmdSetTransform                    // Set transformation matrix
	CmdSetAntialias                    // Toggle antialiasing

	// Style commands
	CmdSetPen // Set stroke pen

	// Drawing commands
	CmdFillRect // Fill a rectangle
	CmdDrawLine // Stroke a line segment
)

var commandTypeNames = [...]string{
	CmdSave:         "Save",
	CmdRestore:      "Restore",
	CmdSetTransform: "SetTransform",
	CmdSetAntialias: "SetAntialias",
	CmdSetPen:       "SetPen",
	CmdFillRect:     "FillRect",
	CmdDrawLine:     "DrawLine",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// SaveCommand saves the current graphics state.
type SaveCommand struct{}

// Type implements Command.
func (SaveCommand) Type() CommandType { return CmdSave }

// RestoreCommand restores the previously saved graphics state.
type RestoreCommand struct{}

// Type implements Command.
func (RestoreCommand) Type() CommandType { return CmdRestore }

// SetTransformCommand sets the logical-to-device transformation.
type SetTransformCommand struct {
	Matrix paper.Matrix
}

// Type implements Command.
func (SetTransformCommand) Type() CommandType { return CmdSetTransform }

// SetAntialiasCommand toggles antialiased rendering.
type SetAntialiasCommand struct {
	Enabled bool
}

// Type implements Command.
func (SetAntialiasCommand) Type() CommandType { return CmdSetAntialias }

// SetPenCommand selects the pen for subsequent lines.
type SetPenCommand struct {
	Pen paper.Pen
}

// Type implements Command.
func (SetPenCommand) Type() CommandType { return CmdSetPen }

// FillRectCommand fills a rectangle with a solid color.
type FillRectCommand struct {
	Rect  paper.Rect
	Color paper.RGBA
}

// Type implements Command.
func (FillRectCommand) Type() CommandType { return CmdFillRect }

// DrawLineCommand strokes a line segment with the current pen.
type DrawLineCommand struct {
	From, To paper.Point
}

// Type implements Command.
func (DrawLineCommand) Type() CommandType { return CmdDrawLine }
