package recording

import (
	"io"

	"github.com/gogpu/paper"
)

// Backend is the interface that all output backends must implement.
// Backends receive painting commands and translate them to their output
// format (raster pixels, terminal cells, ...).
//
// A Backend manages its own state stack for Save/Restore.
//
// # Implementation Contract
//
// Each backend must:
//  1. Register in init() using recording.Register()
//  2. Handle all Backend methods (even if no-op for some)
//  3. Manage own state stack for Save/Restore
//  4. Map logical coordinates through the current transform
type Backend interface {
	paper.Painter

	// Begin initializes the backend for rendering at the given device size.
	// This must be called before any drawing operations.
	Begin(width, height int) error

	// End finalizes rendering. After End, output methods may be used.
	End() error

	// SetTransform sets the logical-to-device transformation matrix,
	// replacing any existing transform.
	SetTransform(m paper.Matrix)
}

// WriterBackend extends Backend with the ability to write output to an io.Writer.
type WriterBackend interface {
	Backend

	// WriteTo writes the rendered content to w. Call only after End.
	WriteTo(w io.Writer) (int64, error)
}

// FileBackend extends Backend with the ability to save output directly to a file.
type FileBackend interface {
	Backend

	// SaveToFile saves the rendered content to path. Call only after End.
	SaveToFile(path string) error
}
