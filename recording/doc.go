// Package recording captures page painting as commands that can be played
// back to different backends.
//
// # Architecture
//
// The system follows a Command Pattern with three main components:
//
//   - Recorder: implements paper.Painter and captures each call as a command
//   - Recording: an immutable command list with device dimensions
//   - Backend: renders commands to a specific output (image, terminal)
//
// # Basic Usage
//
//	c := paper.NewComposition(paper.WithSnapGrid(grid))
//	r := recording.RecordPage(c.Page(0), 4) // 4 pixels per millimetre
//
//	backend, _ := recording.NewBackend("raster")
//	if err := r.Playback(backend); err != nil {
//	    log.Fatal(err)
//	}
//	backend.(recording.FileBackend).SaveToFile("page.png")
//
// # Backend Registration
//
// Backends are registered using the database/sql driver pattern. Import a
// backend package with a blank identifier to register it:
//
//	import (
//	    _ "github.com/gogpu/paper/recording/backends/raster"
//	    _ "github.com/gogpu/paper/recording/backends/term"
//	)
package recording
