// Command papergrid renders composition pages with their snap grid.
//
//	papergrid -config page.yaml -output page.png
//	papergrid -config page.yaml -backend term
//	papergrid -config page.yaml -page -1 -watch
//
// With -page -1 every page is rendered; raster output files then get the
// page index appended, as in page-0.png, page-1.png.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/paper"
	"github.com/gogpu/paper/internal/watch"
	"github.com/gogpu/paper/recording"
	_ "github.com/gogpu/paper/recording/backends/raster"
	"github.com/gogpu/paper/recording/backends/term"
)

func main() {
	var (
		configPath = flag.String("config", "", "composition YAML file (defaults if empty)")
		output     = flag.String("output", "paper.png", "output file for file backends")
		backend    = flag.String("backend", "raster", "output backend: "+strings.Join(recording.Backends(), ", "))
		scale      = flag.Float64("scale", 0, "device pixels per paper unit (0 uses the configured view scale)")
		page       = flag.Int("page", 0, "page index to render, -1 for all pages")
		watchCfg   = flag.Bool("watch", false, "re-render when the config file changes")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *verbose {
		paper.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if !recording.IsRegistered(*backend) {
		log.Fatalf("Unknown backend %q (available: %s)", *backend, strings.Join(recording.Backends(), ", "))
	}

	r := &renderer{
		configPath: *configPath,
		output:     *output,
		backend:    *backend,
		scale:      *scale,
		page:       *page,
		waitKeys:   !*watchCfg,
	}
	if err := r.render(); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	if *watchCfg {
		if r.configPath == "" {
			log.Fatal("-watch requires -config")
		}
		if err := r.watch(); err != nil {
			log.Fatalf("Watch failed: %v", err)
		}
	}
	if err := r.close(); err != nil {
		log.Fatalf("Failed to close backend: %v", err)
	}
}

type renderer struct {
	configPath string
	output     string
	backend    string
	scale      float64
	page       int
	waitKeys   bool

	// term keeps one terminal open across re-renders.
	term *term.Backend
}

func (r *renderer) load() (paper.Config, error) {
	if r.configPath == "" {
		return paper.DefaultConfig(), nil
	}
	return paper.LoadConfig(r.configPath)
}

// compose builds the composition and the device scale to record it at.
// A -scale override also becomes the view scale so dots stay one device
// pixel across.
func (r *renderer) compose() (*paper.Composition, float64, error) {
	cfg, err := r.load()
	if err != nil {
		return nil, 0, err
	}
	if r.scale > 0 {
		cfg.View.Scale = r.scale
	}
	comp, err := cfg.Composition()
	if err != nil {
		return nil, 0, err
	}
	return comp, cfg.View.Scale, nil
}

func (r *renderer) render() error {
	comp, scale, err := r.compose()
	if err != nil {
		return err
	}

	if r.page >= 0 {
		item := comp.Page(r.page)
		if item == nil {
			return fmt.Errorf("page %d: %w", r.page, paper.ErrPageOutOfRange)
		}
		return r.play(recording.RecordPage(item, scale), r.output)
	}

	recs, err := recordAll(comp, scale)
	if err != nil {
		return err
	}
	for i, rec := range recs {
		if err := r.play(rec, pageOutput(r.output, i)); err != nil {
			return err
		}
	}
	return nil
}

// recordAll paints every page concurrently, one recorder per page.
func recordAll(comp *paper.Composition, scale float64) ([]*recording.Recording, error) {
	w, h := comp.PaperSize()
	recorders := make([]*recording.Recorder, comp.NumPages())
	err := comp.Render(context.Background(), func(i int) (paper.Painter, error) {
		rec := recording.NewRecorder(int(math.Ceil(w*scale)), int(math.Ceil(h*scale)))
		rec.SetTransform(paper.Scale(scale, scale))
		recorders[i] = rec
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	recs := make([]*recording.Recording, len(recorders))
	for i, rec := range recorders {
		recs[i] = rec.Finish()
	}
	return recs, nil
}

func (r *renderer) play(rec *recording.Recording, output string) error {
	b, err := r.newBackend()
	if err != nil {
		return err
	}
	if err := rec.Playback(b); err != nil {
		return err
	}
	if fb, ok := b.(recording.FileBackend); ok {
		return fb.SaveToFile(output)
	}
	if r.term != nil && r.waitKeys {
		r.term.WaitKey()
	}
	return nil
}

func (r *renderer) newBackend() (recording.Backend, error) {
	if r.backend == "term" && r.term != nil {
		return r.term, nil
	}
	b, err := recording.NewBackend(r.backend)
	if err != nil {
		return nil, err
	}
	if tb, ok := b.(*term.Backend); ok {
		r.term = tb
	}
	return b, nil
}

// watch re-renders on every change to the config file until interrupted
// or, on a terminal, until a key is pressed.
func (r *renderer) watch() error {
	target, err := filepath.Abs(r.configPath)
	if err != nil {
		return err
	}
	w, err := watch.New(filepath.Dir(target))
	if err != nil {
		return err
	}
	defer w.Close()

	quit := make(chan struct{})
	if r.term != nil {
		go func() {
			r.term.WaitKey()
			close(quit)
		}()
	}

	for {
		select {
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			if abs, _ := filepath.Abs(path); abs != target {
				continue
			}
			if err := r.render(); err != nil {
				// Keep watching; the file may be mid-edit.
				paper.Logger().Warn("papergrid: render failed", "path", path, "err", err)
				continue
			}
			if r.term == nil {
				log.Printf("Re-rendered %s", r.output)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		case <-quit:
			return nil
		}
	}
}

func (r *renderer) close() error {
	if r.term == nil {
		return nil
	}
	return r.term.Close()
}

// pageOutput inserts the page index before the extension of path.
func pageOutput(path string, i int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), i, ext)
}
