package render

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/coverage.planner/internal/coverage"
	"github.com/banshee-data/coverage.planner/internal/fsutil"
	"github.com/banshee-data/coverage.planner/internal/geom"
)

// Writer saves renderings of a plan under a single output directory.
type Writer struct {
	fs         fsutil.FileSystem
	dir        string
	width      vg.Length
	height     vg.Length
	assetsHost string
}

// NewWriter returns a Writer that saves into dir on fs.
func NewWriter(fs fsutil.FileSystem, dir string) *Writer {
	return &Writer{
		fs:     fs,
		dir:    dir,
		width:  8 * vg.Inch,
		height: 8 * vg.Inch,
	}
}

// SetAssetsHost overrides where HTML pages load echarts from.
func (w *Writer) SetAssetsHost(host string) { w.assetsHost = host }

// SavePlot writes p as a PNG named name inside the output directory.
func (w *Writer) SavePlot(p *plot.Plot, name string) (string, error) {
	if err := w.fs.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	wt, err := p.WriterTo(w.width, w.height, "png")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(w.dir, name)
	f, err := w.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// SaveChart writes the HTML path chart named name inside the output directory.
func (w *Writer) SaveChart(name, title string, boundary geom.Boundary, res *coverage.Result) (string, error) {
	if err := w.fs.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(w.dir, name)
	f, err := w.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteChart(f, title, boundary, res, w.assetsHost); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// SaveAll writes <base>_path.png, <base>_grid.png and <base>.html and
// returns the paths written.
func (w *Writer) SaveAll(base string, boundary geom.Boundary, res *coverage.Result) ([]string, error) {
	var written []string

	pp, err := PathPlot(base, boundary, res)
	if err != nil {
		return written, err
	}
	path, err := w.SavePlot(pp, base+"_path.png")
	if err != nil {
		return written, err
	}
	written = append(written, path)

	if res != nil && res.Grid != nil {
		gp, err := GridPlot(base+" (sweep frame)", res)
		if err != nil {
			return written, err
		}
		path, err := w.SavePlot(gp, base+"_grid.png")
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	path, err = w.SaveChart(base+".html", base, boundary, res)
	if err != nil {
		return written, err
	}
	written = append(written, path)

	opsf("saved %d renderings for %s in %s", len(written), base, w.dir)
	return written, nil
}
