// Package textrenderer lays text out on a monospace character grid. It is
// useful for previews in a terminal and as a deterministic backend in tests.
package textrenderer

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

// PageSeparator is written between pages.
const PageSeparator = "\f\n"

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// Options configures the grid geometry in points.
type Options struct {
	// CellWidth is the advance of one display cell. Font and size are ignored.
	CellWidth float64
	// LinePitch is the vertical distance between rows, normally the layout leading.
	LinePitch float64
}

// Renderer measures strings in display cells and paints them onto a grid.
// It holds no mutable state and is safe for concurrent use.
type Renderer struct {
	opts Options
}

// New creates a text renderer. Zero options fall back to a 6pt cell and 18pt pitch.
func New(opts Options) *Renderer {
	if opts.CellWidth <= 0 {
		opts.CellWidth = layout.DefaultFontSize / 2
	}
	if opts.LinePitch <= 0 {
		opts.LinePitch = layout.DefaultLeading
	}
	return &Renderer{opts: opts}
}

// ForConfig derives the grid from layout parameters: half an em per cell, one row per leading.
func ForConfig(cfg layout.Config) *Renderer {
	return New(Options{CellWidth: cfg.FontSize / 2, LinePitch: cfg.Leading})
}

// Measure returns the number of display cells times the cell width.
func (r *Renderer) Measure(font string, size float64, text string) (float64, error) {
	if font == "" {
		return 0, fmt.Errorf("字体标识为空")
	}
	return float64(runewidth.StringWidth(text)) * r.opts.CellWidth, nil
}

// Render paints every page onto its own grid and joins the pages with PageSeparator.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	var b strings.Builder
	for i, page := range result.Pages {
		if i > 0 {
			b.WriteString(PageSeparator)
		}
		for _, row := range r.paint(page) {
			b.WriteString(strings.TrimRight(row, " "))
			b.WriteByte('\n')
		}
	}
	return []byte(b.String()), nil
}

type grid [][]string

func (g *grid) put(row, col int, cluster string) {
	for len(*g) <= row {
		*g = append(*g, nil)
	}
	line := (*g)[row]
	for len(line) <= col {
		line = append(line, " ")
	}
	line[col] = cluster
	(*g)[row] = line
}

func (r *Renderer) paint(page layout.PageBox) []string {
	var g grid
	for _, ps := range page.Spans {
		// 首行基线位于上边距加一个字号处，之后每行下移一个行距
		row := int(math.Max(0, math.Round((ps.Y-page.Margin.Top-ps.Span.Size())/r.opts.LinePitch)))
		col := int(math.Max(0, math.Round((ps.X-page.Margin.Left)/r.opts.CellWidth)))
		gr := uniseg.NewGraphemes(ps.Span.Text())
		for gr.Next() {
			cluster := gr.Str()
			w := runewidth.StringWidth(cluster)
			if w == 0 {
				continue
			}
			g.put(row, col, cluster)
			// 宽字符占用的后续格子留空串，拼接时不产生额外字符
			for k := 1; k < w; k++ {
				g.put(row, col+k, "")
			}
			col += w
		}
	}
	rows := make([]string, len(g))
	for i, line := range g {
		rows[i] = strings.Join(line, "")
	}
	return rows
}
