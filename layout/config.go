package layout

import (
	"fmt"
	"math"
)

// 默认参数：A4 纸（pt）、20pt 边距、12pt 正文、18pt 行距。
const (
	DefaultPageWidth  = 595.0
	DefaultPageHeight = 842.0
	DefaultMargin     = 20.0
	DefaultFontSize   = 12.0
	DefaultLeading    = 18.0
	DefaultItemMarker = " - "
)

// Config 是排版参数，长度单位统一为 pt。
type Config struct {
	PageWidth    float64
	PageHeight   float64
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64
	FontSize     float64
	Leading      float64
	// Fonts 把每个样式映射到具体字体标识（例如 builtin:go-bold 或字体文件路径）。
	Fonts      map[FontStyle]string
	ItemMarker string
	Pagination Pagination
}

// DefaultConfig 返回使用内置 Go 字体的默认参数。
func DefaultConfig() Config {
	return Config{
		PageWidth:    DefaultPageWidth,
		PageHeight:   DefaultPageHeight,
		MarginLeft:   DefaultMargin,
		MarginRight:  DefaultMargin,
		MarginTop:    DefaultMargin,
		MarginBottom: DefaultMargin,
		FontSize:     DefaultFontSize,
		Leading:      DefaultLeading,
		Fonts: map[FontStyle]string{
			Regular:    "builtin:go-regular",
			Bold:       "builtin:go-bold",
			Italic:     "builtin:go-italic",
			BoldItalic: "builtin:go-bolditalic",
		},
		ItemMarker: DefaultItemMarker,
		Pagination: PaginateAuto,
	}
}

// MaxWidth 返回一行可用的水平宽度。
func (c Config) MaxWidth() float64 {
	return c.PageWidth - c.MarginLeft - c.MarginRight
}

// FirstBaseline 返回页面首行基线的纵坐标。
func (c Config) FirstBaseline() float64 {
	return c.MarginTop + c.FontSize
}

// LinesPerPage 返回一页最多容纳的行数。
func (c Config) LinesPerPage() int {
	bottom := c.PageHeight - c.MarginBottom
	first := c.FirstBaseline()
	if first > bottom || c.Leading <= 0 {
		return 0
	}
	return int((bottom-first)/c.Leading) + 1
}

// Margin 以 Margin 结构返回四边边距。
func (c Config) Margin() Margin {
	return Margin{Top: c.MarginTop, Right: c.MarginRight, Bottom: c.MarginBottom, Left: c.MarginLeft}
}

// Validate 在排版前检查参数，失败时返回 *ConfigError。
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"page_width", c.PageWidth},
		{"page_height", c.PageHeight},
		{"font_size", c.FontSize},
		{"line_leading", c.Leading},
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return &ConfigError{Field: p.name, Reason: fmt.Sprintf("必须为大于 0 的有限数，实际为 %g", p.value)}
		}
	}
	margins := []struct {
		name  string
		value float64
	}{
		{"margin_left", c.MarginLeft},
		{"margin_right", c.MarginRight},
		{"margin_top", c.MarginTop},
		{"margin_bottom", c.MarginBottom},
	}
	for _, m := range margins {
		if !(m.value >= 0) || math.IsInf(m.value, 0) {
			return &ConfigError{Field: m.name, Reason: fmt.Sprintf("必须为非负有限数，实际为 %g", m.value)}
		}
	}
	if w := c.MaxWidth(); !(w > 0) {
		return &ConfigError{Field: "max_width", Reason: fmt.Sprintf("页面宽度减去左右边距后必须大于 0，实际为 %g", w)}
	}
	switch c.Pagination {
	case PaginateAuto:
		if c.LinesPerPage() == 0 {
			return &ConfigError{Field: "page_height", Reason: "上下边距之间放不下一行文本"}
		}
	case PaginateNone:
	default:
		return &ConfigError{Field: "pagination", Reason: fmt.Sprintf("未知的分页模式 %d", int(c.Pagination))}
	}
	for _, style := range Styles() {
		if c.Fonts[style] == "" {
			return &ConfigError{Field: "fonts", Reason: fmt.Sprintf("缺少 %s 样式对应的字体", style)}
		}
	}
	return nil
}
