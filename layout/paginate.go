package layout

// Paginate 把行序列放置到页面上。首行基线位于 MarginTop+FontSize，之后每行下移 Leading。
// PaginateAuto 模式下基线越过下边距即换页；PaginateNone 模式下所有行都在同一页。
func Paginate(lines []Line, cfg Config) *Result {
	page := NewPage()
	res := &Result{}
	bottom := cfg.PageHeight - cfg.MarginBottom

	finish := func() {
		res.Pages = append(res.Pages, PageBox{
			Number: len(res.Pages) + 1,
			Width:  cfg.PageWidth,
			Height: cfg.PageHeight,
			Margin: cfg.Margin(),
			Spans:  page.Take(),
		})
	}

	y := cfg.FirstBaseline()
	for i, line := range lines {
		if cfg.Pagination == PaginateAuto && i > 0 && y > bottom {
			finish()
			y = cfg.FirstBaseline()
		}
		page.RenderSpans(line, cfg.MarginLeft, y)
		y += cfg.Leading
	}
	finish()
	return res
}

// Typeset 串联排版与分页：校验参数、把事件排成行，再放置到页面上。
func Typeset(cfg Config, m Measurer, events []Event, meta DocumentMeta) (*Result, error) {
	engine, err := NewEngine(cfg, m)
	if err != nil {
		return nil, err
	}
	lines, err := engine.Layout(events)
	if err != nil {
		return nil, err
	}
	res := Paginate(lines, engine.Config())
	res.Meta = meta
	return res, nil
}
