package layout

// Page 累积一页上已定位的文本片段。多次调用 RenderSpans 会追加内容，
// Clear 用于跨页复用，Take 一次性移交累积结果。
type Page struct {
	spans []PositionedSpan
}

// NewPage 创建空页。
func NewPage() *Page {
	return &Page{}
}

// RenderSpans 沿同一条基线从左到右放置 spans，横坐标按各 Span 自身的宽度推进，不重新度量。
func (p *Page) RenderSpans(spans []Span, startX, startY float64) {
	x := startX
	for _, span := range spans {
		p.spans = append(p.spans, PositionedSpan{Span: span, X: x, Y: startY})
		x += span.Width()
	}
}

// Len 返回已累积的片段数量。
func (p *Page) Len() int { return len(p.spans) }

// Clear 丢弃已累积的内容，保留底层容量以便复用。
func (p *Page) Clear() {
	p.spans = p.spans[:0]
}

// Take 移交已累积的片段，调用后 Page 为空。
func (p *Page) Take() []PositionedSpan {
	out := p.spans
	p.spans = nil
	return out
}
