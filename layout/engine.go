package layout

import "fmt"

// Engine 把事件流排成行。Engine 本身只读，每次 Layout 使用独立的状态，
// 因此可以被顺序复用，不同文档也可以使用各自的 Engine 并行排版。
type Engine struct {
	cfg      Config
	measurer Measurer
	maxWidth float64
}

// NewEngine 校验参数并创建排版引擎。
func NewEngine(cfg Config, m Measurer) (*Engine, error) {
	if m == nil {
		return nil, fmt.Errorf("layout: 缺少度量后端 Measurer")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fonts := make(map[FontStyle]string, len(cfg.Fonts))
	for style, font := range cfg.Fonts {
		fonts[style] = font
	}
	cfg.Fonts = fonts
	return &Engine{cfg: cfg, measurer: m, maxWidth: cfg.MaxWidth()}, nil
}

// Config 返回引擎使用的参数。
func (e *Engine) Config() Config { return e.cfg }

// Layout 依次处理事件并返回完成的行。任一度量失败都会使整个排版失败且不返回任何行。
func (e *Engine) Layout(events []Event) ([]Line, error) {
	st := &state{engine: e, line: Line{}}
	for _, ev := range events {
		if err := st.handle(ev); err != nil {
			return nil, err
		}
	}
	if len(st.line) > 0 {
		st.flush()
	}
	return st.lines, nil
}

// state 是单次排版的可变状态。
type state struct {
	engine *Engine
	// styles 为样式栈，每一层记录打开它的事件；当前样式为各层的组合，空栈表示 Regular。
	styles []styleFrame
	x      float64
	line   Line
	lines  []Line
}

func (st *state) handle(ev Event) error {
	switch ev.Kind {
	case EventStartStrong:
		st.push(EventStartStrong, Bold)
	case EventStartEmphasis:
		st.push(EventStartEmphasis, Italic)
	case EventEndStrong:
		st.pop(EventStartStrong)
	case EventEndEmphasis:
		st.pop(EventStartEmphasis)
	case EventStartItem:
		span, err := st.measure(st.engine.cfg.ItemMarker)
		if err != nil {
			return err
		}
		st.append(span)
	case EventEndItem, EventEndParagraph:
		st.flush()
	case EventText:
		return st.insert(ev.Text)
	case EventSoftBreak:
		return st.insert(" ")
	default:
		// 其余结构事件忽略
	}
	return nil
}

type styleFrame struct {
	open  EventKind
	style FontStyle
}

func (st *state) current() FontStyle {
	style := Regular
	for _, f := range st.styles {
		style = style.with(f.style)
	}
	return style
}

func (st *state) push(open EventKind, style FontStyle) {
	st.styles = append(st.styles, styleFrame{open: open, style: style})
}

// pop 移除最近一层由 open 打开的样式；交错关闭时其余层保持不变，没有匹配的层则忽略。
func (st *state) pop(open EventKind) {
	for i := len(st.styles) - 1; i >= 0; i-- {
		if st.styles[i].open == open {
			st.styles = append(st.styles[:i], st.styles[i+1:]...)
			return
		}
	}
}

func (st *state) measure(text string) (Span, error) {
	style := st.current()
	cfg := st.engine.cfg
	return MeasureSpan(st.engine.measurer, text, style, cfg.Fonts[style], cfg.FontSize)
}

// insert 是文本与软换行共用的贪心换行路径：放不下时先结束当前行。
// 当前行为空时不换行，超宽的单个片段独占一行，由下一个片段触发换行。
func (st *state) insert(text string) error {
	span, err := st.measure(text)
	if err != nil {
		return err
	}
	if len(st.line) > 0 && st.x+span.Width() > st.engine.maxWidth {
		st.flush()
	}
	st.append(span)
	return nil
}

func (st *state) append(span Span) {
	st.line = append(st.line, span)
	st.x += span.Width()
}

func (st *state) flush() {
	st.lines = append(st.lines, st.line)
	st.line = Line{}
	st.x = 0
}
