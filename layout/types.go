package layout

import (
	"encoding/json"
	"fmt"
	"strings"
)

// 该文件定义排版过程与渲染阶段共用的数据模型：字体样式、文本片段、行与定位片段。

// FontStyle 表示文本的样式变体。
type FontStyle int

const (
	Regular FontStyle = iota
	Bold
	Italic
	BoldItalic
)

// Styles 返回全部样式变体，用于校验字体映射是否完整。
func Styles() []FontStyle {
	return []FontStyle{Regular, Bold, Italic, BoldItalic}
}

// with 叠加粗体或斜体属性，例如 Bold.with(Italic) == BoldItalic。
func (s FontStyle) with(other FontStyle) FontStyle {
	bold := s == Bold || s == BoldItalic || other == Bold || other == BoldItalic
	italic := s == Italic || s == BoldItalic || other == Italic || other == BoldItalic
	switch {
	case bold && italic:
		return BoldItalic
	case bold:
		return Bold
	case italic:
		return Italic
	default:
		return Regular
	}
}

func (s FontStyle) String() string {
	switch s {
	case Regular:
		return "regular"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold-italic"
	default:
		return fmt.Sprintf("FontStyle(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler so styles read well in debug JSON and as map keys.
func (s FontStyle) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *FontStyle) UnmarshalText(text []byte) error {
	style, err := ParseFontStyle(string(text))
	if err != nil {
		return err
	}
	*s = style
	return nil
}

// ParseFontStyle 解析样式名称，接受 regular/bold/italic/bold-italic 及常见别名。
func ParseFontStyle(name string) (FontStyle, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "regular", "normal", "default":
		return Regular, nil
	case "bold", "strong":
		return Bold, nil
	case "italic", "emphasis", "oblique":
		return Italic, nil
	case "bold-italic", "bolditalic", "bold_italic":
		return BoldItalic, nil
	}
	return Regular, fmt.Errorf("未知的字体样式：%q", name)
}

// Span 是不可变的样式文本片段，宽度在创建时由度量接口计算一次。
type Span struct {
	text  string
	style FontStyle
	font  string
	size  float64
	width float64
}

// MeasureSpan 通过 Measurer 度量文本宽度并创建 Span。
func MeasureSpan(m Measurer, text string, style FontStyle, font string, size float64) (Span, error) {
	width, err := m.Measure(font, size, text)
	if err != nil {
		return Span{}, &MeasureError{Font: font, Size: size, Text: text, Err: err}
	}
	return Span{text: text, style: style, font: font, size: size, width: width}, nil
}

// NewMeasuredSpan 使用已知宽度创建 Span（测试或反序列化场景）。
func NewMeasuredSpan(text string, style FontStyle, font string, size, width float64) Span {
	return Span{text: text, style: style, font: font, size: size, width: width}
}

func (s Span) Text() string { return s.text }
func (s Span) Style() FontStyle { return s.style }
func (s Span) Font() string { return s.font }
func (s Span) Size() float64 { return s.size }
func (s Span) Width() float64 { return s.width }

type spanJSON struct {
	Text  string    `json:"text"`
	Style FontStyle `json:"style"`
	Font  string    `json:"font"`
	Size  float64   `json:"size"`
	Width float64   `json:"width"`
}

// MarshalJSON 输出 Span 的全部字段，便于调试 JSON。
func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal(spanJSON{Text: s.text, Style: s.style, Font: s.font, Size: s.size, Width: s.width})
}

// UnmarshalJSON 读取调试 JSON 中的 Span。
func (s *Span) UnmarshalJSON(data []byte) error {
	var raw spanJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewMeasuredSpan(raw.Text, raw.Style, raw.Font, raw.Size, raw.Width)
	return nil
}

// Line 是一行内从左到右排列的 Span。
type Line []Span

// Width 返回行内所有 Span 宽度之和。
func (l Line) Width() float64 {
	total := 0.0
	for _, s := range l {
		total += s.Width()
	}
	return total
}

// Text 拼接行内文本，主要用于测试与调试。
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.Text())
	}
	return b.String()
}

// PositionedSpan 绑定了页面绝对坐标（pt，左上角为原点，Y 为基线位置）。
type PositionedSpan struct {
	Span Span    `json:"span"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Result 保存分页后的页面与文档元信息。
type Result struct {
	Pages []PageBox    `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}

// PageBox 记录一页的尺寸、边距与可直接绘制的文本片段（单位：pt）。
type PageBox struct {
	Number int              `json:"number"`
	Width  float64          `json:"width"`
	Height float64          `json:"height"`
	Margin Margin           `json:"margin"`
	Spans  []PositionedSpan `json:"spans"`
}

// Margin 以 pt 为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
