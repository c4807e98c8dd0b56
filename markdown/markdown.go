// Package markdown turns CommonMark documents into layout events.
//
// Only the constructs the line engine understands are mapped; every other
// node becomes an EventOther carrying the node kind, which the engine ignores.
package markdown

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/folio/layout"
)

var md = goldmark.New()

// Events parses src and returns the event stream in document order.
//
//	*a*      -> StartEmphasis Text(a) EndEmphasis
//	**a**    -> StartStrong Text(a) EndStrong
//	- a      -> StartItem Text(a) EndItem
//	# a      -> StartStrong Text(a) EndStrong EndParagraph
//	a\nb     -> Text(a) SoftBreak Text(b) EndParagraph
func Events(src []byte) []layout.Event {
	doc := md.Parser().Parse(text.NewReader(src))
	w := &walker{source: src}
	// walk 不会返回错误
	_ = ast.Walk(doc, w.visit)
	return w.events
}

type walker struct {
	source []byte
	events []layout.Event
}

func (w *walker) emit(ev ...layout.Event) {
	w.events = append(w.events, ev...)
}

func (w *walker) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Emphasis:
		switch {
		case node.Level >= 2 && entering:
			w.emit(layout.StartStrong)
		case node.Level >= 2:
			w.emit(layout.EndStrong)
		case entering:
			w.emit(layout.StartEmphasis)
		default:
			w.emit(layout.EndEmphasis)
		}
	case *ast.ListItem:
		if entering {
			w.emit(layout.StartItem)
		} else {
			w.emit(layout.EndItem)
		}
	case *ast.Paragraph:
		if !entering {
			w.emit(layout.EndParagraph)
		}
	case *ast.Heading:
		if entering {
			w.emit(layout.StartStrong)
		} else {
			w.emit(layout.EndStrong, layout.EndParagraph)
		}
	case *ast.Text:
		if !entering {
			break
		}
		value := node.Segment.Value(w.source)
		if !node.IsRaw() {
			value = util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(value)))
		}
		w.text(string(value))
		switch {
		case node.SoftLineBreak():
			w.emit(layout.SoftBreak)
		case node.HardLineBreak():
			w.emit(layout.OtherEvent("HardLineBreak"))
		}
	case *ast.String:
		if entering {
			w.text(string(node.Value))
		}
	default:
		if entering {
			w.emit(layout.OtherEvent(n.Kind().String()))
		}
	}
	return ast.WalkContinue, nil
}

// text 把一段文本按可断行位置拆成多个 Text 事件，使引擎能够逐词换行。
func (w *walker) text(s string) {
	for _, tok := range Tokens(s) {
		w.emit(layout.TextEvent(tok))
	}
}

// Escape quotes s so that Events reproduces it as literal text: ASCII
// punctuation is backslash-escaped and '&' becomes "&amp;".
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '&':
			b.WriteString("&amp;")
		case r < utf8.RuneSelf && util.IsPunct(byte(r)):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokens splits s into UAX #14 line-break segments after NFC normalisation.
// Each segment keeps its trailing whitespace: "hello world" -> ["hello ", "world"].
func Tokens(s string) []string {
	s = norm.NFC.String(s)
	var out []string
	state := -1
	for len(s) > 0 {
		var seg string
		seg, s, _, state = uniseg.FirstLineSegmentInString(s, state)
		out = append(out, seg)
	}
	return out
}
