package markdown

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/folio/layout"
)

// structural 去掉 EventOther，只保留引擎关心的事件。
func structural(events []layout.Event) []layout.Event {
	var out []layout.Event
	for _, ev := range events {
		if ev.Kind != layout.EventOther {
			out = append(out, ev)
		}
	}
	return out
}

func TestEventsMapping(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []layout.Event
	}{
		{
			name: "emphasis",
			src:  "Hello *world*",
			want: []layout.Event{
				layout.TextEvent("Hello "),
				layout.StartEmphasis, layout.TextEvent("world"), layout.EndEmphasis,
				layout.EndParagraph,
			},
		},
		{
			name: "strong with nested emphasis",
			src:  "**bold *both***",
			want: []layout.Event{
				layout.StartStrong, layout.TextEvent("bold "),
				layout.StartEmphasis, layout.TextEvent("both"), layout.EndEmphasis,
				layout.EndStrong,
				layout.EndParagraph,
			},
		},
		{
			name: "tight list",
			src:  "- one\n- two",
			want: []layout.Event{
				layout.StartItem, layout.TextEvent("one"), layout.EndItem,
				layout.StartItem, layout.TextEvent("two"), layout.EndItem,
			},
		},
		{
			name: "soft break",
			src:  "a\nb",
			want: []layout.Event{
				layout.TextEvent("a"), layout.SoftBreak, layout.TextEvent("b"),
				layout.EndParagraph,
			},
		},
		{
			name: "heading",
			src:  "# Title",
			want: []layout.Event{
				layout.StartStrong, layout.TextEvent("Title"), layout.EndStrong,
				layout.EndParagraph,
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := structural(Events([]byte(tc.src)))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// joinedText 拼接全部 Text 事件的文本。
func joinedText(events []layout.Event) string {
	var sb strings.Builder
	for _, ev := range events {
		if ev.Kind == layout.EventText {
			sb.WriteString(ev.Text)
		}
	}
	return sb.String()
}

func TestEventsResolveEscapesAndReferences(t *testing.T) {
	cases := map[string]string{
		"a \\*b\\* &amp; c &#65;\n": "a *b* & c A",
		"&lt;tag&gt; &#x263A;":        "<tag> \u263a",
		"\\_not emphasis\\_":          "_not emphasis_",
		"`raw \\* &amp;`":             "raw \\* &amp;",
	}
	for src, want := range cases {
		if got := joinedText(Events([]byte(src))); got != want {
			t.Fatalf("Events(%q) text = %q, want %q", src, got, want)
		}
	}
	// 转义字符不应产生强调事件
	for _, ev := range Events([]byte("a \\*b\\*")) {
		if ev.Kind == layout.EventStartEmphasis {
			t.Fatalf("escaped asterisks must not open emphasis")
		}
	}
}

func TestEscapeKeepsValuesLiteral(t *testing.T) {
	values := []string{
		"*bold* and _under_",
		"- not an item",
		"# not a heading",
		"1. not a list",
		"a & b &amp; &#65; <br> [link](x) `code` \\ back",
		"plain 文本",
	}
	for _, v := range values {
		events := Events([]byte(Escape(v)))
		if got := joinedText(events); got != v {
			t.Fatalf("Escape(%q) round trip = %q", v, got)
		}
		for _, ev := range events {
			switch ev.Kind {
			case layout.EventStartStrong, layout.EventStartEmphasis, layout.EventStartItem:
				t.Fatalf("Escape(%q) produced markup event %s", v, ev)
			}
		}
	}
}

func TestUnmappedNodesBecomeOther(t *testing.T) {
	events := Events([]byte("para\n\n---\n"))
	var names []string
	for _, ev := range events {
		if ev.Kind == layout.EventOther {
			names = append(names, ev.Name)
		}
	}
	joined := strings.Join(names, ",")
	if !strings.Contains(joined, "Document") || !strings.Contains(joined, "ThematicBreak") {
		t.Fatalf("expected Document and ThematicBreak as other events, got %s", joined)
	}
}

func TestCodeSpanContributesText(t *testing.T) {
	var sb strings.Builder
	for _, ev := range Events([]byte("run `go test` now")) {
		if ev.Kind == layout.EventText {
			sb.WriteString(ev.Text)
		}
	}
	if got := sb.String(); got != "run go test now" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestTokens(t *testing.T) {
	if diff := cmp.Diff([]string{"hello ", "world"}, Tokens("hello world")); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
	if got := Tokens(""); len(got) != 0 {
		t.Fatalf("expected no tokens, got %q", got)
	}
	// 组合字符应规范化为 NFC
	if got := Tokens("e\u0301"); len(got) != 1 || got[0] != "\u00e9" {
		t.Fatalf("expected NFC form, got %q", got)
	}
}

func TestMarkdownThroughEngine(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.PageWidth = cfg.MarginLeft + cfg.MarginRight + 10 // 每行 10 个字符
	m := layout.MeasureFunc(func(font string, size float64, text string) (float64, error) {
		return float64(utf8.RuneCountInString(text)), nil
	})
	engine, err := layout.NewEngine(cfg, m)
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	lines, err := engine.Layout(Events([]byte("alpha beta gamma\n\n- item")))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	var got []string
	for _, l := range lines {
		got = append(got, l.Text())
	}
	want := []string{"alpha ", "beta gamma", " - item"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	for _, l := range lines {
		for _, s := range l {
			if s.Style() != layout.Regular {
				t.Fatalf("unexpected style %s", s.Style())
			}
		}
	}
}
