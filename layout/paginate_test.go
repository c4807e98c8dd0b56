package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func manyLines(n int) []Line {
	lines := make([]Line, n)
	for i := range lines {
		lines[i] = Line{NewMeasuredSpan(fmt.Sprintf("line %d", i), Regular, "R", 12, 30)}
	}
	return lines
}

func TestPaginateAuto(t *testing.T) {
	cfg := DefaultConfig()
	per := cfg.LinesPerPage()
	res := Paginate(manyLines(per*2+3), cfg)

	if len(res.Pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(res.Pages))
	}
	wantCounts := []int{per, per, 3}
	for i, page := range res.Pages {
		if page.Number != i+1 {
			t.Fatalf("page %d numbered %d", i, page.Number)
		}
		if len(page.Spans) != wantCounts[i] {
			t.Fatalf("page %d has %d spans, want %d", i, len(page.Spans), wantCounts[i])
		}
		if y := page.Spans[0].Y; y != cfg.FirstBaseline() {
			t.Fatalf("page %d first baseline %g, want %g", i, y, cfg.FirstBaseline())
		}
		for j, ps := range page.Spans {
			if ps.X != cfg.MarginLeft {
				t.Fatalf("page %d span %d x=%g", i, j, ps.X)
			}
			if ps.Y > cfg.PageHeight-cfg.MarginBottom {
				t.Fatalf("page %d span %d below bottom margin: y=%g", i, j, ps.Y)
			}
			if j > 0 && ps.Y-page.Spans[j-1].Y != cfg.Leading {
				t.Fatalf("page %d span %d leading %g", i, j, ps.Y-page.Spans[j-1].Y)
			}
		}
	}
	if got := res.Pages[1].Spans[0].Span.Text(); got != fmt.Sprintf("line %d", per) {
		t.Fatalf("second page starts with %q", got)
	}
}

func TestPaginateNoneKeepsOnePage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pagination = PaginateNone
	res := Paginate(manyLines(cfg.LinesPerPage()*2), cfg)
	if len(res.Pages) != 1 {
		t.Fatalf("expected a single page, got %d", len(res.Pages))
	}
	spans := res.Pages[0].Spans
	last := spans[len(spans)-1]
	if last.Y <= cfg.PageHeight {
		t.Fatalf("caller-driven pagination should let lines overflow, last y=%g", last.Y)
	}
}

func TestPaginateBlankLinesAdvanceBaseline(t *testing.T) {
	cfg := DefaultConfig()
	lines := []Line{
		{NewMeasuredSpan("a", Regular, "R", 12, 6)},
		{},
		{NewMeasuredSpan("b", Regular, "R", 12, 6), NewMeasuredSpan("c", Bold, "B", 12, 6)},
	}
	res := Paginate(lines, cfg)
	type pos struct {
		Text string
		X, Y float64
	}
	var got []pos
	for _, ps := range res.Pages[0].Spans {
		got = append(got, pos{ps.Span.Text(), ps.X, ps.Y})
	}
	y0 := cfg.FirstBaseline()
	want := []pos{
		{"a", 20, y0},
		{"b", 20, y0 + 2*cfg.Leading},
		{"c", 26, y0 + 2*cfg.Leading},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestTypesetEndToEnd(t *testing.T) {
	cfg := testConfig(60)
	meta := DocumentMeta{Title: "T", Creator: "folio"}
	res, err := Typeset(cfg, fixedMeasurer{advance: 0.5}, []Event{
		StartStrong, TextEvent("Bold "), EndStrong, TextEvent("plain "), TextEvent("words"), EndParagraph,
	}, meta)
	if err != nil {
		t.Fatalf("Typeset error: %v", err)
	}
	if res.Meta.Title != "T" || len(res.Pages) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	spans := res.Pages[0].Spans
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	// "Bold " 与 "plain " 共 55pt 在第一行，"words" 换到第二行
	if spans[1].X != cfg.MarginLeft+25 || spans[1].Y != spans[0].Y {
		t.Fatalf("plain span misplaced: %+v", spans[1])
	}
	if spans[2].X != cfg.MarginLeft || spans[2].Y != spans[0].Y+cfg.Leading {
		t.Fatalf("wrapped span misplaced: %+v", spans[2])
	}

	var buf bytes.Buffer
	if err := EncodeDebugJSON(&buf, res); err != nil {
		t.Fatalf("EncodeDebugJSON error: %v", err)
	}
	var decoded Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("debug JSON is not readable: %v", err)
	}
	if got := decoded.Pages[0].Spans[0].Span; got.Style() != Bold || got.Text() != "Bold " {
		t.Fatalf("debug JSON lost span data: %+v", got)
	}

	if _, err := Typeset(cfg, fixedMeasurer{advance: 0.5, fail: "x"}, []Event{TextEvent("x")}, meta); err == nil {
		t.Fatalf("expected measurement failure")
	}
}
