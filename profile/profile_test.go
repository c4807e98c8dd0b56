package profile

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ByLCY/folio/layout"
)

const dslProfile = `profile Report v1 {
  meta {
    title: "Quarterly report"
    author: "Finance"
    keywords: ["q3", "internal"]
  }
  page A5 landscape margin 10mm 20pt
  text { size: 11pt; leading: "1.5x"; marker: " * " }
  fonts {
    bold: "builtin:go-mono-bold"
  }
  pagination: none
}
`

const tomlProfile = `
name = "Report"
pagination = "none"

[page]
size = "A5"
orientation = "landscape"
margin = ["10mm", "20pt"]

[text]
size = "11pt"
leading = "1.5x"
item_marker = " * "

[fonts]
bold = "builtin:go-mono-bold"

[meta]
title = "Quarterly report"
author = "Finance"
keywords = ["q3", "internal"]
`

const yamlProfile = `
name: Report
pagination: none
page:
  size: A5
  orientation: landscape
  margin: ["10mm", "20pt"]
text:
  size: 11pt
  leading: 1.5x
  item_marker: " * "
fonts:
  bold: builtin:go-mono-bold
meta:
  title: Quarterly report
  author: Finance
  keywords: [q3, internal]
`

var approx = cmpopts.EquateApprox(0, 1e-6)

func wantReportConfig() layout.Config {
	cfg := layout.DefaultConfig()
	cfg.PageWidth, cfg.PageHeight = 595, 420
	mm10 := 10 * layout.MmToPt
	cfg.MarginTop, cfg.MarginBottom = mm10, mm10
	cfg.MarginLeft, cfg.MarginRight = 20, 20
	cfg.FontSize = 11
	cfg.Leading = 16.5
	cfg.ItemMarker = " * "
	cfg.Fonts[layout.Bold] = "builtin:go-mono-bold"
	cfg.Pagination = layout.PaginateNone
	return cfg
}

func TestFormatsAgree(t *testing.T) {
	cases := []struct {
		name   string
		data   string
		format Format
	}{
		{"dsl", dslProfile, FormatDSL},
		{"toml", tomlProfile, FormatTOML},
		{"yaml", yamlProfile, FormatYAML},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(tc.name, []byte(tc.data), tc.format)
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if p.Name != "Report" {
				t.Fatalf("unexpected name %q", p.Name)
			}
			cfg, err := p.Config()
			if err != nil {
				t.Fatalf("config failed: %v", err)
			}
			if diff := cmp.Diff(wantReportConfig(), cfg, approx); diff != "" {
				t.Fatalf("config mismatch (-want +got):\n%s", diff)
			}
			want := layout.DocumentMeta{
				Title:    "Quarterly report",
				Author:   "Finance",
				Creator:  "folio",
				Keywords: []string{"q3", "internal"},
			}
			if diff := cmp.Diff(want, p.DocumentMeta()); diff != "" {
				t.Fatalf("meta mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEmptyProfileUsesDefaults(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML} {
		p, err := Parse("empty", nil, format)
		if err != nil {
			t.Fatalf("%s: parse failed: %v", format, err)
		}
		cfg, err := p.Config()
		if err != nil {
			t.Fatalf("%s: config failed: %v", format, err)
		}
		if diff := cmp.Diff(layout.DefaultConfig(), cfg); diff != "" {
			t.Fatalf("%s: defaults mismatch (-want +got):\n%s", format, diff)
		}
	}
}

func TestMarginShorthand(t *testing.T) {
	cases := []struct {
		margin                   []string
		top, right, bottom, left float64
	}{
		{[]string{"5"}, 5, 5, 5, 5},
		{[]string{"5", "7"}, 5, 7, 5, 7},
		{[]string{"5", "7", "9"}, 5, 7, 9, 7},
		{[]string{"5", "7", "9", "11"}, 5, 7, 9, 11},
		{[]string{"5", "7", "9", "11", "13"}, 5, 7, 9, 11},
	}
	for _, tc := range cases {
		p := &Profile{Page: Page{Margin: tc.margin}}
		cfg, err := p.Config()
		if err != nil {
			t.Fatalf("%v: config failed: %v", tc.margin, err)
		}
		got := []float64{cfg.MarginTop, cfg.MarginRight, cfg.MarginBottom, cfg.MarginLeft}
		want := []float64{tc.top, tc.right, tc.bottom, tc.left}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%v: margins mismatch (-want +got):\n%s", tc.margin, diff)
		}
	}
}

func TestExplicitPageSize(t *testing.T) {
	p := &Profile{Page: Page{Width: "100mm", Height: "2in"}}
	cfg, err := p.Config()
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if math.Abs(cfg.PageWidth-100*layout.MmToPt) > 1e-6 || cfg.PageHeight != 144 {
		t.Fatalf("unexpected page size %gx%g", cfg.PageWidth, cfg.PageHeight)
	}
}

func TestInvalidProfiles(t *testing.T) {
	cases := map[string]*Profile{
		"size":        {Page: Page{Size: "B7"}},
		"orientation": {Page: Page{Orientation: "sideways"}},
		"length":      {Text: Text{Size: "big"}},
		"leading":     {Text: Text{Leading: "twox"}},
		"nan size":    {Text: Text{Size: "nanpt"}},
		"inf width":   {Page: Page{Width: "infmm"}},
		"nan leading": {Text: Text{Leading: "nanx"}},
		"pagination":  {Pagination: "sometimes"},
		"margins":     {Page: Page{Margin: []string{"300pt"}}},
	}
	for name, p := range cases {
		_, err := p.Config()
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !errors.Is(err, layout.ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestDSLRejectsUnknownKeys(t *testing.T) {
	cases := []string{
		"profile X v1 {\n  meta { color: red }\n}",
		"profile X v1 {\n  text { weight: 3 }\n}",
		"profile X v1 {\n  fonts { heavy: \"a.ttf\" }\n}",
		"profile X v1 {\n  page A4 sideways\n}",
		"profile X v1 {\n  page A4 margin\n}",
		"profile X v1 {\n  colour: blue\n}",
	}
	for _, src := range cases {
		_, err := Parse("x.folio", []byte(src), FormatDSL)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected *ParseError for %q, got %v", src, err)
		}
		if perr.Path != "x.folio" {
			t.Fatalf("unexpected path %q", perr.Path)
		}
	}
}

func TestParseErrorFromTOML(t *testing.T) {
	_, err := Parse("bad.toml", []byte("page = ["), FormatTOML)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"report.folio": dslProfile,
		"report.toml":  tomlProfile,
		"report.yml":   yamlProfile,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		p, err := Load(path)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if p.Meta.Title != "Quarterly report" {
			t.Fatalf("%s: unexpected title %q", name, p.Meta.Title)
		}
	}

	if _, err := Load(filepath.Join(dir, "report.ini")); err == nil {
		t.Fatalf("expected error for unknown extension")
	}
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
