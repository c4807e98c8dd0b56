// Package profile loads layout profiles: page geometry, text parameters,
// fonts and document metadata. Profiles can be written in the folio DSL
// (.folio), TOML (.toml) or YAML (.yaml/.yml).
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/layout"
)

// Profile mirrors the on-disk shape shared by all three formats.
// Lengths are strings with units, e.g. "12pt" or "7mm".
type Profile struct {
	Name       string `toml:"name" yaml:"name"`
	Page       Page   `toml:"page" yaml:"page"`
	Text       Text   `toml:"text" yaml:"text"`
	Fonts      Fonts  `toml:"fonts" yaml:"fonts"`
	Meta       Meta   `toml:"meta" yaml:"meta"`
	Pagination string `toml:"pagination" yaml:"pagination"`
}

// Page describes paper size and margins.
type Page struct {
	Size        string   `toml:"size" yaml:"size"`
	Orientation string   `toml:"orientation" yaml:"orientation"`
	Width       string   `toml:"width" yaml:"width"`
	Height      string   `toml:"height" yaml:"height"`
	Margin      []string `toml:"margin" yaml:"margin"`
}

// Text holds body text parameters.
type Text struct {
	Size       string  `toml:"size" yaml:"size"`
	Leading    string  `toml:"leading" yaml:"leading"`
	ItemMarker *string `toml:"item_marker" yaml:"item_marker"`
}

// Fonts maps each style to a font identity.
type Fonts struct {
	Regular    string `toml:"regular" yaml:"regular"`
	Bold       string `toml:"bold" yaml:"bold"`
	Italic     string `toml:"italic" yaml:"italic"`
	BoldItalic string `toml:"bold_italic" yaml:"bold_italic"`
}

// Meta is copied into the rendered document.
type Meta struct {
	Title    string   `toml:"title" yaml:"title"`
	Author   string   `toml:"author" yaml:"author"`
	Subject  string   `toml:"subject" yaml:"subject"`
	Creator  string   `toml:"creator" yaml:"creator"`
	Keywords []string `toml:"keywords" yaml:"keywords"`
}

// Format identifies the profile syntax.
type Format string

const (
	FormatDSL  Format = "folio"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the syntax from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".folio", ".profile":
		return FormatDSL, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("无法识别的配置文件类型：%s", path)
}

// ParseError reports a profile that could not be decoded.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("解析配置 %s 失败: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads a profile, choosing the syntax by extension.
func Load(path string) (*Profile, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	return Parse(path, data, format)
}

// Parse decodes profile data. source is only used in error messages.
func Parse(source string, data []byte, format Format) (*Profile, error) {
	p := &Profile{}
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, p)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(p)
		if errors.Is(err, io.EOF) {
			err = nil // 空文件
		}
	case FormatDSL:
		var doc *dsl.Document
		doc, err = dsl.Parse(source, bytes.NewReader(data))
		if err == nil {
			p, err = fromDocument(doc)
		}
	default:
		return nil, fmt.Errorf("不支持的配置格式：%s", format)
	}
	if err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return p, nil
}

// fromDocument converts the DSL AST into a Profile.
func fromDocument(doc *dsl.Document) (*Profile, error) {
	p := &Profile{Name: doc.Name}
	for _, section := range doc.Sections {
		switch {
		case section.Meta != nil:
			for _, e := range entries(section.Meta.Block) {
				switch strings.ToLower(e.Key) {
				case "title":
					p.Meta.Title = scalar(e)
				case "author":
					p.Meta.Author = scalar(e)
				case "subject":
					p.Meta.Subject = scalar(e)
				case "creator":
					p.Meta.Creator = scalar(e)
				case "keywords":
					p.Meta.Keywords = e.Value.Strings()
				default:
					return nil, unknownKey("meta", e)
				}
			}
		case section.Page != nil:
			if err := applyPageHeader(&p.Page, section.Page); err != nil {
				return nil, err
			}
		case section.Text != nil:
			for _, e := range entries(section.Text.Block) {
				switch strings.ToLower(e.Key) {
				case "size":
					p.Text.Size = scalar(e)
				case "leading", "line-height":
					p.Text.Leading = scalar(e)
				case "marker", "item-marker":
					marker := scalar(e)
					p.Text.ItemMarker = &marker
				default:
					return nil, unknownKey("text", e)
				}
			}
		case section.Fonts != nil:
			for _, e := range entries(section.Fonts.Block) {
				style, err := layout.ParseFontStyle(e.Key)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", e.Pos, err)
				}
				p.Fonts.set(style, scalar(e))
			}
		case section.Option != nil:
			e := section.Option
			switch strings.ToLower(e.Key) {
			case "pagination":
				p.Pagination = scalar(e)
			default:
				return nil, unknownKey("profile", e)
			}
		}
	}
	return p, nil
}

// applyPageHeader reads `page <size> [portrait|landscape] [margin v1 [v2 [v3 [v4]]]]`.
func applyPageHeader(page *Page, sec *dsl.PageSection) error {
	page.Size = sec.Size
	for i := 0; i < len(sec.Params); i++ {
		switch tok := sec.Params[i]; strings.ToLower(tok.Value) {
		case "portrait", "landscape":
			page.Orientation = strings.ToLower(tok.Value)
		case "margin":
			page.Margin = nil
			for i+1 < len(sec.Params) && sec.Params[i+1].Type == "Number" {
				page.Margin = append(page.Margin, sec.Params[i+1].Value)
				i++
			}
			if len(page.Margin) == 0 {
				return fmt.Errorf("%s: margin 后缺少长度", tok.Pos)
			}
		default:
			return fmt.Errorf("%s: 无法识别的页面参数 %q", tok.Pos, tok.Value)
		}
	}
	return nil
}

func entries(b *dsl.Block) []*dsl.Assignment {
	if b == nil {
		return nil
	}
	return b.Entries
}

func scalar(e *dsl.Assignment) string {
	s, _ := e.Value.Text()
	return s
}

func unknownKey(section string, e *dsl.Assignment) error {
	return fmt.Errorf("%s: %s 中未知的配置项 %q", e.Pos, section, e.Key)
}

func (f *Fonts) set(style layout.FontStyle, font string) {
	switch style {
	case layout.Regular:
		f.Regular = font
	case layout.Bold:
		f.Bold = font
	case layout.Italic:
		f.Italic = font
	case layout.BoldItalic:
		f.BoldItalic = font
	}
}

// Config converts the profile into validated layout parameters.
// Fields left empty keep the values of layout.DefaultConfig.
func (p *Profile) Config() (layout.Config, error) {
	cfg := layout.DefaultConfig()

	if err := p.Page.apply(&cfg); err != nil {
		return cfg, err
	}
	if p.Text.Size != "" {
		v, err := lengthPT("text.size", p.Text.Size)
		if err != nil {
			return cfg, err
		}
		cfg.FontSize = v
	}
	if p.Text.Leading != "" {
		v, err := leadingPT(p.Text.Leading, cfg.FontSize)
		if err != nil {
			return cfg, err
		}
		cfg.Leading = v
	}
	if p.Text.ItemMarker != nil {
		cfg.ItemMarker = *p.Text.ItemMarker
	}
	for style, font := range map[layout.FontStyle]string{
		layout.Regular:    p.Fonts.Regular,
		layout.Bold:       p.Fonts.Bold,
		layout.Italic:     p.Fonts.Italic,
		layout.BoldItalic: p.Fonts.BoldItalic,
	} {
		if font != "" {
			cfg.Fonts[style] = font
		}
	}
	mode, err := layout.ParsePagination(p.Pagination)
	if err != nil {
		return cfg, err
	}
	cfg.Pagination = mode

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (page Page) apply(cfg *layout.Config) error {
	size := layout.PageSize{Width: cfg.PageWidth, Height: cfg.PageHeight}
	if page.Size != "" {
		preset, ok := layout.LookupPageSize(page.Size)
		if !ok {
			return &layout.ConfigError{Field: "page.size", Reason: fmt.Sprintf("暂不支持的纸张尺寸 %s", page.Size)}
		}
		size = preset
	}
	if page.Width != "" {
		v, err := lengthPT("page.width", page.Width)
		if err != nil {
			return err
		}
		size.Width = v
	}
	if page.Height != "" {
		v, err := lengthPT("page.height", page.Height)
		if err != nil {
			return err
		}
		size.Height = v
	}
	switch strings.ToLower(page.Orientation) {
	case "", "portrait":
	case "landscape":
		size = size.Landscape()
	default:
		return &layout.ConfigError{Field: "page.orientation", Reason: fmt.Sprintf("不支持的方向 %s", page.Orientation)}
	}
	cfg.PageWidth, cfg.PageHeight = size.Width, size.Height

	if len(page.Margin) == 0 {
		return nil
	}
	vals := make([]float64, 0, 4)
	for i, raw := range page.Margin {
		if i == 4 {
			break // 多余的值忽略
		}
		v, err := lengthPT("page.margin", raw)
		if err != nil {
			return err
		}
		vals = append(vals, v)
	}
	// 1 个值：四边相同；2 个值：上下、左右；3 个值：上、左右、下；4 个值：上、右、下、左
	switch len(vals) {
	case 1:
		cfg.MarginTop, cfg.MarginRight, cfg.MarginBottom, cfg.MarginLeft = vals[0], vals[0], vals[0], vals[0]
	case 2:
		cfg.MarginTop, cfg.MarginRight, cfg.MarginBottom, cfg.MarginLeft = vals[0], vals[1], vals[0], vals[1]
	case 3:
		cfg.MarginTop, cfg.MarginRight, cfg.MarginBottom, cfg.MarginLeft = vals[0], vals[1], vals[2], vals[1]
	case 4:
		cfg.MarginTop, cfg.MarginRight, cfg.MarginBottom, cfg.MarginLeft = vals[0], vals[1], vals[2], vals[3]
	}
	return nil
}

func lengthPT(field, raw string) (float64, error) {
	l, err := layout.ParseLength(raw)
	if err != nil {
		return 0, &layout.ConfigError{Field: field, Reason: err.Error()}
	}
	return l.ToPT(), nil
}

// leadingPT accepts an absolute length ("18pt") or a factor of the font size ("1.5x").
func leadingPT(raw string, fontSize float64) (float64, error) {
	v := strings.TrimSpace(raw)
	if f, ok := strings.CutSuffix(strings.ToLower(v), "x"); ok {
		factor, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil || math.IsNaN(factor) || math.IsInf(factor, 0) {
			return 0, &layout.ConfigError{Field: "text.leading", Reason: fmt.Sprintf("无法解析倍数 %q", raw)}
		}
		return factor * fontSize, nil
	}
	return lengthPT("text.leading", v)
}

// DocumentMeta returns the document metadata, defaulting the creator.
func (p *Profile) DocumentMeta() layout.DocumentMeta {
	meta := layout.DocumentMeta{
		Title:    p.Meta.Title,
		Author:   p.Meta.Author,
		Subject:  p.Meta.Subject,
		Creator:  p.Meta.Creator,
		Keywords: p.Meta.Keywords,
	}
	if meta.Creator == "" {
		meta.Creator = "folio"
	}
	return meta
}
