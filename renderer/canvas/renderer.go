package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

// Renderer measures and paints text via github.com/tdewolff/canvas.
// The same cached font face serves Measure and Render, so a span paints at
// exactly the width it was measured with.
type Renderer struct {
	baseDir string
	color   color.Color

	// injected resources
	fontBlobs map[string][]byte // by font identity
	fontErrs  map[string]error  // injected resources that failed to load

	mu       sync.Mutex
	families map[string]*canvas.FontFamily // by font identity
	faces    map[faceKey]*canvas.FontFace
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

type faceKey struct {
	font string
	size float64
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	// Fonts registers font blobs under an identity, e.g. "builtin:inter" or "Body".
	Fonts map[string]Resource
	// TextColor defaults to near-black.
	TextColor color.Color
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:   opts.BaseDir,
		color:     opts.TextColor,
		fontBlobs: map[string][]byte{},
		fontErrs:  map[string]error{},
		families:  map[string]*canvas.FontFamily{},
		faces:     map[faceKey]*canvas.FontFace{},
	}
	if r.color == nil {
		r.color = canvas.RGBA(30.0/255.0, 30.0/255.0, 30.0/255.0, 1.0)
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			// 读取失败时在使用该字体时报错
			data, err := os.ReadFile(res.Path)
			switch {
			case err != nil:
				r.fontErrs[name] = fmt.Errorf("读取字体 %s（%s）失败: %w", name, res.Path, err)
			case len(data) == 0:
				r.fontErrs[name] = fmt.Errorf("字体文件 %s（%s）为空", name, res.Path)
			default:
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// Measure 实现 layout.Measurer：返回文本在给定字体、字号（pt）下的宽度（pt）。
func (r *Renderer) Measure(font string, size float64, text string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	face, err := r.face(font, size)
	if err != nil {
		return 0, err
	}
	// canvas 的长度单位是 mm
	return toPt(face.TextWidth(text)), nil
}

// CheckFonts 预先加载配置中的全部字体，使字体配置错误在排版开始前暴露。
func (r *Renderer) CheckFonts(cfg layout.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, style := range layout.Styles() {
		font, ok := cfg.Fonts[style]
		if !ok || font == "" {
			return &layout.ConfigError{Field: "fonts", Reason: fmt.Sprintf("缺少 %s 样式对应的字体", style)}
		}
		if _, err := r.family(font); err != nil {
			return fmt.Errorf("%s 样式字体不可用: %w", style, err)
		}
	}
	return nil
}

// Render renders the result into a PDF byte slice, one PDF page per layout page.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		w, h := toMm(page.Width), toMm(page.Height)
		if i > 0 {
			writer.NewPage(w, h)
		}
		c := canvas.New(w, h)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 与布局一致：左上角为原点，Y 向下

		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", page.Number, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.PageBox) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ps := range page.Spans {
		span := ps.Span
		if strings.TrimSpace(span.Text()) == "" {
			continue
		}
		face, err := r.face(span.Font(), span.Size())
		if err != nil {
			return err
		}
		// ps.Y 为基线位置
		ctx.DrawText(toMm(ps.X), toMm(ps.Y), canvas.NewTextLine(face, span.Text(), canvas.Left))
	}
	return nil
}

// face 返回缓存的字体面，调用方需持有 r.mu。
func (r *Renderer) face(font string, size float64) (*canvas.FontFace, error) {
	key := faceKey{font: font, size: size}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	family, err := r.family(font)
	if err != nil {
		return nil, err
	}
	face := family.Face(size, r.color, canvas.FontRegular, canvas.FontNormal)
	r.faces[key] = face
	return face, nil
}

// family 为每个字体标识建立独立的 FontFamily，调用方需持有 r.mu。
func (r *Renderer) family(font string) (*canvas.FontFamily, error) {
	if family, ok := r.families[font]; ok {
		return family, nil
	}
	data, err := r.loadFontBytes(font)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(font)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", font, err)
	}
	r.families[font] = family
	return family, nil
}

func (r *Renderer) loadFontBytes(font string) ([]byte, error) {
	if font == "" {
		return nil, fmt.Errorf("字体标识为空")
	}
	if blob, ok := r.fontBlobs[font]; ok {
		return blob, nil
	}
	if err, ok := r.fontErrs[font]; ok {
		return nil, err
	}
	if fonts.IsBuiltin(font) {
		return fonts.Load(font)
	}
	// Path based
	path := font
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", font)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", font, err)
	}
	return data, nil
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
