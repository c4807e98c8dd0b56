package renderer

import "github.com/ByLCY/folio/layout"

// Renderer 将分页后的排版结果输出为最终文件，例如 PDF 或纯文本。
// 实现通常同时提供 layout.Measurer，度量与绘制必须使用同一套字体度量。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时具备度量与绘制能力。
type Backend interface {
	layout.Measurer
	Renderer
}
