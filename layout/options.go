package layout

import (
	"fmt"
	"strings"
)

// Measurer 由渲染后端提供，返回给定字体、字号下文本的宽度（pt）。
// 实现必须是纯函数式的；若被并发使用，需自行保证线程安全。
type Measurer interface {
	Measure(font string, size float64, text string) (float64, error)
}

// MeasureFunc 让普通函数满足 Measurer 接口。
type MeasureFunc func(font string, size float64, text string) (float64, error)

func (f MeasureFunc) Measure(font string, size float64, text string) (float64, error) {
	return f(font, size, text)
}

// Pagination 决定行序列超出一页容量时的处理方式。
type Pagination int

const (
	// PaginateAuto 在基线越过下边距时自动开始新页。
	PaginateAuto Pagination = iota
	// PaginateNone 把所有行放在同一页，由调用方自行分页。
	PaginateNone
)

func (p Pagination) String() string {
	switch p {
	case PaginateAuto:
		return "auto"
	case PaginateNone:
		return "none"
	default:
		return fmt.Sprintf("Pagination(%d)", int(p))
	}
}

// ParsePagination 解析 auto/none（以及 caller、off 等别名）。
func ParsePagination(v string) (Pagination, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto", "on":
		return PaginateAuto, nil
	case "none", "off", "caller", "manual":
		return PaginateNone, nil
	}
	return PaginateAuto, &ConfigError{Field: "pagination", Reason: fmt.Sprintf("不支持的取值 %q", v)}
}
