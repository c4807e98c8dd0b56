package binding

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ByLCY/folio/layout"
)

var (
	exprPattern  = regexp.MustCompile(`\$\{([^}]+)\}`)
	indexPattern = regexp.MustCompile(`\[(\d+)\]`)
)

// Validate 检查绑定数据是否为合法 JSON。
func Validate(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("绑定数据不是合法的 JSON")
	}
	return nil
}

// Interpolate 将文本中的 ${path.to[0].value} 替换为 JSON 数据 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data []byte) string {
	return InterpolateFunc(text, data, nil)
}

// InterpolateFunc 与 Interpolate 相同，但替换值先经过 quote 处理，
// 例如在 Markdown 源文件中转义标记字符。quote 为 nil 时原样插入。
func InterpolateFunc(text string, data []byte, quote func(string) string) string {
	if len(data) == 0 || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := toGJSONPath(strings.TrimSpace(groups[1]))
		if path == "" {
			return match
		}
		val := gjson.GetBytes(data, path)
		if !val.Exists() {
			return match
		}
		if quote != nil {
			return quote(val.String())
		}
		return val.String()
	})
}

// Events 返回对每个 Text 事件执行插值后的新事件流，原切片不变。
func Events(events []layout.Event, data []byte) []layout.Event {
	out := make([]layout.Event, len(events))
	for i, ev := range events {
		if ev.Kind == layout.EventText {
			ev.Text = Interpolate(ev.Text, data)
		}
		out[i] = ev
	}
	return out
}

// toGJSONPath 把 items[0].name 改写为 gjson 的 items.0.name。
func toGJSONPath(path string) string {
	path = indexPattern.ReplaceAllString(path, ".$1")
	return strings.TrimPrefix(path, ".")
}
