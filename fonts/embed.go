package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// BuiltinPrefix 标记内置字体标识，例如 "builtin:go-regular"。
const BuiltinPrefix = "builtin:"

var builtin = map[string][]byte{
	"go-regular":    goregular.TTF,
	"go-bold":       gobold.TTF,
	"go-italic":     goitalic.TTF,
	"go-bolditalic": gobolditalic.TTF,
	"go-mono":       gomono.TTF,
	"go-mono-bold":  gomonobold.TTF,
}

// IsBuiltin 判断字体标识是否指向内置字体。
func IsBuiltin(name string) bool {
	return strings.HasPrefix(name, BuiltinPrefix) || strings.HasPrefix(name, "built-in:")
}

// Load 返回内置字体的字节数据，name 可写为 "builtin:go-bold" 或直接 "go-bold"。
func Load(name string) ([]byte, error) {
	key := strings.TrimPrefix(strings.TrimPrefix(name, BuiltinPrefix), "built-in:")
	data, ok := builtin[strings.ToLower(key)]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s（可用：%s）", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 返回全部内置字体名称（不含前缀），按字母排序。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
