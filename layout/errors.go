package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrMeasurement 表示文本度量失败，本次排版整体失败。
	ErrMeasurement = errors.New("layout: 文本度量失败")
	// ErrInvalidConfig 表示排版参数不合法，在处理任何事件之前即被拒绝。
	ErrInvalidConfig = errors.New("layout: 排版参数不合法")
)

// ConfigError 指出具体不合法的参数。
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// MeasureError 记录度量失败的字体与文本。
type MeasureError struct {
	Font string
	Size float64
	Text string
	Err  error
}

func (e *MeasureError) Error() string {
	return fmt.Sprintf("%v: font=%s size=%g text=%q: %v", ErrMeasurement, e.Font, e.Size, e.Text, e.Err)
}

func (e *MeasureError) Unwrap() []error { return []error{ErrMeasurement, e.Err} }
