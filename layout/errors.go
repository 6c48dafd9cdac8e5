package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBounds 可通过 errors.Is 匹配任意 *InvalidBoundsError。
	ErrInvalidBounds = errors.New("layout: invalid bounds")

	// ErrNilFont 表示计算时没有提供字体。
	ErrNilFont = errors.New("layout: nil font")
)

// InvalidBoundsError 在搜索开始前拒绝非法的尺寸或字号范围。
type InvalidBoundsError struct {
	Field  string
	Reason string
}

func (e *InvalidBoundsError) Error() string {
	return fmt.Sprintf("layout: invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidBounds) true for any InvalidBoundsError.
func (e *InvalidBoundsError) Is(target error) bool { return target == ErrInvalidBounds }

func invalid(field, format string, args ...any) error {
	return &InvalidBoundsError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
