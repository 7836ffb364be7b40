// Package safe provides helpers for safe numeric conversions with overflow checks.
package safe

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is wrapped by every conversion that does not fit its target type.
var ErrOutOfRange = errors.New("value out of range")

// Uint32 converts signed or unsigned integers to uint32 with range validation.
func Uint32[T ~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64](v T) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d does not fit uint32", ErrOutOfRange, v)
	}
	return uint32(v), nil
}

// Int64 converts an unsigned amount to int64, rejecting values above math.MaxInt64.
func Int64[T ~uint | ~uint32 | ~uint64](v T) (int64, error) {
	if uint64(v) > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d does not fit int64", ErrOutOfRange, v)
	}
	return int64(v), nil
}

// AddUint64 returns a+b, failing instead of wrapping around.
func AddUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, fmt.Errorf("%w: %d + %d overflows uint64", ErrOutOfRange, a, b)
	}
	return a + b, nil
}

// FitsBytes reports an error when v needs more than width bytes.
func FitsBytes(v uint64, width int) error {
	if width <= 0 || width > 8 {
		return fmt.Errorf("%w: unsupported width %d", ErrOutOfRange, width)
	}
	if width < 8 && v>>(uint(width)*8) != 0 {
		return fmt.Errorf("%w: %d does not fit %d bytes", ErrOutOfRange, v, width)
	}
	return nil
}
