// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package defaults

import (
	"fmt"
	"math"
	"time"
)

// fromStored converts a value read back from the table into T. Integers are
// stored without their width, so any integer that fits T is accepted.
func fromStored[T any](v any) (T, error) {
	var out T
	var err error
	switch p := any(&out).(type) {
	case *string:
		err = assign(p, v)
	case *bool:
		err = assign(p, v)
	case *time.Time:
		err = assign(p, v)
	case *int:
		err = signed(p, v)
	case *int8:
		err = signed(p, v)
	case *int16:
		err = signed(p, v)
	case *int32:
		err = signed(p, v)
	case *int64:
		err = signed(p, v)
	case *uint:
		err = unsigned(p, v)
	case *uint8:
		err = unsigned(p, v)
	case *uint16:
		err = unsigned(p, v)
	case *uint32:
		err = unsigned(p, v)
	case *uint64:
		err = unsigned(p, v)
	case *float32:
		var f float64
		if f, err = asFloat(v); err == nil {
			*p = float32(f)
		}
	case *float64:
		*p, err = asFloat(v)
	default:
		err = fmt.Errorf("%w: %T is not a primitive", ErrTypeMismatch, out)
	}
	return out, err
}

func mismatch[T any](v any) error {
	var want T
	return fmt.Errorf("%w: stored %T, want %T", ErrTypeMismatch, v, want)
}

func assign[T any](p *T, v any) error {
	t, ok := v.(T)
	if !ok {
		return mismatch[T](v)
	}
	*p = t
	return nil
}

func signed[N int | int8 | int16 | int32 | int64](p *N, v any) error {
	var i int64
	switch n := v.(type) {
	case int64:
		i = n
	case uint64:
		if n > math.MaxInt64 {
			return mismatch[N](v)
		}
		i = int64(n)
	default:
		return mismatch[N](v)
	}
	if int64(N(i)) != i {
		return mismatch[N](v)
	}
	*p = N(i)
	return nil
}

func unsigned[N uint | uint8 | uint16 | uint32 | uint64](p *N, v any) error {
	var u uint64
	switch n := v.(type) {
	case uint64:
		u = n
	case int64:
		if n < 0 {
			return mismatch[N](v)
		}
		u = uint64(n)
	default:
		return mismatch[N](v)
	}
	if uint64(N(u)) != u {
		return mismatch[N](v)
	}
	*p = N(u)
	return nil
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, mismatch[float64](v)
	}
}
