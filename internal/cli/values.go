// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/toeirei/sqldefaults/defaults"
)

// valueTypes are the accepted --type values.
var valueTypes = []string{"string", "int", "bool", "float", "time", "json"}

var errNoValue = errors.New("no value")

func checkType(typ string) error {
	for _, t := range valueTypes {
		if t == typ {
			return nil
		}
	}
	return fmt.Errorf("unknown --type %q (known: %v)", typ, valueTypes)
}

// setValue parses raw as typ and stores it under name.
func setValue(s *defaults.Store, typ, name, raw string) (bool, error) {
	switch typ {
	case "string":
		return defaults.Set(s, defaults.NewKey[string](name), raw), nil
	case "int":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return false, fmt.Errorf("invalid int %q: %w", raw, err)
		}
		return defaults.Set(s, defaults.NewKey[int64](name), n), nil
	case "bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return false, fmt.Errorf("invalid bool %q: %w", raw, err)
		}
		return defaults.Set(s, defaults.NewKey[bool](name), b), nil
	case "float":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return false, fmt.Errorf("invalid float %q: %w", raw, err)
		}
		return defaults.Set(s, defaults.NewKey[float64](name), f), nil
	case "time":
		t, err := parseTime(raw)
		if err != nil {
			return false, err
		}
		return defaults.Set(s, defaults.NewKey[time.Time](name), t), nil
	case "json":
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return false, fmt.Errorf("invalid json: %w", err)
		}
		return defaults.Set(s, defaults.NewKey[any](name), v), nil
	}
	return false, checkType(typ)
}

func parseTime(raw string) (time.Time, error) {
	if raw == "now" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (want RFC 3339): %w", raw, err)
	}
	return t, nil
}

// getValue reads name as typ and formats it for output.
func getValue(s *defaults.Store, typ, name string) (string, error) {
	switch typ {
	case "string":
		return format(s, name, func(v string) (string, error) { return v, nil })
	case "int":
		return format(s, name, func(v int64) (string, error) { return strconv.FormatInt(v, 10), nil })
	case "bool":
		return format(s, name, func(v bool) (string, error) { return strconv.FormatBool(v), nil })
	case "float":
		return format(s, name, func(v float64) (string, error) { return strconv.FormatFloat(v, 'g', -1, 64), nil })
	case "time":
		return format(s, name, func(v time.Time) (string, error) { return v.Format(time.RFC3339Nano), nil })
	case "json":
		return format(s, name, func(v any) (string, error) {
			b, err := json.MarshalIndent(v, "", "  ")
			return string(b), err
		})
	}
	return "", checkType(typ)
}

func format[T any](s *defaults.Store, name string, fn func(T) (string, error)) (string, error) {
	v, ok := defaults.Get(s, defaults.NewKey[T](name))
	if !ok {
		return "", errNoValue
	}
	return fn(v)
}
