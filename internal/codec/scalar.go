// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	// Times travel as RFC 3339 text under tag 0 so nanoseconds and the
	// offset survive.
	scalarEnc = mustEncMode(cbor.EncOptions{
		Time:    cbor.TimeRFC3339Nano,
		TimeTag: cbor.EncTagRequired,
	})
	// Go strings may hold any bytes; they come back unchanged.
	scalarDec = mustDecMode(cbor.DecOptions{
		DefaultByteStringType: reflect.TypeOf([]byte(nil)),
		UTF8:                  cbor.UTF8DecodeInvalid,
	})

	structuredEnc = mustEncMode(cbor.CoreDetEncOptions())
	structuredDec = mustDecMode(cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		UTF8:           cbor.UTF8DecodeInvalid,
	})
)

func mustEncMode(o cbor.EncOptions) cbor.EncMode {
	m, err := o.EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: invalid cbor encode options: %v", err))
	}
	return m
}

func mustDecMode(o cbor.DecOptions) cbor.DecMode {
	m, err := o.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: invalid cbor decode options: %v", err))
	}
	return m
}

// EncodeScalar wraps one native value (string, bool, integer, float,
// time.Time or []byte) for storage in a sealed column.
func EncodeScalar(v any) ([]byte, error) {
	b, err := scalarEnc.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encode scalar %T: %w", v, err)
	}
	return b, nil
}

// DecodeScalar reverses EncodeScalar. Non-negative integers come back as
// uint64 and negative ones as int64, floats as float64, times as time.Time.
func DecodeScalar(b []byte) (any, error) {
	var v any
	if err := scalarDec.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("codec: decode scalar: %w", err)
	}
	return v, nil
}
