// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package seal

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Plaintexts shorter than this are stored as-is; structured blobs above it
// (long arrays, pretty-printed dictionaries) usually shrink well.
const compressThreshold = 512

// MaxPlaintextSize bounds a single value. Seal refuses larger plaintexts
// and the decoder rejects anything that would expand past it.
const MaxPlaintextSize = 64 << 20

// EncodeAll/DecodeAll are safe for concurrent use on a shared coder.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxPlaintextSize))
)

func compress(p []byte) ([]byte, bool) {
	if len(p) < compressThreshold {
		return nil, false
	}
	packed := encoder.EncodeAll(p, make([]byte, 0, len(p)/2))
	if len(packed) >= len(p) {
		return nil, false
	}
	return packed, true
}

func decompress(p []byte) ([]byte, error) {
	out, err := decoder.DecodeAll(p, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrMalformed, err)
	}
	return out, nil
}
