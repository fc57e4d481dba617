// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Marshal encodes v as consecutive little-endian float64 values.
// A nil or empty vector encodes to nil.
func Marshal(v Vector) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

// Unmarshal decodes bytes produced by Marshal. Empty input decodes to nil.
func Unmarshal(b []byte) (Vector, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("unmarshal vector: %d bytes is not a multiple of 8", len(b))
	}
	v := make(Vector, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}
