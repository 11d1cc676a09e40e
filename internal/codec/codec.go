// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package codec turns values into bytes and back.
//
// Two kinds of codec live here. The scalar envelope (EncodeScalar and
// DecodeScalar) carries a single native value through the sealed value column
// and keeps its type: strings stay strings, integers stay integers. Structured
// codecs (JSON, YAML, CBOR) serialize arbitrary Go values and are used for
// records, arrays and dictionaries.
package codec

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// Structured is a self-describing codec for arbitrary values.
type Structured interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

var (
	// JSON is the default structured codec: indented, human-inspectable.
	JSON Structured = jsonCodec{}
	// YAML trades compactness for readability in dumps.
	YAML Structured = yamlCodec{}
	// CBOR is compact and binary.
	CBOR Structured = cborCodec{}
)

var registry = map[string]Structured{
	JSON.Name(): JSON,
	YAML.Name(): YAML,
	CBOR.Name(): CBOR,
}

// Lookup returns the structured codec registered under name. An empty name
// selects JSON.
func Lookup(name string) (Structured, error) {
	if name == "" {
		return JSON, nil
	}
	c, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown codec %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names lists the registered codec names in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

type cborCodec struct{}

func (cborCodec) Name() string { return "cbor" }

func (cborCodec) Marshal(v any) ([]byte, error) {
	return structuredEnc.Marshal(v)
}

func (cborCodec) Unmarshal(data []byte, v any) error {
	return structuredDec.Unmarshal(data, v)
}
