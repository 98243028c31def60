// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package linkframe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// parseKVPairs turns a comma-separated "key=value" list into a
// map[int]interface{}, the small demo payload schema this CLI lets a user
// build without implying anything about pkg/transport's own payload
// handling. Values that parse as integers or floats are stored as numbers;
// everything else is stored as a string.
func parseKVPairs(spec string) (map[int]interface{}, error) {
	out := make(map[int]interface{})
	if spec == "" {
		return out, nil
	}

	for _, pair := range strings.Split(spec, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("linkframe: malformed --kv entry %q, want key=value", pair)
		}
		key, err := strconv.Atoi(strings.TrimSpace(kv[0]))
		if err != nil {
			return nil, fmt.Errorf("linkframe: --kv key %q is not an integer: %w", kv[0], err)
		}
		out[key] = parseScalar(strings.TrimSpace(kv[1]))
	}
	return out, nil
}

func parseScalar(s string) interface{} {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// encodeKVPayload CBOR-encodes a key/value map built from --kv. This is an
// application-layer convenience for testing against real payloads;
// pkg/transport never sees this shape, it only ever handles bytes.
func encodeKVPayload(spec string) ([]byte, error) {
	kv, err := parseKVPairs(spec)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(kv)
}

// decodeKVPayload reverses encodeKVPayload for display in `listen --cbor`.
func decodeKVPayload(payload []byte) (map[int]interface{}, error) {
	var kv map[int]interface{}
	if err := cbor.Unmarshal(payload, &kv); err != nil {
		return nil, err
	}
	return kv, nil
}
