package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatCBOR = "cbor"
)

func validFormat(format string) bool {
	switch format {
	case formatJSON, formatYAML, formatCBOR:
		return true
	}
	return false
}

// cborEncMode uses Core Deterministic Encoding so identical metadata
// always produces identical bytes.
var cborEncMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cli: CBOR encoder initialization failed: " + err.Error())
	}
	return mode
}()

// render serialises decoded metadata. pretty only affects JSON.
func render(data map[string]any, format string, pretty bool) ([]byte, error) {
	switch format {
	case formatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if pretty {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(data); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case formatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(plainValue(data)); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case formatCBOR:
		return cborEncMode.Marshal(plainValue(data))
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// plainValue replaces json.Number with int64, uint64 or float64 so that
// encoders without json.Number support emit numbers rather than strings.
func plainValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = plainValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plainValue(item)
		}
		return out
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if n, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	}
	return v
}
