package naipng

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// decodeNAIData decodes a naidata payload: strict base64 wrapping a JSON
// object.
func decodeNAIData(text []byte) (map[string]any, error) {
	// The std decoder silently drops CR and LF.
	if bytes.ContainsAny(text, "\r\n") {
		return nil, &DataError{Domain: DomainTextGen, Stage: StageBase64, Err: errors.New("line breaks in payload")}
	}
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(text)))
	n, err := base64.StdEncoding.Decode(raw, text)
	if err != nil {
		return nil, &DataError{Domain: DomainTextGen, Stage: StageBase64, Err: err}
	}
	obj, err := decodeObject(raw[:n])
	if err != nil {
		return nil, &DataError{Domain: DomainTextGen, Stage: StageJSON, Err: err}
	}
	return obj, nil
}

// decodeComment parses a Comment payload. Comment is a standard keyword,
// so anything that is not a JSON object is someone else's text.
func decodeComment(text []byte) (map[string]any, bool) {
	if len(text) < 2 || text[0] != '{' || text[len(text)-1] != '}' {
		return nil, false
	}
	obj, err := decodeObject(text)
	if err != nil {
		return nil, false
	}
	return obj, true
}

func decodeObject(data []byte) (map[string]any, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("not valid UTF-8")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level value is %s, not an object", jsonKind(v))
	}
	return obj, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case json.Number:
		return "a number"
	case string:
		return "a string"
	case []any:
		return "an array"
	}
	return fmt.Sprintf("%T", v)
}
