// Package jsonx converts between typed Go values and dynamic JSON maps.
package jsonx

import json "github.com/goccy/go-json"

// ToDynamicJSON converts any value to a map[string]any by round-tripping it
// through its JSON representation. It is how typed tool schemas become the
// loosely-typed parameter maps vendor SDKs expect.
func ToDynamicJSON(val any) (map[string]any, error) {
	result := make(map[string]any)
	b, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(b, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// FromDynamicJSON populates target, which must be a pointer, from a dynamic
// JSON map by round-tripping through its JSON representation.
func FromDynamicJSON(input map[string]any, target any) error {
	b, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, target)
}
