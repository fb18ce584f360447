package json

import (
	json "github.com/bytedance/sonic"
)

// strict rejects object keys with no matching struct field.
var strict = json.Config{DisallowUnknownFields: true}.Froze()

// Unmarshal decodes b into v, failing on unknown object keys.
func Unmarshal(b []byte, v any) error {
	return strict.Unmarshal(b, v)
}

func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func MarshalIndent(v any) ([]byte, error) {
	return json.ConfigStd.MarshalIndent(v, "", "  ")
}

func Valid(b []byte) bool {
	return json.Valid(b)
}
