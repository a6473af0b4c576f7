package audit

import (
	"encoding/json"
	"fmt"
)

// UnserializableDetails replaces a details payload that could not be encoded.
const UnserializableDetails = "[unserializable details]"

// Details is the optional free-form payload of an entry: nothing, a plain
// string, or a flat key/value map encoded as a JSON object. The zero value
// carries no details.
type Details struct {
	text   *string
	fields map[string]any
}

// TextDetails stores s verbatim.
func TextDetails(s string) Details {
	return Details{text: &s}
}

// FieldDetails stores fields as a JSON object.
func FieldDetails(fields map[string]any) Details {
	return Details{fields: fields}
}

// IsZero reports whether d carries no payload.
func (d Details) IsZero() bool {
	return d.text == nil && d.fields == nil
}

// encode returns the stored form of d, nil for no details.
func (d Details) encode() (*string, error) {
	switch {
	case d.text != nil:
		s := *d.text
		return &s, nil
	case d.fields != nil:
		b, err := json.Marshal(d.fields)
		if err != nil {
			return nil, fmt.Errorf("encode details: %w", err)
		}
		s := string(b)
		return &s, nil
	default:
		return nil, nil
	}
}
