// Package codec selects the JSON implementation used by the query API.
//
// Both codecs produce identical output for the response types; GoJSON is the
// default and JSON exists for environments that avoid the extra dependency.
package codec

import (
	"fmt"
	"io"
)

// Codec encodes and decodes values. Implementations must be safe for
// concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// Encode writes v to w followed by a newline.
	Encode(w io.Writer, v any) error
	// Decode reads one value from r into v.
	Decode(r io.Reader, v any) error
	Name() string
}

// ByName returns a built-in codec by name ("json" or "go-json").
func ByName(name string) (Codec, error) {
	switch name {
	case "json":
		return JSON{}, nil
	case "go-json", "":
		return GoJSON{}, nil
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}
