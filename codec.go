package observable

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Codec reads patch documents. Apply unmarshals a document into a map keyed
// by field name, then re-encodes each entry with Marshal and decodes it into
// the field's own type.
type Codec interface {
	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error

	// Marshal encodes v in the same format Unmarshal reads.
	Marshal(v any) ([]byte, error)

	// ContentType returns the MIME type for observability and debugging.
	ContentType() string
}

// JSONCodec implements Codec using encoding/json.
type JSONCodec struct{}

// Unmarshal decodes JSON bytes into v.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Marshal encodes v as JSON.
func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// ContentType returns the JSON MIME type.
func (JSONCodec) ContentType() string {
	return "application/json"
}

// YAMLCodec implements Codec using gopkg.in/yaml.v3.
type YAMLCodec struct{}

// Unmarshal decodes YAML bytes into v.
func (YAMLCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// Marshal encodes v as YAML.
func (YAMLCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// ContentType returns the YAML MIME type.
func (YAMLCodec) ContentType() string {
	return "application/x-yaml"
}

// TOMLCodec implements Codec using github.com/pelletier/go-toml/v2.
type TOMLCodec struct{}

// Unmarshal decodes TOML bytes into v.
func (TOMLCodec) Unmarshal(data []byte, v any) error {
	return toml.Unmarshal(data, v)
}

// Marshal encodes v as TOML.
func (TOMLCodec) Marshal(v any) ([]byte, error) {
	return toml.Marshal(v)
}

// ContentType returns the TOML MIME type.
func (TOMLCodec) ContentType() string {
	return "application/toml"
}

// CodecForPath picks a codec from a file extension: .yaml and .yml use
// YAMLCodec, .toml uses TOMLCodec, anything else JSONCodec.
func CodecForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAMLCodec{}
	case ".toml":
		return TOMLCodec{}
	default:
		return JSONCodec{}
	}
}

var (
	_ Codec = JSONCodec{}
	_ Codec = YAMLCodec{}
	_ Codec = TOMLCodec{}
)
