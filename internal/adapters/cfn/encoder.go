package cfn

import (
	"bytes"
	"encoding/json"

	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Supported template encodings.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode serializes the template. Map keys are emitted in sorted order by both encoders,
// so equal templates always encode to equal bytes.
func (*Synthesizer) Encode(tmpl *domain.Template, format string) ([]byte, error) {
	switch format {
	case "", FormatJSON:
		return encodeJSON(tmpl)
	case FormatYAML, "yml":
		return encodeYAML(tmpl)
	default:
		return nil, zerr.With(domain.ErrUnknownFormat, "format", format)
	}
}

func encodeJSON(tmpl *domain.Template) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tmpl); err != nil {
		return nil, zerr.Wrap(err, domain.ErrSynthFailed.Error())
	}
	return buf.Bytes(), nil
}

func encodeYAML(tmpl *domain.Template) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tmpl); err != nil {
		return nil, zerr.Wrap(err, domain.ErrSynthFailed.Error())
	}
	if err := enc.Close(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrSynthFailed.Error())
	}
	return buf.Bytes(), nil
}
