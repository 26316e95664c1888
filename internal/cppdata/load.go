package cppdata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads a model in the front-end's JSON format
func Load(r io.Reader) (*Data, error) {
	data := NewData()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(data); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if data.TemplateInstantiations == nil {
		data.TemplateInstantiations = make(map[string][][]Type)
	}
	for i, td := range data.Types {
		if (td.Enum == nil) == (td.Class == nil) {
			return nil, fmt.Errorf("type %d (%s): exactly one of enum and class must be set", i, td.Name)
		}
	}
	return data, nil
}

// LoadFile reads a model from a JSON file
func LoadFile(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer f.Close()

	data, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// Write encodes the model in the front-end's JSON format
func (d *Data) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// TemplateName strips template arguments from an instantiated class name
func TemplateName(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		return name[:i]
	}
	return name
}
