package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Decode parses an EMJSON document. Unknown top-level versions are
// rejected; structural problems surface as VAL diagnostics from
// Validate, not as decode errors.
func Decode(data []byte) (*Model, error) {
	var m Model
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode emjson: %w", err)
	}
	if m.Version != Version {
		return nil, fmt.Errorf("unsupported emjson_version %q (want %s)", m.Version, Version)
	}
	return &m, nil
}

// Read loads and decodes an EMJSON file.
func Read(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Encode renders the model as deterministic, indented JSON. Map keys
// are emitted sorted by encoding/json, so byte-identical inputs yield
// byte-identical outputs.
func Encode(m *Model) ([]byte, error) {
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode emjson: %w", err)
	}
	return append(out, '\n'), nil
}

// Write encodes the model and writes it to path.
func Write(path string, m *Model) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
