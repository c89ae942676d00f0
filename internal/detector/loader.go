package detector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// ConfigRelPath is where a user signature file is looked up under the XDG
// config directories.
const ConfigRelPath = "sqlhunter/signatures.yaml"

// signatureFile is the on-disk YAML layout:
//
//	signatures:
//	  - pattern: "SQL syntax"
//	    category: generic
type signatureFile struct {
	Signatures []Signature `yaml:"signatures"`
}

// Parse decodes a YAML signature document into a Set.
func Parse(data []byte) (*Set, error) {
	var f signatureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("detector: parse signatures: %w", err)
	}
	return NewSet(f.Signatures)
}

// LoadFile reads a YAML signature file.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("detector: read signatures: %w", err)
	}
	return Parse(data)
}

// Load resolves the signature set. An explicit path must exist; otherwise
// the XDG config file is used when present, and the built-ins when not.
// The returned string names where the set came from.
func Load(path string) (*Set, string, error) {
	if path != "" {
		s, err := LoadFile(path)
		return s, path, err
	}
	found, err := xdg.SearchConfigFile(ConfigRelPath)
	if err != nil {
		return MustDefault(), "built-in", nil
	}
	s, err := LoadFile(found)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return MustDefault(), "built-in", nil
		}
		return nil, found, err
	}
	return s, found, nil
}
