package compiler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownExtension is returned by LoadUnitFile for files that are neither
// CUE nor YAML.
var ErrUnknownExtension = errors.New("unit file must be .cue, .yaml or .yml")

// IsUnitFile reports whether path has a unit document extension.
func IsUnitFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadUnitFile reads the unit documents in one file. A CUE file may declare
// several units under the top-level "unit" field; a YAML file holds exactly
// one.
func LoadUnitFile(path string) ([]*UnitDoc, error) {
	if !IsUnitFile(path) {
		return nil, errors.Wrap(ErrUnknownExtension, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read unit file")
	}
	if strings.ToLower(filepath.Ext(path)) == ".cue" {
		return CompileUnitSource(path, src)
	}
	doc, err := ParseUnitYAML(src)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return []*UnitDoc{doc}, nil
}
