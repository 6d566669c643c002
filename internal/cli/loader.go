package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/token"

	"github.com/roach88/lowir/internal/compiler"
	"github.com/roach88/lowir/internal/ir"
)

// LoadMode controls how errors are handled during unit loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll loads every file it can and collects the errors.
	LoadModeCollectAll
)

// LoadedUnit is one built unit and the file it came from.
type LoadedUnit struct {
	Path string
	Unit *ir.LinearIR
}

// LoadResult contains the units loaded from a file or directory.
type LoadResult struct {
	Units     []LoadedUnit
	FileCount int
}

// LinearIRs returns the loaded units in load order.
func (r *LoadResult) LinearIRs() []*ir.LinearIR {
	units := make([]*ir.LinearIR, len(r.Units))
	for i, u := range r.Units {
		units[i] = u.Unit
	}
	return units
}

// LoadError is a failure to read, decode or build a unit.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants shared by all commands. Validation diagnostics use
// the E2xx range of the compiler package.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No unit files found
	ErrCodeLoadFailed  = "E004" // Unit file could not be decoded
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // Unit document could not be built
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStore       = "E008" // History store error
	ErrCodeArgs        = "E009" // Invalid flag or argument
)

// LoadUnits loads every unit in path, which is either a unit file or a
// directory searched recursively for .cue/.yaml/.yml files.
func LoadUnits(path string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", path, err)}}
	}

	files := []string{path}
	if info.IsDir() {
		files, err = FindUnitFiles(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
		if len(files) == 0 {
			return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no unit files found in %s", path)}}
		}
	}

	result := &LoadResult{FileCount: len(files)}
	var errs []error
	for _, file := range files {
		units, err := loadFile(file)
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Units = append(result.Units, units...)
	}
	return result, errs
}

func loadFile(path string) ([]LoadedUnit, error) {
	docs, err := compiler.LoadUnitFile(path)
	if err != nil {
		return nil, convertLoadError(err, ErrCodeLoadFailed, path)
	}
	units := make([]LoadedUnit, 0, len(docs))
	for _, doc := range docs {
		l, err := compiler.BuildUnit(doc)
		if err != nil {
			return nil, convertLoadError(err, ErrCodeBuildFailed, path)
		}
		units = append(units, LoadedUnit{Path: path, Unit: l})
	}
	return units, nil
}

// FindUnitFiles walks dir and returns all unit file paths in lexical order.
func FindUnitFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && compiler.IsUnitFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertLoadError keeps the CUE position of compile errors.
func convertLoadError(err error, code, path string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) && compileErr.Pos.IsValid() {
		return &LoadError{Code: code, Message: compileErr.Message, Pos: compileErr.Pos}
	}
	return &LoadError{Code: code, Message: fmt.Sprintf("%s: %v", path, err)}
}
