package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileUnit decodes one unit struct into a UnitDoc. The value must be
// concrete and carry an exprs list. A missing name is taken from the
// struct's label, so
//
//	unit: matmul: { exprs: [...] }
//
// yields a document named "matmul".
func CompileUnit(v cue.Value) (*UnitDoc, error) {
	if err := concrete(v); err != nil {
		return nil, err
	}
	if !v.LookupPath(cue.ParsePath("exprs")).Exists() {
		return nil, &CompileError{Field: "exprs", Message: "exprs is required", Pos: v.Pos()}
	}

	var doc UnitDoc
	if err := v.Decode(&doc); err != nil {
		return nil, positioned(err)
	}
	if doc.Name == "" {
		if sels := v.Path().Selectors(); len(sels) > 0 {
			doc.Name = sels[len(sels)-1].String()
		}
	}
	return &doc, nil
}

// CompileUnits decodes every field of the top-level "unit" struct, in
// source order.
func CompileUnits(v cue.Value) ([]*UnitDoc, error) {
	if err := v.Err(); err != nil {
		return nil, positioned(err)
	}
	units := v.LookupPath(cue.ParsePath("unit"))
	if !units.Exists() {
		return nil, &CompileError{Field: "unit", Message: "no units defined", Pos: v.Pos()}
	}
	it, err := units.Fields()
	if err != nil {
		return nil, positioned(err)
	}

	var docs []*UnitDoc
	for it.Next() {
		doc, err := CompileUnit(it.Value())
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// CompileUnitSource compiles CUE source text. filename only labels error
// positions.
func CompileUnitSource(filename string, src []byte) ([]*UnitDoc, error) {
	return CompileUnits(cuecontext.New().CompileBytes(src, cue.Filename(filename)))
}

// CompileError is a CUE failure tied to a source position when one is known.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if !e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
}

func concrete(v cue.Value) error {
	if err := v.Err(); err != nil {
		return positioned(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return positioned(err)
	}
	return nil
}

// positioned converts the first CUE error that has a position into a
// CompileError. Errors without positions are returned unchanged.
func positioned(err error) error {
	for _, e := range cueerrors.Errors(err) {
		if pos := cueerrors.Positions(e); len(pos) > 0 {
			return &CompileError{Field: "cue", Message: e.Error(), Pos: pos[0]}
		}
	}
	return err
}
