// Package idl builds the interface description spec.md §4.6 asks for:
// exported functions, by name, parameter and return type. There is no
// teacher ancestor for this (informatter-nilan has no notion of an
// interface description), so it is grounded directly in spec.md §4.6 and
// leans on the types package's IDLTag for the closed tag vocabulary.
package idl

import (
	"holybpf/ast"
	"holybpf/diag"
)

// Param describes one function parameter in the IDL.
type Param struct {
	Name string `json:"name"`
	Tag  string `json:"type"`
}

// Function describes one exported function in the IDL.
type Function struct {
	Name       string  `json:"name"`
	Parameters []Param `json:"parameters"`
	Return     string  `json:"return"`
}

// Document is the full IDL for a compiled program.
type Document struct {
	Functions []Function `json:"functions"`
}

// Build walks every exported FunctionDecl in prog and renders its signature,
// failing with IdlUnsupportedType on the first parameter or return type
// that has no IDL tag (e.g. a function pointer).
func Build(prog *ast.Program) (Document, *diag.Diagnostic) {
	var doc Document
	for _, d := range prog.Decls {
		fn, ok := d.(*ast.FunctionDecl)
		if !ok || !fn.Exported {
			continue
		}

		params := make([]Param, len(fn.Params))
		for i, p := range fn.Params {
			tag, ok := p.Type.IDLTag()
			if !ok {
				return Document{}, diag.New(diag.KindIdlUnsupportedType, fn.Range(),
					"parameter %q of %q has no IDL representation (%s)", p.Name, fn.Name, p.Type.String())
			}
			params[i] = Param{Name: p.Name, Tag: tag}
		}

		retTag, ok := fn.Return.IDLTag()
		if !ok {
			return Document{}, diag.New(diag.KindIdlUnsupportedType, fn.Range(),
				"return type of %q has no IDL representation (%s)", fn.Name, fn.Return.String())
		}

		doc.Functions = append(doc.Functions, Function{Name: fn.Name, Parameters: params, Return: retTag})
	}
	return doc, nil
}
