// Package symtab tracks declared names across the lifetime of a single
// compilation: locals and parameters scoped to the function currently being
// generated, plus flat global tables for top-level variables, functions and
// struct layouts. It generalizes informatter-nilan's ASTCompiler fields
// (locals []Local, scopeDepth uint16, declareLocal/resolveLocal/
// resolveGlobal) from that compiler's single "locals slice + scope depth"
// scheme into a package of its own, extended with the stack-offset
// bookkeeping spec.md §4.4's codegen needs (8-byte aligned slots within a
// fixed-size frame) that the teacher's stack-machine VM never required.
package symtab

import (
	"fmt"

	"holybpf/types"
)

// Kind distinguishes what a Symbol refers to.
type Kind int

const (
	Local Kind = iota
	Param
	Global
	Function
	TypeName
)

// Symbol is one declared name.
type Symbol struct {
	Name        string
	Kind        Kind
	Type        types.Type
	StackOffset int // meaningful for Local/Param, and for Global once SeedGlobals places it
	Initialized bool
}

// local is an entry in the scoped local/param stack, mirroring
// informatter-nilan's Local{name, depth, initialized, slot}.
type local struct {
	sym   Symbol
	depth int
}

// FrameBytes is the fixed stack frame size codegen lays locals out within
// (spec.md §4.4); exceeding it is a CodegenStackOverflow.
const FrameBytes = 512

// slotAlign is the alignment every local/param stack slot is rounded up to.
const slotAlign = 8

// Table is the symbol table for a single function body plus the
// compilation-wide global tables. One Table is created per FunctionDecl;
// global variables are copied into it via SeedGlobals before codegen walks
// the function body, and are then found by ResolveLocal.
type Table struct {
	locals     []local
	scopeDepth int
	frameUsed  int // bytes of frameBytes committed so far, for overflow checks
	frameBytes int
	tempStack  []int // sizes of currently-live spill slots, for PushTemp/PopTemp

	globals   map[string]Symbol
	functions map[string]Symbol
	structs   map[string][]types.Type // field types, indexed by declaration order

	structFieldNames map[string][]string
}

// NewTable creates an empty Table with the default frame size (FrameBytes).
func NewTable() *Table { return NewTableWithFrame(FrameBytes) }

// NewTableWithFrame creates an empty Table whose stack frame is frameBytes
// large, honoring a CompileOptions-configured stack_bytes (spec.md §6).
func NewTableWithFrame(frameBytes int) *Table {
	return &Table{
		frameBytes:       frameBytes,
		globals:          make(map[string]Symbol),
		functions:        make(map[string]Symbol),
		structs:          make(map[string][]types.Type),
		structFieldNames: make(map[string][]string),
	}
}

// BeginScope increments the scope depth, on entry to a block.
func (t *Table) BeginScope() { t.scopeDepth++ }

// EndScope decrements the scope depth and drops locals that just went out
// of scope, returning how many were dropped.
func (t *Table) EndScope() int {
	t.scopeDepth--
	count := 0
	for len(t.locals) > 0 && t.locals[len(t.locals)-1].depth > t.scopeDepth {
		t.locals = t.locals[:len(t.locals)-1]
		count++
	}
	return count
}

// ResetFrame clears all locals/params and the committed frame size, so the
// Table can be reused for another function body. (Codegen itself creates a
// fresh Table per function instead.)
func (t *Table) ResetFrame() {
	t.locals = nil
	t.scopeDepth = 0
	t.frameUsed = 0
}

func align8(n int) int {
	if n%slotAlign == 0 {
		return n
	}
	return n + (slotAlign - n%slotAlign)
}

// declare allocates a stack slot for a Local or Param symbol. It reports
// (false) when it would redeclare a name already visible in the current
// scope, or when the frame is too small to fit the new slot.
func (t *Table) declare(name string, typ types.Type, kind Kind) (Symbol, bool, bool) {
	for i := len(t.locals) - 1; i >= 0; i-- {
		if t.locals[i].depth < t.scopeDepth {
			break
		}
		if t.locals[i].sym.Name == name {
			return Symbol{}, false, true // duplicate
		}
	}

	size := align8(typ.Size())
	if t.frameUsed+size > t.frameBytes {
		return Symbol{}, false, false // overflow, not duplicate
	}

	sym := Symbol{Name: name, Kind: kind, Type: typ, StackOffset: t.frameUsed}
	t.frameUsed += size
	t.locals = append(t.locals, local{sym: sym, depth: t.scopeDepth})
	return sym, true, false
}

// DeclareLocal declares a local variable in the current scope.
func (t *Table) DeclareLocal(name string, typ types.Type) (Symbol, error) {
	sym, ok, dup := t.declare(name, typ, Local)
	if !ok {
		if dup {
			return Symbol{}, fmt.Errorf("redeclaration of %q in the same scope", name)
		}
		return Symbol{}, fmt.Errorf("stack frame exceeds %d bytes", t.frameBytes)
	}
	return sym, nil
}

// DeclareParam declares a function parameter at the current scope depth.
// Codegen declares parameters in a scope of their own, one level outside
// the function body's outermost block.
func (t *Table) DeclareParam(name string, typ types.Type) (Symbol, error) {
	sym, ok, dup := t.declare(name, typ, Param)
	if !ok {
		if dup {
			return Symbol{}, fmt.Errorf("duplicate parameter %q", name)
		}
		return Symbol{}, fmt.Errorf("stack frame exceeds %d bytes", t.frameBytes)
	}
	return sym, nil
}

// Define marks the most recently declared local/param as initialized.
func (t *Table) Define() {
	if len(t.locals) > 0 {
		t.locals[len(t.locals)-1].sym.Initialized = true
	}
}

// SeedGlobals pre-populates a freshly reset Table with the module's global
// variables at depth -1 (so EndScope never evicts them), giving every
// function the same fixed stack offsets for its globals before its own
// locals start allocating above them. Called once per function, with the
// same ordered slice each time, so offsets stay identical across the whole
// compilation.
func (t *Table) SeedGlobals(globals []Symbol) error {
	for _, g := range globals {
		size := align8(g.Type.Size())
		if t.frameUsed+size > t.frameBytes {
			return fmt.Errorf("globals alone exceed the %d byte stack frame", t.frameBytes)
		}
		g.StackOffset = t.frameUsed
		t.frameUsed += size
		t.locals = append(t.locals, local{sym: g, depth: -1})
	}
	return nil
}

// PushTemp allocates an anonymous spill slot above whatever locals/globals
// are currently committed, for the codegen "spill left operand, evaluate
// right operand, reload, combine" sequence. Call PopTemp once the value has
// been reloaded and is no longer needed.
func (t *Table) PushTemp(typ types.Type) (offset int, err error) {
	size := align8(typ.Size())
	if t.frameUsed+size > t.frameBytes {
		return 0, fmt.Errorf("stack frame exceeds %d bytes", t.frameBytes)
	}
	offset = t.frameUsed
	t.frameUsed += size
	t.tempStack = append(t.tempStack, size)
	return offset, nil
}

// PopTemp releases the most recently pushed temp slot.
func (t *Table) PopTemp() {
	n := len(t.tempStack)
	if n == 0 {
		return
	}
	t.frameUsed -= t.tempStack[n-1]
	t.tempStack = t.tempStack[:n-1]
}

// FrameBytesLimit reports the configured frame size.
func (t *Table) FrameBytesLimit() int { return t.frameBytes }

// FrameOffsetToR10 converts a StackOffset (0-based from the start of the
// frame) into a signed displacement from R10, the frame pointer, which
// real BPF semantics and this VM's addressing both take to point one byte
// past the end of the stack region.
func (t *Table) FrameOffsetToR10(stackOffset int) int16 {
	return int16(-(t.frameBytes - stackOffset))
}

// ResolveLocal looks up a name among locals/params visible in the current
// scope chain, nearest declaration wins.
func (t *Table) ResolveLocal(name string) (Symbol, bool) {
	for i := len(t.locals) - 1; i >= 0; i-- {
		if t.locals[i].sym.Name == name {
			return t.locals[i].sym, true
		}
	}
	return Symbol{}, false
}

// FrameSize reports how many bytes of the fixed frame are currently
// committed.
func (t *Table) FrameSize() int { return t.frameUsed }

// DeclareGlobal registers a top-level variable. Re-declaration overwrites
// the previous entry, mirroring how a later top-level "U64 x;" shadows an
// earlier one in a single compilation unit.
func (t *Table) DeclareGlobal(name string, typ types.Type) Symbol {
	sym := Symbol{Name: name, Kind: Global, Type: typ, Initialized: true}
	t.globals[name] = sym
	return sym
}

// ResolveGlobal looks up a top-level variable by name.
func (t *Table) ResolveGlobal(name string) (Symbol, bool) {
	sym, ok := t.globals[name]
	return sym, ok
}

// DeclareFunction registers a function's signature under its name.
func (t *Table) DeclareFunction(name string, sig types.Type) Symbol {
	sym := Symbol{Name: name, Kind: Function, Type: sig}
	t.functions[name] = sym
	return sym
}

// ResolveFunction looks up a function by name.
func (t *Table) ResolveFunction(name string) (Symbol, bool) {
	sym, ok := t.functions[name]
	return sym, ok
}

// DeclareStruct registers a struct's field names and types, in declaration
// order, for later layout/IDL queries.
func (t *Table) DeclareStruct(name string, fieldNames []string, fieldTypes []types.Type) {
	t.structs[name] = fieldTypes
	t.structFieldNames[name] = fieldNames
}

// ResolveStructField returns the type and byte offset of a named field
// within a struct, or ok=false if either the struct or the field is
// unknown. Offsets are computed densely (no padding) in declaration order.
func (t *Table) ResolveStructField(structName, field string) (fieldType types.Type, offset int, ok bool) {
	names, okNames := t.structFieldNames[structName]
	fieldTypes := t.structs[structName]
	if !okNames {
		return types.Type{}, 0, false
	}
	off := 0
	for i, n := range names {
		if n == field {
			return fieldTypes[i], off, true
		}
		off += fieldTypes[i].Size()
	}
	return types.Type{}, 0, false
}
