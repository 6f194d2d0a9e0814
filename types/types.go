// Package types models the closed type system of spec.md §3: integers with
// signedness and bit width, bool, void, f64, pointers, arrays, and named
// struct references. The teacher (informatter-nilan) never type-checks —
// its interpreter trusts Go's `any` at runtime — so this package has no
// direct ancestor in the teacher; it is grounded instead in the arithmetic
// widening rule spec.md §3 states explicitly.
package types

import "fmt"

type Kind int

const (
	Integer Kind = iota
	Bool
	Void
	F64
	Pointer
	Array
	StructRef
)

// Type is a closed variant over the type system of spec.md §3. Only one of
// the fields relevant to Kind is meaningful at a time.
type Type struct {
	Kind     Kind
	Signed   bool   // Integer
	BitWidth int    // Integer: 8, 16, 32 or 64
	To       *Type  // Pointer/Array element type
	Length   int    // Array
	Name     string // StructRef
}

func Int(signed bool, width int) Type { return Type{Kind: Integer, Signed: signed, BitWidth: width} }

var (
	U8Type  = Int(false, 8)
	U16Type = Int(false, 16)
	U32Type = Int(false, 32)
	U64Type = Int(false, 64)
	I8Type  = Int(true, 8)
	I16Type = Int(true, 16)
	I32Type = Int(true, 32)
	I64Type = Int(true, 64)
	BoolType = Type{Kind: Bool}
	VoidType = Type{Kind: Void}
	F64Type  = Type{Kind: F64}
)

func PointerTo(to Type) Type { return Type{Kind: Pointer, To: &to} }

func ArrayOf(of Type, length int) Type { return Type{Kind: Array, To: &of, Length: length} }

func Struct(name string) Type { return Type{Kind: StructRef, Name: name} }

// Size returns the size in bytes the code generator uses to lay out a stack
// slot for this type (every slot is then rounded up to 8 bytes), to pick
// load/store widths, and to compute struct field offsets. A StructRef
// reports 8 bytes; its field layout is not consulted.
func (t Type) Size() int {
	switch t.Kind {
	case Integer:
		return t.BitWidth / 8
	case Bool:
		return 1
	case F64:
		return 8
	case Pointer:
		return 8
	case Array:
		return t.To.Size() * t.Length
	default:
		return 8
	}
}

func (t Type) String() string {
	switch t.Kind {
	case Integer:
		prefix := "U"
		if t.Signed {
			prefix = "I"
		}
		return fmt.Sprintf("%s%d", prefix, t.BitWidth)
	case Bool:
		return "Bool"
	case Void:
		return "U0"
	case F64:
		return "F64"
	case Pointer:
		return t.To.String() + "*"
	case Array:
		return fmt.Sprintf("%s[%d]", t.To.String(), t.Length)
	case StructRef:
		return t.Name
	default:
		return "?"
	}
}

func (t Type) IsInteger() bool { return t.Kind == Integer }

// Widen implements spec.md §3's arithmetic promotion: the wider of the two
// integer operand types wins; on an equal-width mix, unsigned wins.
func Widen(a, b Type) Type {
	if !a.IsInteger() || !b.IsInteger() {
		return a
	}
	if a.BitWidth != b.BitWidth {
		if a.BitWidth > b.BitWidth {
			return a
		}
		return b
	}
	if !a.Signed {
		return a
	}
	return b
}

// IDLTag maps a Type to the closed IDL tag set of spec.md §4.6, or reports
// that the type has no IDL representation (IdlUnsupportedType).
func (t Type) IDLTag() (string, bool) {
	switch t.Kind {
	case Integer:
		prefix := "u"
		if t.Signed {
			prefix = "i"
		}
		return fmt.Sprintf("%s%d", prefix, t.BitWidth), true
	case Bool:
		return "bool", true
	case Void:
		return "void", true
	case F64:
		return "f64", true
	case Pointer:
		inner, ok := t.To.IDLTag()
		if !ok {
			return "", false
		}
		return fmt.Sprintf("pointer<%s>", inner), true
	case Array:
		inner, ok := t.To.IDLTag()
		if !ok {
			return "", false
		}
		return fmt.Sprintf("array<%s,%d>", inner, t.Length), true
	case StructRef:
		return fmt.Sprintf("struct<%s>", t.Name), true
	default:
		return "", false
	}
}
