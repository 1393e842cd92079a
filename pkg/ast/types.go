package ast

import (
	"fmt"
	"strconv"
	"strings"

	"its-hmny.dev/zontanos/pkg/token"
)

// ----------------------------------------------------------------------------
// Types

// A Type classifies a value in the source program.
//
// The flags compose onto the base: 'i32[4]' is base I32 w/ IsArray and Size 4,
// 'string^' is base String w/ IsPointer, 'array<i32>' is base Array w/ one
// generic. Generics carry full Types so nesting like 'array<array<i32>>' is
// representable. Invariant upheld by the parser: IsArray implies Size > 0.
type Type struct {
	Base      BaseType // The base type, one of the enum values below
	Name      string   // The original lexeme, meaningful for Ident and Unknown bases
	IsArray   bool     // Set when the type carries an '[N]' array suffix
	Size      uint32   // The declared array size, > 0 whenever IsArray is set
	IsPointer bool     // Set when the type carries a '^' pointer suffix
	Generics  []Type   // The generic parameter list, empty when there is none
}

type BaseType string // Enum to manage the base types of the language

const (
	I8      BaseType = "i8"
	U8      BaseType = "u8"
	I32     BaseType = "i32"
	F32     BaseType = "f32"
	Char    BaseType = "char"
	String  BaseType = "string"
	Array   BaseType = "array"
	Ident   BaseType = "ident"
	Void    BaseType = "void"
	None    BaseType = "none"
	Unknown BaseType = "unknown"
)

// NoneType returns the marker Type used when the type cannot be known yet.
func NoneType() Type { return Type{Base: None} }

// BaseTypeFrom maps a type keyword token onto its BaseType, an identifier
// onto an Ident base, and every other lexeme is preserved inside an Unknown
// base (both keep the lexeme in Name).
func BaseTypeFrom(kind token.Kind, lexeme string) Type {
	switch kind {
	case token.KwI8:
		return Type{Base: I8}
	case token.KwU8:
		return Type{Base: U8}
	case token.KwI32:
		return Type{Base: I32}
	case token.KwF32:
		return Type{Base: F32}
	case token.KwChar:
		return Type{Base: Char}
	case token.KwString:
		return Type{Base: String}
	case token.KwArray:
		return Type{Base: Array}
	case token.KwVoid:
		return Type{Base: Void}
	case token.Identifier:
		return Type{Base: Ident, Name: lexeme}
	}
	return Type{Base: Unknown, Name: lexeme}
}

// IsNumeric reports whether the base type holds an integer or float scalar.
func (t Type) IsNumeric() bool {
	switch t.Base {
	case I8, U8, I32, F32:
		return true
	}
	return false
}

// ----------------------------------------------------------------------------
// Type values

// A TypeValue is the payload tagged-union combining a parsed value with its
// source type classification.
//
// We declare a shared 'TypeValue' interface for every value shape of the
// language, then we define one after the other all the specific variants
// w/ their internal data. Codegen dispatches on the concrete variant.
type TypeValue interface{}

type I8Lit struct{ Value int8 }       // An i8 literal, range-checked at parse time
type U8Lit struct{ Value uint8 }      // A u8 literal, range-checked at parse time
type I32Lit struct{ Value int32 }     // An i32 literal
type I32Neg struct{ Value int32 }     // A negative i32 literal, Value keeps the sign
type F32Lit struct{ Value float32 }   // An f32 literal
type CharLit struct{ Value rune }     // A char literal, escapes already resolved
type StringLit struct{ Value string } // A string literal w/o the quotes

type ArrayLit struct { // An '[a, b, c]' literal, element type given by context
	Elems []TypeValue // The element values in source order
}

type IdentRef struct { // A reference to a declared variable or parameter
	Name string // The referenced identifier
}

type CallExpr struct { // A function call in value position
	Call FunctionCall // The callee
	Args []Value      // The argument values in call order
}

type MathExpr struct { // An arithmetic sub-expression in value position
	Math Math // The flat term sequence in source order
}

type OpTerm struct { // An operator term inside a Math sequence
	Op token.Kind // One of Plus, Min, Times, Slash
}

type BoolLit struct{ Value bool } // A 'true' or 'false' literal

type NoneVal struct{} // The absence of a value (void returns)

// A Value wraps a TypeValue together with the pointer flag set by a leading
// '^' in source (e.g. a string argument passed as pointer-to-byte).
type Value struct {
	Val   TypeValue // The wrapped payload
	IsPtr bool      // Set when the value was prefixed w/ '^'
}

// A Math is a flat sequence of numeric terms and arithmetic operators kept in
// source order, evaluated with the two-stack Shunting-Yard walk at IR time.
type Math struct {
	Terms []Value // Literals, identifiers, calls, sub-Math and OpTerm operators
}

// ----------------------------------------------------------------------------
// Literal parsing & formatting

// ParseLiteral converts a literal lexeme against the expected base type,
// reporting an error when the lexeme is not convertible to that base. This
// is what makes every numeric Value convertible at parse time.
func ParseLiteral(base BaseType, lexeme string) (TypeValue, error) {
	switch base {
	case I8:
		num, err := strconv.ParseInt(stripSeparators(lexeme), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a valid i8 value", lexeme)
		}
		return I8Lit{Value: int8(num)}, nil
	case U8:
		num, err := strconv.ParseUint(stripSeparators(lexeme), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a valid u8 value", lexeme)
		}
		return U8Lit{Value: uint8(num)}, nil
	case I32:
		num, err := strconv.ParseInt(stripSeparators(lexeme), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a valid i32 value", lexeme)
		}
		if num < 0 {
			return I32Neg{Value: int32(num)}, nil
		}
		return I32Lit{Value: int32(num)}, nil
	case F32:
		num, err := strconv.ParseFloat(stripSeparators(lexeme), 32)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a valid f32 value", lexeme)
		}
		return F32Lit{Value: float32(num)}, nil
	case Char:
		runes := []rune(lexeme)
		if len(runes) != 1 {
			return nil, fmt.Errorf("'%s' is not a valid char value", lexeme)
		}
		return CharLit{Value: runes[0]}, nil
	case String:
		return StringLit{Value: lexeme}, nil
	}
	return nil, fmt.Errorf("type '%s' has no literal form", base)
}

// FormatLiteral renders a literal TypeValue back to its normalised lexeme
// (underscore separators dropped, escapes resolved). Returns the empty string
// for non-literal variants.
func FormatLiteral(value TypeValue) string {
	switch tValue := value.(type) {
	case I8Lit:
		return strconv.FormatInt(int64(tValue.Value), 10)
	case U8Lit:
		return strconv.FormatUint(uint64(tValue.Value), 10)
	case I32Lit:
		return strconv.FormatInt(int64(tValue.Value), 10)
	case I32Neg:
		return strconv.FormatInt(int64(tValue.Value), 10)
	case F32Lit:
		return strconv.FormatFloat(float64(tValue.Value), 'f', -1, 32)
	case CharLit:
		return string(tValue.Value)
	case StringLit:
		return tValue.Value
	case BoolLit:
		return strconv.FormatBool(tValue.Value)
	}
	return ""
}

func stripSeparators(lexeme string) string {
	return strings.ReplaceAll(lexeme, "_", "")
}
